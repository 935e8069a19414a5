package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadetl/internal/ddl"
	"leadetl/internal/normalize"
	"leadetl/internal/spell"
	"leadetl/internal/storage"
	"leadetl/internal/translate"

	_ "leadetl/internal/storage/sqlite"
)

// seedSource creates the source table in a SQLite file database.
func seedSource(t *testing.T, open OpenFunc, table string, rows [][]any) {
	t.Helper()

	cols := make([]ddl.ColumnDef, 0, len(sourceColumns))
	for _, c := range sourceColumns {
		typ := ddl.TypeText
		if c == "CAMPAIGN_JOINED_DATE" {
			typ = ddl.TypeDate
		}
		cols = append(cols, ddl.ColumnDef{Name: c, Type: typ, Nullable: true})
	}

	repo, err := open(context.Background(), table)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	defer repo.Close()
	if _, err := storage.ReplaceTable(context.Background(), repo, ddl.TableDef{FQN: table, Columns: cols}, rows, 100); err != nil {
		t.Fatalf("seed source: %v", err)
	}
}

func TestRun_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	open := Opener("sqlite", filepath.Join(t.TempDir(), "warehouse.db"))

	joined := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	seedSource(t, open, "LEADS_CLEANED", [][]any{
		{"h1", joined, "software", "France", "EMEA", "Spring", "Web", "Inbound", "Open", "Senoir Developer", "x"},
		{"h2", nil, nil, "Germany", "EMEA", "Spring", "Event", "Outbound", "Closed", nil, "y"},
		{"h3", joined, "Healthcare", "Spain", "EMEA", "Autumn", "Web", "Inbound", "Open", "chief of staff", "z"},
	})

	dict := spell.Default()
	cfg := Config{Job: "leadetl", Source: "LEADS_CLEANED", Sink: "LEADS_PROCESSED", BatchSize: 2, ProgressEvery: 2}
	deps := Deps{
		Open:      open,
		Spell:     normalize.SpellFunc(dict.Correction),
		Translate: translate.Identity,
	}

	// A second run must replace the sink, not append to it.
	for i := 0; i < 2; i++ {
		res, err := Run(ctx, cfg, deps)
		if err != nil {
			t.Fatalf("Run %d: %v", i+1, err)
		}
		if res.Rows != 3 {
			t.Fatalf("Run %d inserted %d rows, want 3", i+1, res.Rows)
		}
	}

	sink, err := open(ctx, "LEADS_PROCESSED")
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer sink.Close()
	tb, err := sink.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}

	want := "LEAD_HASHED_ID,CAMPAIGN_JOINED_DATE,LEAD_INDUSTRY,COUNTRY,REGION,CAMPAIGN_NAME," +
		"LEAD_SOURCE,SOURCE_CATEGORY,LEAD_STATUS,JOB_CATEGORY,LEAD_INDUSTRY_CATEGORY"
	if got := strings.Join(tb.Columns, ","); got != want {
		t.Fatalf("sink columns:\n got %s\nwant %s", got, want)
	}
	if tb.Len() != 3 {
		t.Fatalf("sink rows = %d, want 3", tb.Len())
	}

	byID := map[any][]any{}
	for _, r := range tb.Rows {
		byID[r[0]] = r
	}
	tests := []struct {
		id       string
		jobCat   string
		indCat   string
		industry any
	}{
		{"h1", "Individual Contributor", "Technology", "software"},
		{"h2", "Uncategorized", "Uncategorized", nil},
		{"h3", "Executive-level", "Healthcare and Life Sciences", "Healthcare"},
	}
	for _, tt := range tests {
		r, ok := byID[tt.id]
		if !ok {
			t.Fatalf("row %s missing", tt.id)
		}
		if r[9] != tt.jobCat || r[10] != tt.indCat || r[2] != tt.industry {
			t.Errorf("row %s = %v; want job=%q industry=%v/%q", tt.id, r, tt.jobCat, tt.industry, tt.indCat)
		}
	}
	if byID["h1"][1] == nil || byID["h2"][1] != nil {
		t.Fatalf("dates not preserved: h1=%v h2=%v", byID["h1"][1], byID["h2"][1])
	}
}

func TestRun_SQLiteMissingSource(t *testing.T) {
	open := Opener("sqlite", filepath.Join(t.TempDir(), "empty.db"))
	cfg := Config{Job: "leadetl", Source: "LEADS_CLEANED", Sink: "LEADS_PROCESSED", BatchSize: 10}

	_, err := Run(context.Background(), cfg, Deps{Open: open})
	if !errors.Is(err, storage.ErrQuery) {
		t.Fatalf("err = %v, want ErrQuery", err)
	}
}
