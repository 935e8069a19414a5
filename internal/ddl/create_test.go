package ddl

import (
	"errors"
	"strings"
	"testing"
)

// ansi is a minimal dialect for exercising the builders.
type ansi struct{}

func (ansi) Name() string { return "ansi" }

func (ansi) QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func (ansi) SQLType(t Type) (string, error) {
	switch t {
	case TypeText:
		return "VARCHAR", nil
	case TypeDate:
		return "DATE", nil
	}
	return "", &UnsupportedTypeError{Dialect: "ansi", Type: t}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		wantErr     bool
		errContains string
	}{
		{
			name: "single nullable column",
			def: TableDef{
				FQN:     "t",
				Columns: []ColumnDef{{Name: "id", Type: TypeText, Nullable: true}},
			},
			wantSQL: "CREATE TABLE \"t\" (\n  \"id\" VARCHAR\n)",
		},
		{
			name: "schema qualified with not null and default",
			def: TableDef{
				FQN: "public.leads",
				Columns: []ColumnDef{
					{Name: "ID", Type: TypeText, PrimaryKey: true},
					{Name: "DATE", Type: TypeDate, Nullable: true},
					{Name: "CITY", Type: TypeText, Default: "'unknown'"},
				},
			},
			wantSQL: "CREATE TABLE \"public\".\"leads\" (\n" +
				"  \"ID\" VARCHAR NOT NULL,\n" +
				"  \"DATE\" DATE,\n" +
				"  \"CITY\" VARCHAR NOT NULL DEFAULT 'unknown',\n" +
				"  PRIMARY KEY (\"ID\")\n)",
		},
		{
			name: "quotes embedded quote",
			def: TableDef{
				FQN:     `we"ird`,
				Columns: []ColumnDef{{Name: "a", Type: TypeText, Nullable: true}},
			},
			wantSQL: "CREATE TABLE \"we\"\"ird\" (\n  \"a\" VARCHAR\n)",
		},
		{
			name:        "empty fqn",
			def:         TableDef{Columns: []ColumnDef{{Name: "a", Type: TypeText}}},
			wantErr:     true,
			errContains: "FQN",
		},
		{
			name:        "no columns",
			def:         TableDef{FQN: "t"},
			wantErr:     true,
			errContains: "at least one column",
		},
		{
			name:        "empty column name",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: " ", Type: TypeText}}},
			wantErr:     true,
			errContains: "empty name",
		},
		{
			name:        "unsupported type",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a", Type: "blob"}}},
			wantErr:     true,
			errContains: "unsupported column type",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(ansi{}, tt.def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil (sql=%q)", got)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("sql mismatch\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}

func TestBuildCreateTableSQL_UnsupportedTypeIsTyped(t *testing.T) {
	t.Parallel()

	_, err := BuildCreateTableSQL(ansi{}, TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a", Type: "blob"}}})
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) || ute.Type != "blob" {
		t.Fatalf("error = %v, want *UnsupportedTypeError for blob", err)
	}
}

func TestBuildDropTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildDropTableSQL(ansi{}, "PUBLIC.LEADS_PROCESSED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `DROP TABLE IF EXISTS "PUBLIC"."LEADS_PROCESSED"`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if _, err := BuildDropTableSQL(ansi{}, "  "); err == nil {
		t.Fatalf("expected error for blank table")
	}
}

func TestTableDef_ColumnNames(t *testing.T) {
	t.Parallel()

	td := TableDef{Columns: []ColumnDef{{Name: "A"}, {Name: "B"}, {Name: "C"}}}
	got := strings.Join(td.ColumnNames(), ",")
	if got != "A,B,C" {
		t.Fatalf("ColumnNames = %q", got)
	}
}
