package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"leadetl/internal/config"
	"leadetl/internal/ddl"
	"leadetl/internal/pipeline"
	"leadetl/internal/storage"
	"leadetl/internal/translate"
)

func envOf(m map[string]string) config.LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func seedLeads(t *testing.T, dsn string) {
	t.Helper()

	cols := []ddl.ColumnDef{
		{Name: "LEAD_HASHED_ID", Type: ddl.TypeText, Nullable: true},
		{Name: "CAMPAIGN_JOINED_DATE", Type: ddl.TypeDate, Nullable: true},
		{Name: "LEAD_INDUSTRY", Type: ddl.TypeText, Nullable: true},
		{Name: "COUNTRY", Type: ddl.TypeText, Nullable: true},
		{Name: "JOB_TITLE_CLEANED", Type: ddl.TypeText, Nullable: true},
	}
	repo, err := pipeline.Opener("sqlite", dsn)(context.Background(), "LEADS_CLEANED")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()
	rows := [][]any{
		{"h1", "2024-03-09", "retail", "France", "Head of Sales"},
		{"h2", nil, "government", "Chile", "Junior Analyst"},
	}
	if _, err := storage.ReplaceTable(context.Background(), repo, ddl.TableDef{FQN: "LEADS_CLEANED", Columns: cols}, rows, 10); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	o, err := parseFlags([]string{"-config", "p.json", "-validate", "-v", "-metrics-backend", "datadog", "-dogstatsd-addr", "dd:8125"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.configPath != "p.json" || !o.validate || !o.verbose || o.metricsBackend != "datadog" || o.dogstatsdAddr != "dd:8125" {
		t.Fatalf("options = %+v", o)
	}
	if _, err := parseFlags([]string{"-nope"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("unknown flag accepted")
	}
}

func TestRun_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "warehouse.db")
	seedLeads(t, dsn)

	cfg := writeConfig(t, `{
		"storage":   {"kind": "sqlite", "dsn": "`+filepath.ToSlash(dsn)+`"},
		"translate": {"kind": "none"},
		"runtime":   {"batch_size": 1}
	}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), options{configPath: cfg}, &stdout, &stderr, envOf(nil))
	if err != nil {
		t.Fatalf("run: %v (stderr=%s)", err, stderr.String())
	}
	if got := stdout.String(); got != "Successfully loaded 2 rows into LEADS_PROCESSED.\n" {
		t.Fatalf("stdout = %q", got)
	}

	sink, err := pipeline.Opener("sqlite", dsn)(context.Background(), "LEADS_PROCESSED")
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer sink.Close()
	tb, err := sink.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}
	if tb.Len() != 2 || len(tb.Columns) != 11 {
		t.Fatalf("sink = %d rows x %d columns", tb.Len(), len(tb.Columns))
	}
	got := map[any][2]any{}
	for _, r := range tb.Rows {
		got[r[0]] = [2]any{r[9], r[10]}
	}
	if got["h1"] != [2]any{"Director-level", "Retail and Consumer Services"} {
		t.Fatalf("h1 categories = %v", got["h1"])
	}
	if got["h2"] != [2]any{"Individual Contributor", "Public Sector and Non-Profit"} {
		t.Fatalf("h2 categories = %v", got["h2"])
	}
}

func TestRun_MissingSnowflakeEnv(t *testing.T) {
	cfg := writeConfig(t, `{"translate": {"kind": "none"}}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), options{configPath: cfg}, &stdout, &stderr,
		envOf(map[string]string{"SNOWFLAKE_USER": "etl"}))
	if !errors.Is(err, config.ErrMissingEnv) {
		t.Fatalf("err = %v, want ErrMissingEnv", err)
	}
	if !strings.Contains(err.Error(), "SNOWFLAKE_ACCOUNT") {
		t.Fatalf("err = %v, want missing names listed", err)
	}
	if got := stdout.String(); got != "Failed to load data.\n" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestRun_Validate(t *testing.T) {
	var stdout, stderr bytes.Buffer

	bad := writeConfig(t, `{"storage": {"kind": "oracle"}}`)
	err := run(context.Background(), options{configPath: bad, validate: true}, &stdout, &stderr, envOf(nil))
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("err = %v, want errInvalidConfig", err)
	}
	if !strings.Contains(stderr.String(), `error: storage.kind: unknown storage kind "oracle"; registered kinds:`) ||
		!strings.Contains(stderr.String(), "error: translate.options.project_id:") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("validate-only run wrote to stdout: %q", stdout.String())
	}

	stderr.Reset()
	good := writeConfig(t, `{"translate": {"kind": "none"}}`)
	if err := run(context.Background(), options{configPath: good, validate: true}, &stdout, &stderr, envOf(nil)); err != nil {
		t.Fatalf("valid config: %v (stderr=%s)", err, stderr.String())
	}
}

func TestStorageKindIssues(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"", "snowflake", "sqlite", "postgres", "mysql", "mssql"} {
		if got := storageKindIssues(kind); len(got) != 0 {
			t.Errorf("storageKindIssues(%q) = %v, want none", kind, got)
		}
	}

	got := storageKindIssues("oracle")
	if len(got) != 1 || got[0].Severity != config.SeverityError || got[0].Path != "storage.kind" {
		t.Fatalf("storageKindIssues(oracle) = %v", got)
	}
	if !strings.Contains(got[0].Message, `"oracle"`) || !strings.Contains(got[0].Message, "snowflake") ||
		!strings.Contains(got[0].Message, "sqlite") {
		t.Fatalf("message = %q, want kind and registered kinds", got[0].Message)
	}
}

func TestRun_PipelineFailure(t *testing.T) {
	orig := runPipeline
	t.Cleanup(func() { runPipeline = orig })
	runPipeline = func(context.Context, pipeline.Config, pipeline.Deps) (pipeline.Result, error) {
		return pipeline.Result{}, storage.ErrWrite
	}

	cfg := writeConfig(t, `{"storage": {"kind": "sqlite", "dsn": "unused.db"}, "translate": {"kind": "none"}}`)
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), options{configPath: cfg}, &stdout, &stderr, envOf(nil))
	if !errors.Is(err, storage.ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
	if stdout.String() != "Failed to load data.\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

type fakeTranslator struct{ closed int }

func (f *fakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return "EN:" + text, nil
}

func (f *fakeTranslator) Close() error {
	f.closed++
	return nil
}

func TestBuildDeps_Vertex(t *testing.T) {
	origVertex, origOpener := newVertex, openerFor
	t.Cleanup(func() { newVertex, openerFor = origVertex, origOpener })

	ft := &fakeTranslator{}
	var gotCfg translate.Config
	newVertex = func(_ context.Context, cfg translate.Config) (translator, error) {
		gotCfg = cfg
		return ft, nil
	}
	var gotKind, gotDSN string
	openerFor = func(kind, dsn string) pipeline.OpenFunc {
		gotKind, gotDSN = kind, dsn
		return pipeline.Opener(kind, dsn)
	}

	p := config.Default()
	p.Translate.Options["project_id"] = "acme"
	p.Translate.Options["region"] = "europe-west4"
	env := envOf(map[string]string{
		"SNOWFLAKE_USER": "etl", "SNOWFLAKE_PASSWORD": "pw", "SNOWFLAKE_ACCOUNT": "xy12345",
		"SNOWFLAKE_WAREHOUSE": "WH", "SNOWFLAKE_DATABASE": "MARKETING", "SNOWFLAKE_SCHEMA": "PUBLIC",
	})

	deps, closeFn, err := buildDeps(context.Background(), p, env)
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	if gotCfg.ProjectID != "acme" || gotCfg.Region != "europe-west4" || gotCfg.Model != translate.DefaultModel {
		t.Fatalf("vertex config = %+v", gotCfg)
	}
	if gotKind != "snowflake" || !strings.Contains(gotDSN, "xy12345") || !strings.Contains(gotDSN, "warehouse=WH") {
		t.Fatalf("opener kind=%q dsn=%q", gotKind, gotDSN)
	}
	if out, _ := deps.Translate(context.Background(), "Logiciel", "en"); out != "EN:Logiciel" {
		t.Fatalf("Translate = %q", out)
	}
	if c, ok := deps.Spell("Senoir"); !ok || c != "senior" {
		t.Fatalf("Spell(Senoir) = %q, %v", c, ok)
	}
	closeFn()
	if ft.closed != 1 {
		t.Fatalf("translator closed %d times", ft.closed)
	}
}

func TestBuildDeps_MissingDictionary(t *testing.T) {
	p := config.Default()
	p.Storage.Kind = "sqlite"
	p.Storage.DSN = "x.db"
	p.Translate.Kind = config.TranslateNone
	p.Spell.Dictionary = filepath.Join(t.TempDir(), "missing.txt")

	if _, _, err := buildDeps(context.Background(), p, envOf(nil)); err == nil {
		t.Fatalf("missing dictionary accepted")
	}
}

func TestPick(t *testing.T) {
	t.Parallel()

	env := envOf(map[string]string{"METRICS_BACKEND": "datadog", "EMPTY": ""})
	tests := []struct {
		flag, env, def, want string
	}{
		{"pushgateway", "METRICS_BACKEND", "none", "pushgateway"},
		{"", "METRICS_BACKEND", "none", "datadog"},
		{"", "EMPTY", "none", "none"},
		{"", "UNSET", "none", "none"},
	}
	for _, tt := range tests {
		if got := pick(tt.flag, env, tt.env, tt.def); got != tt.want {
			t.Errorf("pick(%q, %s) = %q, want %q", tt.flag, tt.env, got, tt.want)
		}
	}
}
