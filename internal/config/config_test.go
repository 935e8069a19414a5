package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	p := Default()
	if p.Job != DefaultJob || p.Source.Table != "LEADS_CLEANED" || p.Sink.Table != "LEADS_PROCESSED" {
		t.Fatalf("defaults = %+v", p)
	}
	if p.Storage.Kind != "snowflake" || p.Translate.Kind != TranslateVertex {
		t.Fatalf("storage/translate defaults = %q/%q", p.Storage.Kind, p.Translate.Kind)
	}
	if p.Runtime.BatchSize != DefaultBatchSize || p.Runtime.ProgressEvery != DefaultProgressEvery {
		t.Fatalf("runtime defaults = %+v", p.Runtime)
	}
	if p.Translate.Options == nil {
		t.Fatalf("translate options must not be nil")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(`{
		"job": "leads-nightly",
		"sink": {"table": "ANALYTICS.LEADS_PROCESSED"},
		"storage": {"kind": "postgres", "dsn": "postgres://localhost/db"},
		"translate": {"kind": "vertex", "options": {"project_id": "acme", "region": "europe-west1"}},
		"runtime": {"batch_size": 250}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Job != "leads-nightly" || p.Sink.Table != "ANALYTICS.LEADS_PROCESSED" {
		t.Fatalf("pipeline = %+v", p)
	}
	if p.Source.Table != DefaultSourceTable {
		t.Fatalf("source default not applied: %q", p.Source.Table)
	}
	if p.Storage.Kind != "postgres" || p.Storage.DSN != "postgres://localhost/db" {
		t.Fatalf("storage = %+v", p.Storage)
	}
	if got := p.Translate.Options.String("region", ""); got != "europe-west1" {
		t.Fatalf("region = %q", got)
	}
	if p.Runtime.BatchSize != 250 || p.Runtime.ProgressEvery != DefaultProgressEvery {
		t.Fatalf("runtime = %+v", p.Runtime)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", `{"jobs": "x"}`},
		{"wrong type", `{"runtime": {"batch_size": "big"}}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Fatalf("Parse(%s) error = nil", tt.doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	p, err := Load("")
	if err != nil || p.Job != DefaultJob {
		t.Fatalf("Load(\"\") = %+v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(`{"translate": {"kind": "none"}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Translate.Kind != TranslateNone {
		t.Fatalf("translate kind = %q", p.Translate.Kind)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("Load(missing) err = %v", err)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	var o Options
	if err := o.UnmarshalJSON([]byte("null")); err != nil || o == nil || len(o) != 0 {
		t.Fatalf("null options = %v, %v", o, err)
	}
	if err := o.UnmarshalJSON([]byte(`{"model": "gemini-1.5-pro", "n": 3}`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got := o.String("model", "x"); got != "gemini-1.5-pro" {
		t.Fatalf("String(model) = %q", got)
	}
	if got := o.String("n", "def"); got != "def" {
		t.Fatalf("String(non-string) = %q, want default", got)
	}
	if got := o.String("absent", "def"); got != "def" {
		t.Fatalf("String(absent) = %q, want default", got)
	}
}
