// Package config defines the JSON-serializable configuration model for the
// lead enrichment job, plus the environment lookups for warehouse
// credentials.
//
// Decoding is performed by the standard library, with a light Options helper
// for typed access to backend-specific settings.
//
// Example (all fields optional; defaults shown):
//
//	{
//	  "job":        "leadetl",
//	  "source":     { "table": "LEADS_CLEANED" },
//	  "sink":       { "table": "LEADS_PROCESSED" },
//	  "storage":    { "kind": "snowflake" },
//	  "translate":  { "kind": "vertex", "options": { "project_id": "acme", "region": "us-central1" } },
//	  "spell":      { "dictionary": "" },
//	  "categorize": { "rules": "" },
//	  "runtime":    { "batch_size": 500, "progress_every": 1000 }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultJob           = "leadetl"
	DefaultSourceTable   = "LEADS_CLEANED"
	DefaultSinkTable     = "LEADS_PROCESSED"
	DefaultStorageKind   = "snowflake"
	DefaultTranslateKind = TranslateVertex
	DefaultBatchSize     = 500
	DefaultProgressEvery = 1000
)

// Translate kinds.
const (
	TranslateVertex = "vertex"
	TranslateNone   = "none"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	Source TableRef `json:"source"`
	Sink   TableRef `json:"sink"`

	Storage    Storage       `json:"storage"`
	Translate  Translate     `json:"translate"`
	Spell      Spell         `json:"spell"`
	Categorize Categorize    `json:"categorize"`
	Runtime    RuntimeConfig `json:"runtime"`
}

// TableRef names a warehouse table, optionally schema-qualified.
type TableRef struct {
	Table string `json:"table"`
}

// Storage selects the warehouse backend.
type Storage struct {
	// Kind selects the storage implementation: snowflake, postgres, mssql,
	// mysql or sqlite.
	Kind string `json:"kind"`

	// DSN is used by every kind except snowflake, which builds its DSN from
	// SNOWFLAKE_* variables. STORAGE_DSN overrides an empty value.
	DSN string `json:"dsn"`
}

// Translate selects the translation collaborator.
type Translate struct {
	// Kind is "vertex" (Gemini on Vertex AI) or "none" (identity).
	Kind string `json:"kind"`

	// Options for "vertex": project_id, region, model.
	Options Options `json:"options"`
}

// Spell configures the spelling dictionary.
type Spell struct {
	// Dictionary is a word-list or JSON frequency file. Empty means the
	// built-in vocabulary.
	Dictionary string `json:"dictionary"`
}

// Categorize configures the keyword rules.
type Categorize struct {
	// Rules is a YAML rules file. Empty means the built-in taxonomies.
	Rules string `json:"rules"`
}

// RuntimeConfig controls batching and progress logging.
type RuntimeConfig struct {
	BatchSize     int `json:"batch_size"`
	ProgressEvery int `json:"progress_every"`
}

// Default returns a pipeline with every default applied.
func Default() Pipeline {
	var p Pipeline
	p.ApplyDefaults()
	return p
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (p *Pipeline) ApplyDefaults() {
	if p.Job == "" {
		p.Job = DefaultJob
	}
	if p.Source.Table == "" {
		p.Source.Table = DefaultSourceTable
	}
	if p.Sink.Table == "" {
		p.Sink.Table = DefaultSinkTable
	}
	if p.Storage.Kind == "" {
		p.Storage.Kind = DefaultStorageKind
	}
	if p.Translate.Kind == "" {
		p.Translate.Kind = DefaultTranslateKind
	}
	if p.Translate.Options == nil {
		p.Translate.Options = Options{}
	}
	if p.Runtime.BatchSize == 0 {
		p.Runtime.BatchSize = DefaultBatchSize
	}
	if p.Runtime.ProgressEvery == 0 {
		p.Runtime.ProgressEvery = DefaultProgressEvery
	}
}

// Load reads a pipeline file and applies defaults. An empty path yields
// Default(). Unknown fields are rejected.
func Load(path string) (Pipeline, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
	}
	p, err := Parse(b)
	if err != nil {
		return Pipeline{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a pipeline document and applies defaults.
func Parse(b []byte) (Pipeline, error) {
	var p Pipeline
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, err
	}
	p.ApplyDefaults()
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns provided defaults when a key is absent or
// of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
