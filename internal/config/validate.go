// Package config provides configuration models and helpers for the job.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "translate.options.project_id"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// statFn is a test seam for file existence checks.
var statFn = os.Stat

// ValidatePipeline performs static validation / linting of a Pipeline. It
// expects defaults to have been applied already. Whether storage.kind names a
// registered backend is left to the binary that links the backends.
//
// It does not mutate the pipeline. Callers may decide whether to treat
// warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateTables(p.Source, p.Sink)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateTranslate(p.Translate)...)
	issues = append(issues, validateFile("spell.dictionary", p.Spell.Dictionary)...)
	issues = append(issues, validateFile("categorize.rules", p.Categorize.Rules)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateTables(src, sink TableRef) []Issue {
	var issues []Issue

	if strings.TrimSpace(src.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.table",
			Message:  "source.table must not be empty",
		})
	}
	if strings.TrimSpace(sink.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.table",
			Message:  "sink.table must not be empty",
		})
	}
	if src.Table != "" && strings.EqualFold(strings.TrimSpace(src.Table), strings.TrimSpace(sink.Table)) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.table",
			Message:  fmt.Sprintf("sink.table %q equals source.table; the sink is dropped before it is written", sink.Table),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}
	switch {
	case s.Kind == DefaultStorageKind && s.DSN != "":
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.dsn",
			Message:  "storage.dsn is ignored for snowflake; credentials come from SNOWFLAKE_* variables",
		})
	case s.Kind != DefaultStorageKind && s.DSN == "":
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.dsn",
			Message:  fmt.Sprintf("storage.dsn is empty; %s must be set at run time", EnvStorageDSN),
		})
	}
	return issues
}

func validateTranslate(t Translate) []Issue {
	var issues []Issue

	switch t.Kind {
	case TranslateNone:
	case TranslateVertex:
		if strings.TrimSpace(t.Options.String("project_id", "")) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "translate.options.project_id",
				Message:  fmt.Sprintf("vertex translation requires a project_id (or %s)", EnvGoogleProject),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "translate.kind",
			Message:  fmt.Sprintf("unknown translate kind %q; want %q or %q", t.Kind, TranslateVertex, TranslateNone),
		})
	}
	return issues
}

// validateFile reports an optional path that does not exist.
func validateFile(path, name string) []Issue {
	if name == "" {
		return nil
	}
	if _, err := statFn(name); err != nil {
		msg := fmt.Sprintf("cannot read %s: %v", name, err)
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("file %s does not exist", name)
		}
		return []Issue{{Severity: SeverityError, Path: path, Message: msg}}
	}
	return nil
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; must be positive", r.BatchSize),
		})
	}
	if r.BatchSize > 16384 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; multi-row INSERT backends may exceed bind parameter limits", r.BatchSize),
		})
	}
	if r.ProgressEvery < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.progress_every",
			Message:  "progress_every must not be negative",
		})
	}
	return issues
}
