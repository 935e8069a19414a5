// Package pipeline runs the lead enrichment job end to end:
//
//	read source table
//	  → spell-correct and categorize job titles
//	  → translate and categorize industries
//	  → project onto the output schema
//	  → drop, recreate and load the sink table
//
// A run is a single synchronous pass over a fully materialized dataset.
// There are no retries; the first read or write error ends the run.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"leadetl/internal/categorize"
	"leadetl/internal/metrics"
	"leadetl/internal/normalize"
	"leadetl/internal/storage"

	"github.com/google/uuid"
)

// Config names the tables and tunes the write.
type Config struct {
	Job           string
	Source        string
	Sink          string
	BatchSize     int
	ProgressEvery int
}

// Deps are the collaborators of a run.
type Deps struct {
	Open      OpenFunc
	Spell     normalize.SpellFunc
	Translate normalize.TranslateFunc
	Rules     categorize.RuleSet
}

// Result summarizes a finished run.
type Result struct {
	RunID string
	Table string // sink table
	Rows  int64  // rows inserted into Table
	Stats Stats
}

// newRunID is a test seam.
var newRunID = uuid.NewString

// Run reads cfg.Source, enriches every lead and replaces cfg.Sink with the
// result. Errors carry the storage sentinels (ErrConnection, ErrQuery,
// ErrWrite); translation failures never fail a run.
func Run(ctx context.Context, cfg Config, deps Deps) (Result, error) {
	if deps.Open == nil {
		return Result{}, errors.New("pipeline: Deps.Open is nil")
	}
	if cfg.BatchSize <= 0 {
		return Result{}, errors.New("pipeline: batch size must be > 0")
	}

	res := Result{RunID: newRunID(), Table: cfg.Sink}
	log.Printf("pipeline: run=%s job=%s source=%s sink=%s batch=%d",
		res.RunID, cfg.Job, cfg.Source, cfg.Sink, cfg.BatchSize)
	runStart := time.Now()

	start := time.Now()
	ds, err := ReadLeads(ctx, deps.Open, cfg.Source)
	metrics.RecordStep(cfg.Job, metrics.StepRead, err, time.Since(start))
	if err != nil {
		return res, err
	}
	metrics.RecordRow(cfg.Job, metrics.KindRead, int64(len(ds)))

	start = time.Now()
	e := Enricher{
		Spell:         deps.Spell,
		Translate:     deps.Translate,
		Rules:         deps.Rules,
		ProgressEvery: cfg.ProgressEvery,
	}
	res.Stats, err = e.Enrich(ctx, ds)
	metrics.RecordStep(cfg.Job, metrics.StepTransform, err, time.Since(start))
	if err != nil {
		return res, err
	}
	recordStats(cfg.Job, res.Stats)

	start = time.Now()
	res.Rows, err = WriteLeads(ctx, deps.Open, cfg.Sink, ds, cfg.BatchSize)
	metrics.RecordStep(cfg.Job, metrics.StepWrite, err, time.Since(start))
	metrics.RecordRow(cfg.Job, metrics.KindInserted, res.Rows)
	if err != nil {
		return res, err
	}
	metrics.RecordBatches(cfg.Job, storage.BatchCount(len(ds), cfg.BatchSize))

	log.Printf("summary: run=%s read=%d inserted=%d table=%s elapsed=%s",
		res.RunID, len(ds), res.Rows, res.Table, time.Since(runStart).Truncate(time.Millisecond))
	return res, nil
}

func recordStats(job string, st Stats) {
	metrics.RecordRow(job, metrics.KindSpellCorrected, int64(st.SpellCorrected))
	metrics.RecordRow(job, metrics.KindTranslated, int64(st.Translated))
	metrics.RecordRow(job, metrics.KindTranslateFallback, int64(st.TranslateFallbacks))
	metrics.RecordRow(job, metrics.KindUncategorized, int64(st.UncategorizedTitles+st.UncategorizedIndustries))
}
