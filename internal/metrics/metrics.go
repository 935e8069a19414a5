// Package metrics records run-level counters and step timings for the lead
// enrichment job behind a pluggable Backend.
//
// The global backend defaults to a no-op, so every Record* helper is safe to
// call whether or not a real backend (Pushgateway, DogStatsD) was installed.
// Concrete metric systems live in subpackages.
package metrics

import "time"

// Metric names emitted by the Record* helpers. Backends route on these.
const (
	StepTotal           = "leadetl_step_total"
	StepDurationSeconds = "leadetl_step_duration_seconds"
	RecordsTotal        = "leadetl_records_total"
	BatchesTotal        = "leadetl_batches_total"
)

// Steps of a run.
const (
	StepRead      = "read"
	StepTransform = "transform"
	StepWrite     = "write"
)

// Record kinds counted per run.
const (
	KindRead              = "read"
	KindSpellCorrected    = "spell_corrected"
	KindTranslated        = "translated"
	KindTranslateFallback = "translate_fallback"
	KindUncategorized     = "uncategorized"
	KindInserted          = "inserted"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step and records its duration, labeled
// with success or failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// Since is RecordStep measured from start; intended for defer.
//
//	defer func(t time.Time) { metrics.Since(job, metrics.StepRead, err, t) }(time.Now())
func Since(job, step string, err error, start time.Time) {
	RecordStep(job, step, err, time.Since(start))
}

// RecordRow adds delta to the record counter for kind (one of the Kind*
// constants). Non-positive deltas are dropped.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the loaded-batch counter for job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
