// Package loader runs the two load pipelines: the bulk playback export and
// the streaming listener-count export.
//
// Each run is one transaction. Record-level rejections are counted and
// skipped; any other error aborts the run and rolls everything back.
package loader

import (
	"context"
	"log"
	"time"

	"radioetl/internal/metrics"
	"radioetl/internal/storage"
)

// Logger is the minimal logging interface used by the pipelines.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Pipeline binds a store to the load operations. Zero Logger means silent.
type Pipeline struct {
	Store  storage.Store
	Logger Logger
}

// Summary reports the outcome of one run.
type Summary struct {
	Inserted int
	Skipped  int
	// Reasons breaks Skipped down by rejection reason.
	Reasons map[string]int
	Elapsed time.Duration
}

func (p *Pipeline) logger() func(format string, v ...any) {
	if p.Logger == nil {
		l := log.New(discardWriter{}, "", 0)
		return l.Printf
	}
	return p.Logger.Printf
}

// runInTx wraps fn in one transaction: commit on nil, rollback otherwise.
// The deferred Rollback is a no-op after a successful Commit.
func runInTx(ctx context.Context, store storage.Store, fn func(tx storage.Tx) error) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const (
	metricRecordsTotal = "radioetl_records_total"
	metricRunDuration  = "radioetl_run_duration_seconds"
)

func emitRunMetrics(mode string, sum Summary) {
	if sum.Inserted > 0 {
		metrics.IncCounter(metricRecordsTotal, float64(sum.Inserted), metrics.Labels{"kind": "inserted"})
	}
	if sum.Skipped > 0 {
		metrics.IncCounter(metricRecordsTotal, float64(sum.Skipped), metrics.Labels{"kind": "skipped"})
	}
	metrics.ObserveHistogram(metricRunDuration, sum.Elapsed.Seconds(), metrics.Labels{"mode": mode})
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (n int, err error) { return len(p), nil }
