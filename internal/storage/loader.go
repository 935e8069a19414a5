// This file implements the batched loader: it slices rows into batches and
// invokes a provided bulk-insert function (CopyFn) per batch.
//
// Backends implement CopyFn with their most efficient primitive (Postgres
// COPY, SQL Server bulk copy, multi-row INSERT elsewhere).
//
// Logging: on every successful flush, a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"leadetl/internal/ddl"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to 'columns' order) and return the number of rows
// reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches groups rows into batches of size 'batchSize' and calls 'copyFn'
// for each non-empty batch. It returns the total number of rows reported by
// copyFn and the first error encountered; no batch after a failure is sent.
//
// Cancellation: returns (total, ctx.Err()) when canceled between batches.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: COPY failed after=%d total=%d err=%v", n, total, err)
			return total, err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total
	}

	log.Printf("loader: done batches=%d total_inserted=%d", batches, total)
	return total, nil
}

// BatchCount returns how many CopyFn calls LoadBatches makes for n rows.
func BatchCount(n, batchSize int) int64 {
	if n <= 0 || batchSize <= 0 {
		return 0
	}
	return int64((n + batchSize - 1) / batchSize)
}

// ReplaceTable drops td.FQN if it exists, recreates it from td using the
// repository's dialect, and loads rows in batches. The three steps are not
// atomic: a failure after the drop leaves the table missing or partial.
// Every failure is wrapped in ErrWrite.
func ReplaceTable(ctx context.Context, repo Repository, td ddl.TableDef, rows [][]any, batchSize int) (int64, error) {
	d := repo.Dialect()

	drop, err := ddl.BuildDropTableSQL(d, td.FQN)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	create, err := ddl.BuildCreateTableSQL(d, td)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := repo.Exec(ctx, drop); err != nil {
		return 0, fmt.Errorf("%w: drop %s: %w", ErrWrite, td.FQN, err)
	}
	if err := repo.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", ErrWrite, td.FQN, err)
	}
	log.Printf("storage: recreated table=%s dialect=%s columns=%d", td.FQN, d.Name(), len(td.Columns))

	n, err := LoadBatches(ctx, td.ColumnNames(), rows, batchSize, repo.CopyFrom)
	if err != nil {
		return n, fmt.Errorf("%w: load %s: %w", ErrWrite, td.FQN, err)
	}
	return n, nil
}
