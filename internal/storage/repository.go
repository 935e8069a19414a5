// Package storage contains the storage-agnostic contracts the job reads and
// writes through, a small factory registry that backend packages plug into
// at init time, and the batched loader shared by every backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"leadetl/internal/ddl"
)

// Sentinel errors. Backends wrap driver errors with one of these so callers
// can classify failures with errors.Is without knowing the backend.
var (
	// ErrConnection means the warehouse could not be opened or reached.
	ErrConnection = errors.New("storage: connection failed")
	// ErrQuery means a read failed, including a missing source table.
	ErrQuery = errors.New("storage: query failed")
	// ErrWrite means dropping, creating or loading the sink table failed.
	ErrWrite = errors.New("storage: write failed")
)

// Config is the backend-neutral connection description handed to a factory.
type Config struct {
	Kind string // registered backend kind, e.g. "snowflake"
	DSN  string // driver-specific connection string

	// Table is the table this repository reads (ReadAll) or loads
	// (CopyFrom). It may be schema-qualified.
	Table string

	// Columns is the ordered column list used by CopyFrom. Empty for
	// read-only repositories.
	Columns []string
}

// Table is a fully materialized result set: ordered column names and rows
// whose values are aligned with Columns. Values are whatever the driver
// returned, except []byte which backends convert to string.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Repository is the contract every backend satisfies.
type Repository interface {
	// ReadAll runs SELECT * against the configured table.
	ReadAll(ctx context.Context) (*Table, error)
	// CopyFrom bulk-inserts rows (aligned to columns) into the configured
	// table and returns the number of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// Dialect renders identifiers and column types for this backend.
	Dialect() ddl.Dialect
	// Close releases the underlying connection pool.
	Close()
}

// Factory opens a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind. Backend packages
// call it from init.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether kind has a registered factory.
func Supported(kind string) bool {
	regMu.RLock()
	defer regMu.RUnlock()
	_, ok := factories[strings.TrimSpace(kind)]
	return ok
}
