// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and modernc.org/sqlite. Inserts are prepared per row inside a
// transaction; SQLite has no bulk-load API, but a single transaction keeps
// moderate volumes fast. The backend serves local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"leadetl/internal/ddl"
	"leadetl/internal/storage"
	"leadetl/internal/storage/sqldb"

	_ "modernc.org/sqlite"
)

// Dialect renders SQLite identifiers and types. Dates are stored in a
// column declared DATE so the driver parses them back into time.Time.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func (Dialect) SQLType(t ddl.Type) (string, error) {
	switch t {
	case ddl.TypeText:
		return "TEXT", nil
	case ddl.TypeDate:
		return "DATE", nil
	}
	return "", &ddl.UnsupportedTypeError{Dialect: "sqlite", Type: t}
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("%w: sqlite: DSN must not be empty", storage.ErrConnection)
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sqlite: open: %w", storage.ErrConnection, err)
	}
	// Each connection to :memory: is a separate database.
	if strings.Contains(cfg.DSN, ":memory:") || strings.Contains(cfg.DSN, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqldb.Ping(pingCtx, db, "sqlite"); err != nil {
		db.Close()
		return nil, nil, err
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReadAll returns every row of the configured table.
func (r *Repository) ReadAll(ctx context.Context) (*storage.Table, error) {
	return sqldb.ReadAll(ctx, r.db, "SELECT * FROM "+ddl.QuoteFQN(Dialect{}, r.cfg.Table))
}

// CopyFrom inserts the given rows into the configured table using a single
// transaction and a prepared INSERT statement.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	stmtSQL := sqldb.InsertSQL(ddl.QuoteFQN(Dialect{}, r.cfg.Table), ddl.QuoteColumns(Dialect{}, columns))
	n, err := sqldb.InsertRows(ctx, r.db, stmtSQL, columns, rows)
	if err != nil {
		return n, fmt.Errorf("sqlite: %w", err)
	}
	return n, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }
