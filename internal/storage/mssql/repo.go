// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb driver. Writes use the bulk copy API (mssql.CopyIn) inside a
// transaction; reads are a plain SELECT *.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"leadetl/internal/ddl"
	"leadetl/internal/storage"
	"leadetl/internal/storage/sqldb"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Dialect renders SQL Server identifiers and types. Text columns are
// NVARCHAR(MAX) so non-Latin industry names survive.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }

// QuoteIdent brackets a SQL Server identifier, escaping ].
func (Dialect) QuoteIdent(id string) string { return msIdent(id) }

func (Dialect) SQLType(t ddl.Type) (string, error) {
	switch t {
	case ddl.TypeText:
		return "NVARCHAR(MAX)", nil
	case ddl.TypeDate:
		return "DATE", nil
	}
	return "", &ddl.UnsupportedTypeError{Dialect: "mssql", Type: t}
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("%w: mssql dsn: %w", storage.ErrConnection, err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mssql: open: %w", storage.ErrConnection, err)
	}
	if err := sqldb.Ping(ctx, db, "mssql"); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReadAll returns every row of the configured table.
func (r *Repository) ReadAll(ctx context.Context) (*storage.Table, error) {
	return sqldb.ReadAll(ctx, r.db, "SELECT * FROM "+msFQN(r.cfg.Table))
}

// CopyFrom performs a bulk insert directly into the configured target table.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msFQN(r.cfg.Table), mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.leads" to
// "[dbo].[leads]". If no dot is present, returns a single quoted ident.
func msFQN(name string) string { return ddl.QuoteFQN(Dialect{}, name) }
