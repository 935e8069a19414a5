// Package mysql implements a MySQL-backed storage.Repository using
// github.com/go-sql-driver/mysql. Writes are multi-row INSERT statements, one
// per batch.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"leadetl/internal/ddl"
	"leadetl/internal/storage"
	"leadetl/internal/storage/sqldb"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Dialect renders MySQL identifiers and types.
type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func (Dialect) SQLType(t ddl.Type) (string, error) {
	switch t {
	case ddl.TypeText:
		return "TEXT", nil
	case ddl.TypeDate:
		return "DATE", nil
	}
	return "", &ddl.UnsupportedTypeError{Dialect: "mysql", Type: t}
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NormalizeDSN parses dsn and turns on parseTime so DATE columns scan into
// time.Time like the other backends.
func NormalizeDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}

// NewRepository opens and pings a MySQL pool and returns a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: mysql: open: %w", storage.ErrConnection, err)
	}
	if err := sqldb.Ping(ctx, db, "mysql"); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReadAll returns every row of the configured table.
func (r *Repository) ReadAll(ctx context.Context) (*storage.Table, error) {
	return sqldb.ReadAll(ctx, r.db, "SELECT * FROM "+ddl.QuoteFQN(Dialect{}, r.cfg.Table))
}

// CopyFrom inserts rows with one multi-row INSERT statement.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := sqldb.InsertValues(ctx, r.db,
		ddl.QuoteFQN(Dialect{}, r.cfg.Table),
		ddl.QuoteColumns(Dialect{}, columns),
		rows,
	)
	if err != nil {
		return 0, fmt.Errorf("mysql: %w", err)
	}
	return n, nil
}

// Exec executes a single statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }
