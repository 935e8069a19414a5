// Package snowflake implements a Snowflake-backed storage.Repository using
// github.com/snowflakedb/gosnowflake through database/sql. Reads are a plain
// SELECT *; writes are multi-row INSERT ... VALUES statements with bound
// parameters, one statement per batch.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"leadetl/internal/ddl"
	"leadetl/internal/storage"
	"leadetl/internal/storage/sqldb"
)

// Credentials are the connection parameters of a Snowflake warehouse.
type Credentials struct {
	User      string
	Password  string
	Account   string
	Warehouse string
	Database  string
	Schema    string
	Role      string // optional
}

// DSN renders c as a gosnowflake connection string.
func DSN(c Credentials) (string, error) {
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	})
	if err != nil {
		return "", fmt.Errorf("snowflake dsn: %w", err)
	}
	return dsn, nil
}

// Dialect renders Snowflake identifiers and types. Quoted identifiers are
// case-sensitive in Snowflake, so table and column names should be given in
// upper case.
type Dialect struct{}

func (Dialect) Name() string { return "snowflake" }

func (Dialect) QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func (Dialect) SQLType(t ddl.Type) (string, error) {
	switch t {
	case ddl.TypeText:
		return "VARCHAR", nil
	case ddl.TypeDate:
		return "DATE", nil
	}
	return "", &ddl.UnsupportedTypeError{Dialect: "snowflake", Type: t}
}

// Config holds Snowflake repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is a Snowflake-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens and pings a Snowflake connection and returns a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := gosnowflake.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("%w: snowflake dsn: %w", storage.ErrConnection, err)
	}
	db, err := sql.Open("snowflake", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: snowflake: open: %w", storage.ErrConnection, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := sqldb.Ping(ctx, db, "snowflake"); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReadAll returns every row of the configured table. DATE columns arrive as
// time.Time and text columns as string.
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
		return 0, fmt.Errorf("snowflake: %w", err)
	}
	return n, nil
}

// Exec executes a single statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("snowflake: exec: %w", err)
	}
	return nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }
