// Package postgres implements a Postgres repository using pgx v5. Reads go
// through the pool's Query; writes use the COPY protocol via pool.CopyFrom.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadetl/internal/ddl"
	"leadetl/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN     string   // connection string for pgxpool
	Table   string   // fully qualified table name, e.g., "public.leads_processed"
	Columns []string // ordered columns for COPY
}

// Dialect renders Postgres identifiers and types.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// QuoteIdent safely quotes a single identifier segment for Postgres.
func (Dialect) QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func (Dialect) SQLType(t ddl.Type) (string, error) {
	switch t {
	case ddl.TypeText:
		return "VARCHAR", nil
	case ddl.TypeDate:
		return "DATE", nil
	}
	return "", &ddl.UnsupportedTypeError{Dialect: "postgres", Type: t}
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: pgxpool: %w", storage.ErrConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("%w: postgres: ping: %w", storage.ErrConnection, err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// ReadAll returns every row of the configured table. DATE columns arrive as
// time.Time, text as string.
func (r *Repository) ReadAll(ctx context.Context) (*storage.Table, error) {
	rows, err := r.pool.Query(ctx, "SELECT * FROM "+ddl.QuoteFQN(Dialect{}, r.cfg.Table))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQuery, describe(err))
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	out := &storage.Table{Columns: make([]string, len(fds))}
	for i, fd := range fds {
		out.Columns[i] = fd.Name
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", storage.ErrQuery, len(out.Rows)+1, err)
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQuery, describe(err))
	}
	return out, nil
}

// CopyFrom streams rows into the configured table with COPY.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", describe(err))
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", describe(err))
	}
	return nil
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// describe adds the server's detail and SQLSTATE to Postgres errors while
// keeping the original error in the chain.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s, %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}
