// Package sqldb holds the database/sql plumbing shared by the backends that
// go through a database/sql driver (Snowflake, SQLite, MySQL, SQL Server):
// materializing a SELECT into a storage.Table and inserting row batches.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"leadetl/internal/storage"
)

// ReadAll runs query and materializes every row. []byte values are
// converted to string so callers see one representation for text across
// drivers. Errors are wrapped in storage.ErrQuery.
func ReadAll(ctx context.Context, db *sql.DB, query string) (*storage.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQuery, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns: %w", storage.ErrQuery, err)
	}

	out := &storage.Table{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan row %d: %w", storage.ErrQuery, len(out.Rows)+1, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQuery, err)
	}
	return out, nil
}

// InsertRows executes stmtSQL once per row inside a single transaction using
// a prepared statement. Every row must have len(columns) values.
func InsertRows(ctx context.Context, db *sql.DB, stmtSQL string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert row %d: %w", inserted+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// InsertValues sends all rows in one multi-row INSERT ... VALUES (...), (...)
// statement with '?' placeholders. It suits drivers where a round trip per
// row is expensive.
func InsertValues(ctx context.Context, db *sql.DB, table string, quotedCols []string, rows [][]any) (int64, error) {
	if len(quotedCols) == 0 {
		return 0, fmt.Errorf("insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(quotedCols)), ", ") + ")"
	args := make([]any, 0, len(rows)*len(quotedCols))
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(quotedCols, ", "))
	for i, row := range rows {
		if len(row) != len(quotedCols) {
			return 0, fmt.Errorf("insert: row length %d != columns length %d", len(row), len(quotedCols))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}

	res, err := db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert values: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report it; the statement succeeded as a whole.
		return int64(len(rows)), nil
	}
	return n, nil
}

// InsertSQL renders INSERT INTO table (cols) VALUES (?, ?, ...).
func InsertSQL(table string, quotedCols []string) string {
	ph := make([]string, len(quotedCols))
	for i := range ph {
		ph[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(quotedCols, ", "), strings.Join(ph, ", "))
}

// Ping fails fast on an unreachable database, wrapping storage.ErrConnection.
func Ping(ctx context.Context, db *sql.DB, backend string) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %s: ping: %w", storage.ErrConnection, backend, err)
	}
	return nil
}
