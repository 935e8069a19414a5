package pipeline

import (
	"context"
	"fmt"
	"log"

	"leadetl/internal/lead"
	"leadetl/internal/storage"
)

// OpenFunc opens a repository bound to table. Callers own the returned
// repository and must Close it.
type OpenFunc func(ctx context.Context, table string) (storage.Repository, error)

// Opener returns an OpenFunc that opens kind/dsn through the storage
// factory. Repositories are configured with the output column list.
func Opener(kind, dsn string) OpenFunc {
	return func(ctx context.Context, table string) (storage.Repository, error) {
		return storage.New(ctx, storage.Config{
			Kind:    kind,
			DSN:     dsn,
			Table:   table,
			Columns: outputColumnNames(),
		})
	}
}

func outputColumnNames() []string {
	return lead.OutputTable("").ColumnNames()
}

// ReadLeads reads every row of table and maps it into a Dataset. There is no
// filter and no pagination. Connection failures surface as
// storage.ErrConnection; a missing table, a failed query, or a result set
// without the transformed columns surfaces as storage.ErrQuery.
func ReadLeads(ctx context.Context, open OpenFunc, table string) (lead.Dataset, error) {
	repo, err := open(ctx, table)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	t, err := repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	ds, err := lead.FromRows(t.Columns, t.Rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", storage.ErrQuery, table, err)
	}
	log.Printf("reader: table=%s rows=%d columns=%d", table, len(ds), len(t.Columns))
	return ds, nil
}
