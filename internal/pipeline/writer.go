package pipeline

import (
	"context"

	"leadetl/internal/lead"
	"leadetl/internal/storage"
)

// WriteLeads replaces table with the 11-column projection of ds and returns
// the number of rows inserted. Failures after the repository is open are
// wrapped in storage.ErrWrite; the drop, create and inserts are not atomic.
func WriteLeads(ctx context.Context, open OpenFunc, table string, ds lead.Dataset, batchSize int) (int64, error) {
	repo, err := open(ctx, table)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	return storage.ReplaceTable(ctx, repo, lead.OutputTable(table), ds.Project(), batchSize)
}
