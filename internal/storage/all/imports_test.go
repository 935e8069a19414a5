package all

import (
	"testing"

	"leadetl/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"snowflake", "postgres", "mssql", "mysql", "sqlite"} {
		if !storage.Supported(kind) {
			t.Errorf("storage kind %q not registered; have %v", kind, storage.ListKinds())
		}
	}
}
