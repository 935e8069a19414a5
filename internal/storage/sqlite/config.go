// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:leads.db?cache=shared"
	//   "leads.db" (interpreted by the driver)
	//   ":memory:" (one connection only; see NewRepository)
	DSN string

	// Table is the table read by ReadAll and loaded by CopyFrom. FQN values
	// such as "main.leads" are accepted and quoted segment by segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
