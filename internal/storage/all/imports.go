// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "snowflake" (leadetl/internal/storage/snowflake)
//   - "postgres"  (leadetl/internal/storage/postgres)
//   - "mssql"     (leadetl/internal/storage/mssql)
//   - "mysql"     (leadetl/internal/storage/mysql)
//   - "sqlite"    (leadetl/internal/storage/sqlite)
//
// Typical usage (in cmd/leadetl/main.go):
//
//	import _ "leadetl/internal/storage/all" // enable all built-in backends
//
// If you want a binary that supports only a subset of backends, define an
// alternative wiring package that imports only the required backends.
package all

import (
	_ "leadetl/internal/storage/mssql"
	_ "leadetl/internal/storage/mysql"
	_ "leadetl/internal/storage/postgres"
	_ "leadetl/internal/storage/snowflake"
	_ "leadetl/internal/storage/sqlite"
)
