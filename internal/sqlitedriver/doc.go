// Package sqlitedriver registers a database/sql driver under the name
// "sqlite3", backed by the pure-Go modernc.org/sqlite implementation so the
// daemon builds without cgo.
//
// Import this package for its side effects only:
//
//	import _ "github.com/weftrun/weftcore/internal/sqlitedriver"
package sqlitedriver
