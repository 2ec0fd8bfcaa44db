//go:build cgo

package gpkg

// Registers the cgo sqlite3 driver so NewWithDriver("sqlite3") works in
// cgo builds. The pure-Go driver is registered by whoever imports
// modernc.org/sqlite, normally the main package.
import _ "github.com/mattn/go-sqlite3"
