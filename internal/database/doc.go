// Package database provides the optional SQLite archive of completed scans.
//
// The in-memory history keeps only the newest hundred scans and forgets
// everything on restart. When an archive directory is configured, every
// verdict is also written here so that `phishguard history` can list scans
// across restarts, and every override added at runtime is recorded with its
// origin.
//
// The archive uses modernc.org/sqlite, a CGO-free driver, and a single
// database file. Archive writes never decide the outcome of an analysis:
// callers log failures and carry on.
package database
