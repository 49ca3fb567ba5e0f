// Package history records executed requests in a local SQLite database
// so past calls can be listed and replayed.
package history
