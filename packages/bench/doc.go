// Package bench repeats a single request and aggregates latency
// statistics for it.
package bench
