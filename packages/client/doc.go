// Package client builds, dispatches and normalizes HTTP requests.
//
// A Client owns instance-default Options and a cookie jar. Each call
// merges per-call options over the defaults, builds the final URL and a
// PreparedRequest (headers, cookies, encoded body, auth, proxy,
// transport directives), hands it to the transport, parses the raw
// result into a Response, absorbs Set-Cookie headers into the jar, and
// classifies 4xx/5xx statuses into typed errors unless that is disabled.
//
// Clients are synchronous and meant for one logical sequence of
// requests; the jar is shared mutable state with no locking, so run one
// client per goroutine or synchronize externally.
package client
