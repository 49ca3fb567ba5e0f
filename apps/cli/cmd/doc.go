// Package cmd implements the curlkit CLI commands using Cobra.
//
// Available commands:
//   - get/head/post/put/patch/delete: Send a single request
//   - run: Execute the requests of a YAML runfile in order
//   - bench: Repeat a request and report latency statistics
//   - history: List or clear recorded requests
//   - init: Create a new curlkit project with example files
//   - version: Show curlkit version information
//
// The CLI supports flags for headers, query parameters, body encoding,
// authentication, proxying, cookie jars, and watch mode for runfiles.
package cmd
