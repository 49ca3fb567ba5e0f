// Package runfile loads YAML request collections for curlkit.
//
// A runfile names a sequence of requests sharing file-level defaults.
// Body fields and query parameters are written as ordered "name=value"
// strings so their order survives into the encoded request; a value
// starting with "@" uploads the named file.
package runfile
