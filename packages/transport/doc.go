// Package transport dispatches prepared requests over the wire.
//
// The core hands a fully resolved PreparedRequest to a Transport and gets
// back either a RawResponse (status, raw header block, raw body) or the
// transport's native error. NetHTTP is the default implementation, built
// on net/http; it owns TLS, DNS, connection pooling and redirect
// following, and honors the raw override knobs applied after every
// synthesized setting.
package transport
