package client

import (
	neturl "net/url"
	"strings"
)

// BuildURL composes the final request URL: base + path concatenated
// verbatim (duplicate slashes are the caller's responsibility), then the
// query string in insertion order, form-urlencoded (spaces as "+",
// reserved characters percent-escaped). Pure function; with an empty
// query it returns base+path exactly.
func BuildURL(path string, opts *Options) string {
	u := path
	if opts.Base != "" {
		u = opts.Base + path
	}
	if len(opts.Query) == 0 {
		return u
	}

	var b strings.Builder
	b.WriteString(u)
	b.WriteByte('?')
	for i, p := range opts.Query {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(neturl.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(neturl.QueryEscape(p.Value))
	}
	return b.String()
}
