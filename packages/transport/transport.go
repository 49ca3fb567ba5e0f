package transport

import (
	"errors"
	"time"
)

// Auth scheme names understood by the client. Only basic has fixed
// semantics in the core; the rest are transport-native.
const (
	AuthBasic  = "basic"
	AuthDigest = "digest"
	AuthNTLM   = "ntlm"
	AuthAny    = "any"
)

// Sentinel errors reported by transports.
var (
	// ErrRedirectLimit is returned when a request exceeds its redirect
	// budget while following redirects.
	ErrRedirectLimit = errors.New("too many redirects")

	// ErrUnsupportedAuthScheme is returned for auth schemes the
	// transport does not speak.
	ErrUnsupportedAuthScheme = errors.New("unsupported auth scheme")
)

// Auth carries credentials for the transport to apply.
type Auth struct {
	Scheme   string
	Username string
	Password string
}

// Proxy identifies an HTTP proxy plus optional credentials, passed
// through to the transport unchanged.
type Proxy struct {
	URL      string
	Username string
	Password string
}

// PreparedRequest is the fully resolved request ready for dispatch:
// method, URL, headers, encoded body and transport directives.
//
// Overrides is the escape hatch: implementation-defined keys applied by
// the transport after every synthesized setting, last writer wins.
type PreparedRequest struct {
	Method          string
	URL             string
	Headers         map[string]string
	Body            []byte
	DiscardBody     bool
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	Auth            *Auth
	Proxy           *Proxy
	Verbose         bool
	Overrides       map[string]any
}

// RawResponse is the transport's view of a response before parsing: the
// final status code, the raw header block (status line plus header
// lines, CRLF-separated) and the raw body.
type RawResponse struct {
	StatusCode  int
	HeaderBlock string
	Body        []byte
}

// Transport sends a prepared request and reports the raw result. Calls
// are synchronous: Send does not return until the exchange completes or
// fails.
type Transport interface {
	Send(req *PreparedRequest) (*RawResponse, error)
}
