package client

import "strings"

// Body content types. TypeNone leaves content negotiation alone.
const (
	TypeNone = ""
	TypeJSON = "json"
	TypeXML  = "xml"
)

// Cookie jar modes, mirrored from the cookiejar package. Any other
// value is a file path for a persistent jar.
const (
	JarOff    = "off"
	JarMemory = "memory"
)

// Documented defaults for unset options.
const (
	DefaultTimeoutSeconds = 30
	DefaultMaxRedirects   = 10
)

// Param is one query string pair. Query parameters keep their insertion
// order all the way to the final URL.
type Param struct {
	Key   string
	Value string
}

// Field is one ordered body field. File wins over Value when set; a
// Value with the "@" sigil prefix is resolved to a File at encode time.
type Field struct {
	Name  string
	Value string
	File  *File
}

// Auth holds credentials plus the scheme the transport should apply.
// An empty scheme means basic.
type Auth struct {
	Username string
	Password string
	Scheme   string
}

// Proxy identifies an HTTP proxy and optional credentials.
type Proxy struct {
	URL      string
	Username string
	Password string
}

// Options configures a single request or, as instance defaults, every
// request of a client. Zero values mean "unset" and fall back to the
// documented defaults at merge time.
type Options struct {
	// Base is prefixed verbatim to the request path.
	Base string
	// Query parameters, appended form-urlencoded in insertion order.
	Query []Param
	// Headers, case-insensitive keys, last write wins on merge.
	Headers map[string]string
	// Cookies to send with this request; also recorded into the jar.
	Cookies map[string]string
	// Fields is the request body as ordered name/value (or file) pairs.
	Fields []Field
	// Type selects content negotiation and JSON body encoding.
	Type string
	// Auth credentials, applied by the transport.
	Auth *Auth
	// Proxy settings, passed through to the transport unchanged.
	Proxy *Proxy
	// Timeout in seconds. Zero falls back to 30.
	Timeout int
	// FollowRedirects defaults to true.
	FollowRedirects *bool
	// MaxRedirects bounds redirect following. Zero falls back to 10.
	MaxRedirects int
	// Jar selects the cookie jar mode: off, memory (default) or a file
	// path.
	Jar string
	// FailOnHTTPError turns 4xx/5xx responses into typed errors.
	// Defaults to true.
	FailOnHTTPError *bool
	// Verbose enables the transport's request/response trace.
	Verbose *bool
	// Overrides is the raw transport escape hatch, applied last.
	Overrides map[string]any
}

// BoolPtr returns a pointer to a bool value, for the tri-state option
// fields.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the redirect-follow setting, defaulting to
// true.
func (o *Options) GetFollowRedirects() bool {
	return getBool(o.FollowRedirects, true)
}

// GetFailOnHTTPError returns the error-raising setting, defaulting to
// true.
func (o *Options) GetFailOnHTTPError() bool {
	return getBool(o.FailOnHTTPError, true)
}

// GetVerbose returns the verbose setting, defaulting to false.
func (o *Options) GetVerbose() bool {
	return getBool(o.Verbose, false)
}

// DefaultOptions returns the documented instance defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:         DefaultTimeoutSeconds,
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    DefaultMaxRedirects,
		Jar:             JarMemory,
		FailOnHTTPError: BoolPtr(true),
		Verbose:         BoolPtr(false),
	}
}

// Merge combines these options with an override set, the override
// winning per top-level key. Headers, Cookies and Overrides merge
// entry by entry (header keys case-insensitively); Query and Fields are
// request data and replace wholesale when the override sets them.
// Neither receiver nor override is mutated.
func (o *Options) Merge(other *Options) *Options {
	result := *o
	result.Headers = copyStringMap(o.Headers)
	result.Cookies = copyStringMap(o.Cookies)
	result.Overrides = copyAnyMap(o.Overrides)
	result.Query = append([]Param(nil), o.Query...)
	result.Fields = append([]Field(nil), o.Fields...)

	if other == nil {
		return &result
	}

	if other.Base != "" {
		result.Base = other.Base
	}
	if len(other.Query) > 0 {
		result.Query = append([]Param(nil), other.Query...)
	}
	for key, value := range other.Headers {
		result.Headers = setHeader(result.Headers, key, value)
	}
	if len(other.Cookies) > 0 {
		if result.Cookies == nil {
			result.Cookies = make(map[string]string)
		}
		for name, value := range other.Cookies {
			result.Cookies[name] = value
		}
	}
	if len(other.Fields) > 0 {
		result.Fields = append([]Field(nil), other.Fields...)
	}
	if other.Type != "" {
		result.Type = other.Type
	}
	if other.Auth != nil {
		result.Auth = other.Auth
	}
	if other.Proxy != nil {
		result.Proxy = other.Proxy
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Jar != "" {
		result.Jar = other.Jar
	}
	if other.FailOnHTTPError != nil {
		result.FailOnHTTPError = other.FailOnHTTPError
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if len(other.Overrides) > 0 {
		if result.Overrides == nil {
			result.Overrides = make(map[string]any)
		}
		for key, value := range other.Overrides {
			result.Overrides[key] = value
		}
	}

	return &result
}

// setHeader stores a header with case-insensitive key identity: any
// existing key that folds equal is replaced, keeping the new spelling.
func setHeader(h map[string]string, key, value string) map[string]string {
	if h == nil {
		h = make(map[string]string)
	}
	for existing := range h {
		if strings.EqualFold(existing, key) {
			delete(h, existing)
		}
	}
	h[key] = value
	return h
}

// headerLookup finds a header value by case-insensitive key.
func headerLookup(h map[string]string, key string) (string, bool) {
	for existing, value := range h {
		if strings.EqualFold(existing, key) {
			return value, true
		}
	}
	return "", false
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
