package client

import (
	"strings"

	"github.com/curlkit/curlkit/packages/cookiejar"
	"github.com/tidwall/gjson"
)

// Response is the normalized result of one request: final status code,
// headers (original case, one value per key, last occurrence winning),
// cookies set by this response, and the raw body. Constructed once per
// request and not mutated afterwards.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Cookies    map[string]cookiejar.Cookie
	Body       []byte
}

// BodyString returns the body as text.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header looks up a header value by case-insensitive name.
func (r *Response) Header(key string) string {
	for name, value := range r.Headers {
		if strings.EqualFold(name, key) {
			return value
		}
	}
	return ""
}

// Cookie returns a cookie set by this response.
func (r *Response) Cookie(name string) (cookiejar.Cookie, bool) {
	c, ok := r.Cookies[name]
	return c, ok
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// IsJSON reports whether the response declares a JSON body.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

// JSON resolves a gjson path against the body. An empty path returns
// the whole document.
func (r *Response) JSON(path string) gjson.Result {
	if path == "" {
		return gjson.ParseBytes(r.Body)
	}
	return gjson.GetBytes(r.Body, path)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}
