package client

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/curlkit/curlkit/packages/cookiejar"
	"github.com/curlkit/curlkit/packages/transport"
)

// Client dispatches requests through the shared pipeline: merge options,
// build URL, encode, send, parse, classify. It owns the cookie jar for
// the lifetime of the instance.
type Client struct {
	defaults  *Options
	jar       *cookiejar.Jar
	transport transport.Transport
}

// ClientOption configures a Client at construction.
type ClientOption func(*Client)

// WithDefaults sets the instance-default options, merged under every
// per-call option set.
func WithDefaults(opts *Options) ClientOption {
	return func(c *Client) {
		c.defaults = opts
	}
}

// WithTransport swaps the transport collaborator. The default is the
// net/http-backed transport.
func WithTransport(t transport.Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// New creates a client. The cookie jar is created here, per the
// defaults' jar mode, and lives as long as the instance.
func New(opts ...ClientOption) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	c.defaults = DefaultOptions().Merge(c.defaults)
	if c.transport == nil {
		c.transport = transport.NewNetHTTP()
	}

	jar, err := cookiejar.New(c.defaults.Jar)
	if err != nil {
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}
	c.jar = jar

	return c, nil
}

// Request runs the full pipeline for one call. On 4xx/5xx with error
// raising enabled, the parsed Response is returned together with the
// typed error so callers can still inspect it.
func (c *Client) Request(method, path string, opts *Options) (*Response, error) {
	eff := c.defaults.Merge(opts)

	// A per-call jar mode can only switch the instance jar off; the jar
	// itself is fixed at construction.
	jar := c.jar
	if eff.Jar == JarOff {
		jar = nil
	}

	url := BuildURL(path, eff)

	prep, err := Encode(method, url, eff, jar)
	if err != nil {
		return nil, err
	}

	raw, err := c.transport.Send(prep)
	if err != nil {
		return nil, mapTransportError(err)
	}

	resp, err := ParseResponse(raw, jar)
	if err != nil {
		return nil, err
	}

	if eff.GetFailOnHTTPError() {
		if err := classify(resp); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// Get issues a GET request.
func (c *Client) Get(path string, opts *Options) (*Response, error) {
	return c.Request("GET", path, opts)
}

// Head issues a HEAD request; the response body is always empty.
func (c *Client) Head(path string, opts *Options) (*Response, error) {
	return c.Request("HEAD", path, opts)
}

// Post issues a POST request.
func (c *Client) Post(path string, opts *Options) (*Response, error) {
	return c.Request("POST", path, opts)
}

// Put issues a PUT request.
func (c *Client) Put(path string, opts *Options) (*Response, error) {
	return c.Request("PUT", path, opts)
}

// Patch issues a PATCH request.
func (c *Client) Patch(path string, opts *Options) (*Response, error) {
	return c.Request("PATCH", path, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(path string, opts *Options) (*Response, error) {
	return c.Request("DELETE", path, opts)
}

// Cookies returns a copy of the jar contents.
func (c *Client) Cookies() map[string]cookiejar.Cookie {
	return c.jar.All()
}

// Cookie returns a single jar cookie by name.
func (c *Client) Cookie(name string) (cookiejar.Cookie, bool) {
	return c.jar.Get(name)
}

// Jar exposes the instance jar, e.g. to clear it.
func (c *Client) Jar() *cookiejar.Jar {
	return c.jar
}

// mapTransportError converts a transport-native failure into the typed
// taxonomy: redirect-loop, connection-class (timeout 504, otherwise
// 500), or the generic request error. All carry the native message.
func mapTransportError(err error) error {
	if errors.Is(err, transport.ErrRedirectLimit) {
		return &TooManyRedirectsError{Status: 500, Message: err.Error()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ConnectionError{Status: 504, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ConnectionError{Status: 504, Message: err.Error()}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ConnectionError{Status: 500, Message: err.Error()}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &ConnectionError{Status: 500, Message: err.Error()}
	}

	return &RequestError{Status: 500, Message: err.Error()}
}
