package transport

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout is applied when the request carries none.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the redirect budget when following redirects.
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host.
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second
)

// Override keys recognized by NetHTTP. Values are coerced leniently
// (bools accept true/"true"/1, durations accept seconds or strings like
// "500ms"). Unknown keys are ignored.
const (
	OverrideTimeout         = "timeout"
	OverrideFollowRedirects = "follow-redirects"
	OverrideMaxRedirects    = "max-redirects"
	OverrideInsecure        = "insecure"
	OverrideProxy           = "proxy"
	OverrideUserAgent       = "user-agent"
)

// NetHTTP is the default transport, built on net/http.
type NetHTTP struct {
	trace io.Writer
}

// NewNetHTTP returns a transport that writes verbose traces to stderr.
func NewNetHTTP() *NetHTTP {
	return &NetHTTP{trace: os.Stderr}
}

// NewNetHTTPWithTrace returns a transport writing verbose traces to w.
func NewNetHTTPWithTrace(w io.Writer) *NetHTTP {
	return &NetHTTP{trace: w}
}

// knobs are the transport settings for one send, after overrides.
type knobs struct {
	timeout      time.Duration
	follow       bool
	maxRedirects int
	insecure     bool
	proxy        string
	userAgent    string
}

// Send dispatches the request. Auth is applied per scheme: basic (and
// "any") as an Authorization header, digest via challenge-response.
// NTLM is not spoken by this transport.
func (t *NetHTTP) Send(req *PreparedRequest) (*RawResponse, error) {
	k, err := t.effectiveKnobs(req)
	if err != nil {
		return nil, err
	}

	client, err := t.buildClient(k)
	if err != nil {
		return nil, err
	}

	if req.Auth != nil {
		switch strings.ToLower(req.Auth.Scheme) {
		case AuthDigest:
			return t.sendWithDigest(client, req, k)
		case "", AuthBasic, AuthAny:
			// Attached as a header in do.
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAuthScheme, req.Auth.Scheme)
		}
	}

	resp, body, err := t.do(client, req, k, "")
	if err != nil {
		return nil, err
	}
	return newRawResponse(resp, body), nil
}

func (t *NetHTTP) effectiveKnobs(req *PreparedRequest) (knobs, error) {
	k := knobs{
		timeout:      req.Timeout,
		follow:       req.FollowRedirects,
		maxRedirects: req.MaxRedirects,
	}
	if k.timeout <= 0 {
		k.timeout = DefaultTimeout
	}
	if k.maxRedirects <= 0 {
		k.maxRedirects = DefaultMaxRedirects
	}
	if req.Proxy != nil && req.Proxy.URL != "" {
		proxy, err := proxyURL(req.Proxy)
		if err != nil {
			return k, err
		}
		k.proxy = proxy
	}

	// The escape hatch wins over everything synthesized above.
	applyOverrides(&k, req.Overrides)
	return k, nil
}

func proxyURL(p *Proxy) (string, error) {
	u, err := neturl.Parse(p.URL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy url: %w", err)
	}
	if p.Username != "" {
		u.User = neturl.UserPassword(p.Username, p.Password)
	}
	return u.String(), nil
}

func applyOverrides(k *knobs, overrides map[string]any) {
	for key, value := range overrides {
		switch key {
		case OverrideTimeout:
			if d, ok := toDuration(value); ok {
				k.timeout = d
			}
		case OverrideFollowRedirects:
			if b, ok := toBool(value); ok {
				k.follow = b
			}
		case OverrideMaxRedirects:
			if n, ok := toInt(value); ok {
				k.maxRedirects = n
			}
		case OverrideInsecure:
			if b, ok := toBool(value); ok {
				k.insecure = b
			}
		case OverrideProxy:
			if s, ok := value.(string); ok {
				k.proxy = s
			}
		case OverrideUserAgent:
			if s, ok := value.(string); ok {
				k.userAgent = s
			}
		}
	}
}

func toBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		return val == "true" || val == "1" || val == "yes", true
	case int:
		return val != 0, true
	}
	return false, false
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toDuration(v any) (time.Duration, bool) {
	switch val := v.(type) {
	case time.Duration:
		return val, true
	case int:
		return time.Duration(val) * time.Second, true
	case int64:
		return time.Duration(val) * time.Second, true
	case float64:
		return time.Duration(val * float64(time.Second)), true
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d, true
		}
	}
	return 0, false
}

func (t *NetHTTP) buildClient(k knobs) (*http.Client, error) {
	tr := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if k.insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if k.proxy != "" {
		proxy, err := neturl.Parse(k.proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		tr.Proxy = http.ProxyURL(proxy)
	}

	return &http.Client{
		Transport: tr,
		Timeout:   k.timeout,
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			if !k.follow {
				return http.ErrUseLastResponse
			}
			if len(via) >= k.maxRedirects {
				return ErrRedirectLimit
			}
			return nil
		},
	}, nil
}

func (t *NetHTTP) do(client *http.Client, req *PreparedRequest, k knobs, authHeader string) (*http.Response, []byte, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequest(req.Method, req.URL, body)
	if err != nil {
		return nil, nil, err
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if k.userAgent != "" {
		httpReq.Header.Set("User-Agent", k.userAgent)
	}
	if req.Auth != nil && authHeader == "" {
		switch strings.ToLower(req.Auth.Scheme) {
		case "", AuthBasic, AuthAny:
			httpReq.SetBasicAuth(req.Auth.Username, req.Auth.Password)
		}
	}
	if authHeader != "" {
		httpReq.Header.Set("Authorization", authHeader)
	}

	id := shortID()
	if req.Verbose {
		t.traceRequest(id, httpReq)
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var respBody []byte
	if !req.DiscardBody {
		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("read response body: %w", err)
		}
	}

	if req.Verbose {
		t.traceResponse(id, resp, len(respBody), time.Since(start))
	}

	return resp, respBody, nil
}

// newRawResponse renders the response headers back into a raw header
// block so the parser sees the same shape regardless of transport.
func newRawResponse(resp *http.Response, body []byte) *RawResponse {
	var b strings.Builder
	b.WriteString(resp.Proto + " " + resp.Status + "\r\n")
	for name, values := range resp.Header {
		for _, value := range values {
			b.WriteString(name + ": " + value + "\r\n")
		}
	}
	return &RawResponse{
		StatusCode:  resp.StatusCode,
		HeaderBlock: b.String(),
		Body:        body,
	}
}

func shortID() string {
	return uuid.NewString()[:8]
}

func (t *NetHTTP) traceRequest(id string, req *http.Request) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(t.trace, "%s %s %s\n", cyan("> "+id), req.Method, req.URL)
	for name, values := range req.Header {
		fmt.Fprintf(t.trace, "> %s: %s\n", name, strings.Join(values, ", "))
	}
}

func (t *NetHTTP) traceResponse(id string, resp *http.Response, bodyLen int, d time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(t.trace, "%s %s (%d bytes in %s)\n", green("< "+id), resp.Status, bodyLen, d.Round(time.Millisecond))
	for name, values := range resp.Header {
		fmt.Fprintf(t.trace, "< %s: %s\n", name, strings.Join(values, ", "))
	}
}
