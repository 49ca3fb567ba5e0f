package runfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/curlkit/curlkit/packages/client"
)

// Runfile is one YAML collection of requests.
type Runfile struct {
	Name     string    `yaml:"name,omitempty"`
	Base     string    `yaml:"base,omitempty"`
	Defaults *Defaults `yaml:"defaults,omitempty"`
	Requests []Request `yaml:"requests"`
}

// Defaults apply to every request in the file unless the request sets
// its own value.
type Defaults struct {
	Headers         map[string]string `yaml:"headers,omitempty"`
	Timeout         int               `yaml:"timeout,omitempty"` // seconds
	Type            string            `yaml:"type,omitempty"`
	FailOnHTTPError *bool             `yaml:"failOnHttpError,omitempty"`
}

// Request is one entry in the collection.
type Request struct {
	Name    string            `yaml:"name,omitempty"`
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Type    string            `yaml:"type,omitempty"`
	Params  []string          `yaml:"params,omitempty"` // ordered name=value
	Fields  []string          `yaml:"fields,omitempty"` // ordered name=value, @path uploads
	Headers map[string]string `yaml:"headers,omitempty"`
	Cookies map[string]string `yaml:"cookies,omitempty"`
	Timeout int               `yaml:"timeout,omitempty"` // seconds

	// ExpectStatus, when non-zero, is checked by the runner after the
	// response arrives.
	ExpectStatus int `yaml:"expectStatus,omitempty"`
}

// Parse decodes a runfile from YAML bytes and validates it.
func Parse(data []byte) (*Runfile, error) {
	var rf Runfile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse runfile: %w", err)
	}
	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// Load reads and parses a runfile from disk.
func Load(path string) (*Runfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks structural requirements: at least one request, and a
// method and path on each.
func (rf *Runfile) Validate() error {
	if len(rf.Requests) == 0 {
		return fmt.Errorf("runfile has no requests")
	}
	for i, req := range rf.Requests {
		label := req.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if req.Method == "" {
			return fmt.Errorf("request %s: missing method", label)
		}
		if req.Path == "" {
			return fmt.Errorf("request %s: missing path", label)
		}
	}
	return nil
}

// Label returns the request's display name, falling back to
// "METHOD path".
func (r *Request) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return strings.ToUpper(r.Method) + " " + r.Path
}

// Options builds the per-call options for one request, folding in the
// file-level defaults.
func (rf *Runfile) Options(r *Request) (*client.Options, error) {
	opts := &client.Options{
		Base:    rf.Base,
		Headers: map[string]string{},
		Cookies: r.Cookies,
	}

	if rf.Defaults != nil {
		for k, v := range rf.Defaults.Headers {
			opts.Headers[k] = v
		}
		opts.Timeout = rf.Defaults.Timeout
		opts.Type = rf.Defaults.Type
		opts.FailOnHTTPError = rf.Defaults.FailOnHTTPError
	}
	for k, v := range r.Headers {
		opts.Headers[k] = v
	}
	if r.Timeout > 0 {
		opts.Timeout = r.Timeout
	}
	if r.Type != "" {
		opts.Type = r.Type
	}

	for _, p := range r.Params {
		name, value, err := splitPair(p)
		if err != nil {
			return nil, fmt.Errorf("request %s: param %q: %w", r.Label(), p, err)
		}
		opts.Query = append(opts.Query, client.Param{Key: name, Value: value})
	}

	for _, f := range r.Fields {
		name, value, err := splitPair(f)
		if err != nil {
			return nil, fmt.Errorf("request %s: field %q: %w", r.Label(), f, err)
		}
		opts.Fields = append(opts.Fields, client.Field{Name: name, Value: value})
	}

	return opts, nil
}

// splitPair breaks "name=value" on the first equals sign. The value may
// itself contain equals signs.
func splitPair(s string) (string, string, error) {
	name, value, found := strings.Cut(s, "=")
	if !found || name == "" {
		return "", "", fmt.Errorf("expected name=value")
	}
	return name, value, nil
}
