package cookiejar

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
)

// Jar modes. Any other value is treated as a path to a JSON file that
// persists the jar across processes.
const (
	ModeOff    = "off"
	ModeMemory = "memory"
)

// Jar is a name-keyed cookie store owned by a client instance. It is not
// safe for concurrent use; callers needing that run one client (and jar)
// per goroutine.
type Jar struct {
	mode    string
	path    string
	cookies map[string]Cookie
}

// New creates a jar for the given mode. An empty mode means "memory".
// File-backed jars load their contents immediately; a missing file is
// treated as an empty jar.
func New(mode string) (*Jar, error) {
	if mode == "" {
		mode = ModeMemory
	}
	j := &Jar{mode: mode, cookies: make(map[string]Cookie)}
	if mode != ModeOff && mode != ModeMemory {
		j.path = mode
		if err := j.load(); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Active reports whether the jar stores and supplies cookies.
func (j *Jar) Active() bool {
	return j.mode != ModeOff
}

// Set records a cookie, overwriting any entry with the same name.
// File-backed jars are saved immediately. No-op when the jar is off.
func (j *Jar) Set(c Cookie) error {
	if !j.Active() {
		return nil
	}
	j.cookies[c.Name] = c
	return j.save()
}

// Get returns the cookie stored under name.
func (j *Jar) Get(name string) (Cookie, bool) {
	c, ok := j.cookies[name]
	return c, ok
}

// All returns a copy of the jar contents.
func (j *Jar) All() map[string]Cookie {
	out := make(map[string]Cookie, len(j.cookies))
	for name, c := range j.cookies {
		out[name] = c
	}
	return out
}

// Len returns the number of stored cookies.
func (j *Jar) Len() int {
	return len(j.cookies)
}

// Clear removes every cookie. Expired cookies are never removed
// automatically; this is the caller's lever.
func (j *Jar) Clear() error {
	j.cookies = make(map[string]Cookie)
	return j.save()
}

// Absorb stores every cookie from a response, last one winning on
// duplicate names, and persists the jar when file-backed.
func (j *Jar) Absorb(cookies []Cookie) error {
	if !j.Active() || len(cookies) == 0 {
		return nil
	}
	for _, c := range cookies {
		j.cookies[c.Name] = c
	}
	return j.save()
}

// HeaderValue renders the jar as a Cookie header value: name=value pairs
// with percent-encoded values, joined by "; ", in sorted name order so
// the output is stable.
func (j *Jar) HeaderValue() string {
	if !j.Active() || len(j.cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(j.cookies))
	for name := range j.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+url.QueryEscape(j.cookies[name].Value))
	}
	return strings.Join(pairs, "; ")
}

func (j *Jar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cookie jar %s: %w", j.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &j.cookies); err != nil {
		return fmt.Errorf("parse cookie jar %s: %w", j.path, err)
	}
	return nil
}

func (j *Jar) save() error {
	if j.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(j.cookies, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return fmt.Errorf("write cookie jar %s: %w", j.path, err)
	}
	return nil
}
