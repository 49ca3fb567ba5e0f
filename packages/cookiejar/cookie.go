package cookiejar

import (
	"net/url"
	"strings"
	"time"
)

// setCookiePrefix is the canonical header prefix emitted by the transport.
// The match is case-sensitive.
const setCookiePrefix = "Set-Cookie: "

// Servers still emit a few legacy date formats besides RFC 1123.
var expiresLayouts = []string{
	time.RFC1123,
	"Mon, 02-Jan-2006 15:04:05 MST",
	"Mon, 02-Jan-06 15:04:05 MST",
	time.ANSIC,
}

// Cookie is a single cookie together with the attributes reported by the
// server. Attributes holds any key=value attribute beyond the well-known
// ones, keyed by lower-cased name; Flags holds bare attributes such as
// Secure or HttpOnly in the order they appeared.
type Cookie struct {
	Name       string            `json:"name"`
	Value      string            `json:"value"`
	Expires    *time.Time        `json:"expires,omitempty"`
	Path       string            `json:"path,omitempty"`
	Domain     string            `json:"domain,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Flags      []string          `json:"flags,omitempty"`
}

// HasFlag reports whether a bare attribute such as HttpOnly was present.
func (c Cookie) HasFlag(name string) bool {
	for _, f := range c.Flags {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// ParseSetCookie parses the value portion of a Set-Cookie header. The
// first "=" splits name from value, the value is percent-decoded, and
// each following "; "-separated token is either a key=value attribute
// (key lower-cased, "expires" parsed into an absolute timestamp) or a
// bare flag.
func ParseSetCookie(raw string) Cookie {
	c := Cookie{}

	parts := strings.Split(raw, "; ")
	name, value, found := strings.Cut(parts[0], "=")
	c.Name = name
	if found {
		if decoded, err := url.QueryUnescape(value); err == nil {
			c.Value = decoded
		} else {
			c.Value = value
		}
	}

	for _, attr := range parts[1:] {
		if attr == "" {
			continue
		}
		key, val, hasValue := strings.Cut(attr, "=")
		if !hasValue {
			c.Flags = append(c.Flags, key)
			continue
		}
		switch strings.ToLower(key) {
		case "expires":
			if t, ok := parseExpires(val); ok {
				expires := t
				c.Expires = &expires
				continue
			}
			c.setAttribute("expires", val)
		case "path":
			c.Path = val
		case "domain":
			c.Domain = val
		default:
			c.setAttribute(strings.ToLower(key), val)
		}
	}

	return c
}

func (c *Cookie) setAttribute(key, value string) {
	if c.Attributes == nil {
		c.Attributes = make(map[string]string)
	}
	c.Attributes[key] = value
}

func parseExpires(value string) (time.Time, bool) {
	for _, layout := range expiresLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractSetCookies removes Set-Cookie lines from a raw header line set
// and parses each one. The remaining lines are returned in order for
// generic header parsing.
func ExtractSetCookies(lines []string) ([]Cookie, []string) {
	var cookies []Cookie
	rest := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, setCookiePrefix) {
			cookies = append(cookies, ParseSetCookie(strings.TrimPrefix(line, setCookiePrefix)))
			continue
		}
		rest = append(rest, line)
	}
	return cookies, rest
}
