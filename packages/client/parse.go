package client

import (
	"strings"

	"github.com/curlkit/curlkit/packages/cookiejar"
	"github.com/curlkit/curlkit/packages/transport"
)

// ParseResponse normalizes a raw transport response. Set-Cookie lines
// are extracted first (and absorbed into the jar when it is active), so
// they never appear in the returned header map. Each remaining header
// line is split on the first ":" with the value trimmed; a line without
// ":" is kept with an empty value.
func ParseResponse(raw *transport.RawResponse, jar *cookiejar.Jar) (*Response, error) {
	lines := headerLines(raw.HeaderBlock)

	cookies, rest := cookiejar.ExtractSetCookies(lines)
	if jar != nil {
		if err := jar.Absorb(cookies); err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(rest))
	for _, line := range rest {
		name, value, found := strings.Cut(line, ":")
		if !found {
			headers[line] = ""
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}

	// Last cookie wins on duplicate names within one parse pass.
	cookieMap := make(map[string]cookiejar.Cookie, len(cookies))
	for _, c := range cookies {
		cookieMap[c.Name] = c
	}

	return &Response{
		StatusCode: raw.StatusCode,
		Headers:    headers,
		Cookies:    cookieMap,
		Body:       raw.Body,
	}, nil
}

// headerLines splits the raw header block into individual header lines,
// dropping the status line and blanks.
func headerLines(block string) []string {
	block = strings.ReplaceAll(block, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "HTTP/") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
