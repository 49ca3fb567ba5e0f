package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	neturl "net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/curlkit/curlkit/packages/cookiejar"
	"github.com/curlkit/curlkit/packages/transport"
)

// Encode resolves the effective options for one call into a
// PreparedRequest: Cookie header from the jar plus per-call cookies,
// content negotiation, body encoding (multipart wins over JSON wins over
// urlencoded), auth and proxy credentials, and the raw transport
// overrides passed through for last application.
func Encode(method, rawURL string, opts *Options, jar *cookiejar.Jar) (*transport.PreparedRequest, error) {
	method = strings.ToUpper(method)

	headers := copyStringMap(opts.Headers)
	if headers == nil {
		headers = make(map[string]string)
	}

	cookie, err := cookieHeader(opts, jar)
	if err != nil {
		return nil, err
	}
	if cookie != "" {
		headers = setHeader(headers, "Cookie", cookie)
	}

	// Content negotiation: json/xml set both Content-Type and Accept
	// unless the caller already supplied them.
	if opts.Type == TypeJSON || opts.Type == TypeXML {
		contentType := "application/" + opts.Type
		if _, ok := headerLookup(headers, "Content-Type"); !ok {
			headers["Content-Type"] = contentType
		}
		if _, ok := headerLookup(headers, "Accept"); !ok {
			headers["Accept"] = contentType
		}
	}

	var body []byte
	if methodTakesBody(method, opts) {
		fields, hasFile, err := resolveFields(opts.Fields)
		if err != nil {
			return nil, err
		}
		switch {
		case hasFile:
			encoded, contentType, err := encodeMultipart(fields)
			if err != nil {
				return nil, err
			}
			body = encoded
			// The boundary-bearing type must win over anything set above.
			headers = setHeader(headers, "Content-Type", contentType)
		case opts.Type == TypeJSON:
			body = encodeJSONFields(fields)
		default:
			body = []byte(encodeFormFields(fields))
			if _, ok := headerLookup(headers, "Content-Type"); !ok {
				headers["Content-Type"] = "application/x-www-form-urlencoded"
			}
		}
	}

	prep := &transport.PreparedRequest{
		Method:          method,
		URL:             rawURL,
		Headers:         headers,
		Body:            body,
		DiscardBody:     method == "HEAD",
		Timeout:         time.Duration(opts.Timeout) * time.Second,
		FollowRedirects: opts.GetFollowRedirects(),
		MaxRedirects:    opts.MaxRedirects,
		Verbose:         opts.GetVerbose(),
		Overrides:       copyAnyMap(opts.Overrides),
	}

	if opts.Auth != nil {
		scheme := opts.Auth.Scheme
		if scheme == "" {
			scheme = transport.AuthBasic
		}
		prep.Auth = &transport.Auth{
			Scheme:   scheme,
			Username: opts.Auth.Username,
			Password: opts.Auth.Password,
		}
	}
	if opts.Proxy != nil {
		prep.Proxy = &transport.Proxy{
			URL:      opts.Proxy.URL,
			Username: opts.Proxy.Username,
			Password: opts.Proxy.Password,
		}
	}

	return prep, nil
}

// GET and HEAD never carry a body; DELETE only when fields were given.
func methodTakesBody(method string, opts *Options) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return len(opts.Fields) > 0
	case "DELETE":
		return len(opts.Fields) > 0
	}
	return false
}

// cookieHeader renders the Cookie header for this call: jar cookies
// first (sorted for stability), then per-call cookies appended or
// overriding by name. Per-call cookies are recorded into the jar so
// later requests of the same instance remember them.
func cookieHeader(opts *Options, jar *cookiejar.Jar) (string, error) {
	type pair struct {
		name  string
		value string
	}
	var pairs []pair
	index := make(map[string]int)

	if jar != nil && jar.Active() {
		stored := jar.All()
		names := make([]string, 0, len(stored))
		for name := range stored {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			index[name] = len(pairs)
			pairs = append(pairs, pair{name, stored[name].Value})
		}
	}

	if len(opts.Cookies) > 0 {
		names := make([]string, 0, len(opts.Cookies))
		for name := range opts.Cookies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value := opts.Cookies[name]
			if i, ok := index[name]; ok {
				pairs[i].value = value
			} else {
				index[name] = len(pairs)
				pairs = append(pairs, pair{name, value})
			}
			if jar != nil {
				if err := jar.Set(cookiejar.Cookie{Name: name, Value: value}); err != nil {
					return "", err
				}
			}
		}
	}

	if len(pairs) == 0 {
		return "", nil
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.name + "=" + neturl.QueryEscape(p.value)
	}
	return strings.Join(parts, "; "), nil
}

// resolveFields expands "@path" sigil values into File references and
// reports whether any field is file-typed.
func resolveFields(in []Field) ([]Field, bool, error) {
	out := make([]Field, len(in))
	hasFile := false
	for i, f := range in {
		if f.File == nil && strings.HasPrefix(f.Value, FileSigil) {
			file, err := NewFile(strings.TrimPrefix(f.Value, FileSigil))
			if err != nil {
				return nil, false, err
			}
			f.File = file
		}
		if f.File != nil {
			hasFile = true
		}
		out[i] = f
	}
	return out, hasFile, nil
}

// encodeJSONFields serializes the field map as a JSON object, keeping
// insertion order.
func encodeJSONFields(fields []Field) []byte {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		name, _ := json.Marshal(f.Name)
		value, _ := json.Marshal(f.Value)
		b.Write(name)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes()
}

// encodeFormFields serializes fields as application/x-www-form-urlencoded
// in insertion order.
func encodeFormFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = neturl.QueryEscape(f.Name) + "=" + neturl.QueryEscape(f.Value)
	}
	return strings.Join(parts, "&")
}

// encodeMultipart builds a multipart/form-data body. File parts carry
// the sniffed MIME type and the file's basename.
func encodeMultipart(fields []Field) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range fields {
		if f.File == nil {
			if err := writer.WriteField(f.Name, f.Value); err != nil {
				return nil, "", err
			}
			continue
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Name, f.File.Filename))
		header.Set("Content-Type", f.File.MIME)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}

		src, err := os.Open(f.File.Path)
		if err != nil {
			return nil, "", &FileNotFoundError{Path: f.File.Path}
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
