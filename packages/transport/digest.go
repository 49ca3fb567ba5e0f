package transport

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
)

// digestAuth holds the parameters of one digest challenge-response.
type digestAuth struct {
	username string
	password string
	realm    string
	nonce    string
	uri      string
	qop      string
	nc       string
	cnonce   string
	opaque   string
	method   string
}

// sendWithDigest performs the challenge-response dance: one unauthorized
// request to collect the challenge, then a retry carrying the computed
// Authorization header. Non-401 first responses pass through untouched.
func (t *NetHTTP) sendWithDigest(client *http.Client, req *PreparedRequest, k knobs) (*RawResponse, error) {
	resp, body, err := t.do(client, req, k, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return newRawResponse(resp, body), nil
	}

	challenge := resp.Header.Get("WWW-Authenticate")
	if challenge == "" {
		return newRawResponse(resp, body), nil
	}
	params := parseWWWAuthenticate(challenge)

	auth := &digestAuth{
		username: req.Auth.Username,
		password: req.Auth.Password,
		realm:    params["realm"],
		nonce:    params["nonce"],
		uri:      requestURI(req.URL),
		qop:      params["qop"],
		opaque:   params["opaque"],
		method:   req.Method,
	}

	if auth.qop != "" {
		auth.nc = "00000001"
		cnonce, err := generateCnonce()
		if err != nil {
			return nil, err
		}
		auth.cnonce = cnonce
		if strings.Contains(auth.qop, "auth") {
			auth.qop = "auth"
		}
	}

	resp, body, err = t.do(client, req, k, auth.authorizationHeader())
	if err != nil {
		return nil, err
	}
	return newRawResponse(resp, body), nil
}

func requestURI(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.RequestURI()
}

// parseWWWAuthenticate parses the challenge from a 401 response into
// key/value pairs.
func parseWWWAuthenticate(header string) map[string]string {
	result := make(map[string]string)
	header = strings.TrimPrefix(header, "Digest ")

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if key, value, found := strings.Cut(part, "="); found {
			result[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
		}
	}

	return result
}

// response computes the digest response hash per RFC 2617.
func (d *digestAuth) response() string {
	ha1 := md5Hash(fmt.Sprintf("%s:%s:%s", d.username, d.realm, d.password))
	ha2 := md5Hash(fmt.Sprintf("%s:%s", d.method, d.uri))

	if d.qop == "auth" || d.qop == "auth-int" {
		return md5Hash(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, d.nonce, d.nc, d.cnonce, d.qop, ha2))
	}
	return md5Hash(fmt.Sprintf("%s:%s:%s", ha1, d.nonce, ha2))
}

func (d *digestAuth) authorizationHeader() string {
	parts := []string{
		fmt.Sprintf(`username="%s"`, d.username),
		fmt.Sprintf(`realm="%s"`, d.realm),
		fmt.Sprintf(`nonce="%s"`, d.nonce),
		fmt.Sprintf(`uri="%s"`, d.uri),
		fmt.Sprintf(`response="%s"`, d.response()),
	}

	if d.qop != "" {
		parts = append(parts, fmt.Sprintf(`qop=%s`, d.qop))
		parts = append(parts, fmt.Sprintf(`nc=%s`, d.nc))
		parts = append(parts, fmt.Sprintf(`cnonce="%s"`, d.cnonce))
	}

	if d.opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, d.opaque))
	}

	return "Digest " + strings.Join(parts, ", ")
}

func generateCnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func md5Hash(s string) string {
	h := md5.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
