package cookiejar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetCookie_Basic(t *testing.T) {
	c := ParseSetCookie("sid=abc123; Path=/; HttpOnly")

	assert.Equal(t, "sid", c.Name)
	assert.Equal(t, "abc123", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HasFlag("HttpOnly"))
	assert.False(t, c.HasFlag("Secure"))
}

func TestParseSetCookie_PercentDecodedValue(t *testing.T) {
	c := ParseSetCookie("pref=hello%20world%2Fetc")

	assert.Equal(t, "hello world/etc", c.Value)
}

func TestParseSetCookie_ValueWithEquals(t *testing.T) {
	// Only the first "=" splits name from value.
	c := ParseSetCookie("token=a=b=c")

	assert.Equal(t, "token", c.Name)
	assert.Equal(t, "a=b=c", c.Value)
}

func TestParseSetCookie_Expires(t *testing.T) {
	c := ParseSetCookie("sid=x; Expires=Wed, 21 Oct 2026 07:28:00 GMT")

	require.NotNil(t, c.Expires)
	assert.Equal(t, time.Date(2026, 10, 21, 7, 28, 0, 0, time.UTC), c.Expires.UTC())
}

func TestParseSetCookie_LegacyExpiresFormat(t *testing.T) {
	c := ParseSetCookie("sid=x; expires=Wed, 21-Oct-2026 07:28:00 GMT")

	require.NotNil(t, c.Expires)
	assert.Equal(t, 2026, c.Expires.Year())
}

func TestParseSetCookie_UnparseableExpiresKeptAsAttribute(t *testing.T) {
	c := ParseSetCookie("sid=x; Expires=whenever")

	assert.Nil(t, c.Expires)
	assert.Equal(t, "whenever", c.Attributes["expires"])
}

func TestParseSetCookie_ExtraAttributesLowerCased(t *testing.T) {
	c := ParseSetCookie("sid=x; Domain=example.com; Max-Age=3600; SameSite=Lax; Secure")

	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "3600", c.Attributes["max-age"])
	assert.Equal(t, "Lax", c.Attributes["samesite"])
	assert.True(t, c.HasFlag("Secure"))
}

func TestParseSetCookie_NoValue(t *testing.T) {
	c := ParseSetCookie("flagonly")

	assert.Equal(t, "flagonly", c.Name)
	assert.Equal(t, "", c.Value)
}

func TestExtractSetCookies(t *testing.T) {
	lines := []string{
		"Content-Type: text/html",
		"Set-Cookie: sid=abc123; Path=/; HttpOnly",
		"Content-Length: 42",
		"Set-Cookie: theme=dark",
	}

	cookies, rest := ExtractSetCookies(lines)

	require.Len(t, cookies, 2)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "theme", cookies[1].Name)
	assert.Equal(t, []string{"Content-Type: text/html", "Content-Length: 42"}, rest)
}

func TestExtractSetCookies_CaseSensitivePrefix(t *testing.T) {
	lines := []string{"set-cookie: sid=abc"}

	cookies, rest := ExtractSetCookies(lines)

	assert.Empty(t, cookies)
	assert.Equal(t, lines, rest)
}
