package cookiejar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJar_MemoryMode(t *testing.T) {
	jar, err := New(ModeMemory)
	require.NoError(t, err)
	require.True(t, jar.Active())

	require.NoError(t, jar.Set(Cookie{Name: "sid", Value: "abc123"}))

	c, ok := jar.Get("sid")
	require.True(t, ok)
	assert.Equal(t, "abc123", c.Value)
	assert.Equal(t, 1, jar.Len())
}

func TestJar_DefaultsToMemory(t *testing.T) {
	jar, err := New("")
	require.NoError(t, err)
	assert.True(t, jar.Active())
}

func TestJar_OffModeIsInert(t *testing.T) {
	jar, err := New(ModeOff)
	require.NoError(t, err)
	assert.False(t, jar.Active())

	require.NoError(t, jar.Set(Cookie{Name: "sid", Value: "abc"}))
	assert.Equal(t, 0, jar.Len())
	assert.Equal(t, "", jar.HeaderValue())
}

func TestJar_AbsorbOverwritesByName(t *testing.T) {
	jar, err := New(ModeMemory)
	require.NoError(t, err)

	require.NoError(t, jar.Absorb([]Cookie{{Name: "sid", Value: "old"}}))
	require.NoError(t, jar.Absorb([]Cookie{{Name: "sid", Value: "new"}, {Name: "theme", Value: "dark"}}))

	c, _ := jar.Get("sid")
	assert.Equal(t, "new", c.Value)
	assert.Equal(t, 2, jar.Len())
}

func TestJar_NoAutomaticExpiry(t *testing.T) {
	jar, err := New(ModeMemory)
	require.NoError(t, err)

	expired := ParseSetCookie("old=v; Expires=Wed, 21 Oct 2015 07:28:00 GMT")
	require.NoError(t, jar.Absorb([]Cookie{expired}))

	_, ok := jar.Get("old")
	assert.True(t, ok, "expired cookies are retained until cleared")

	require.NoError(t, jar.Clear())
	assert.Equal(t, 0, jar.Len())
}

func TestJar_HeaderValue(t *testing.T) {
	jar, err := New(ModeMemory)
	require.NoError(t, err)

	require.NoError(t, jar.Set(Cookie{Name: "b", Value: "two words"}))
	require.NoError(t, jar.Set(Cookie{Name: "a", Value: "1"}))

	assert.Equal(t, "a=1; b=two+words", jar.HeaderValue())
}

func TestJar_All_ReturnsCopy(t *testing.T) {
	jar, err := New(ModeMemory)
	require.NoError(t, err)
	require.NoError(t, jar.Set(Cookie{Name: "sid", Value: "abc"}))

	all := jar.All()
	all["sid"] = Cookie{Name: "sid", Value: "mutated"}

	c, _ := jar.Get("sid")
	assert.Equal(t, "abc", c.Value)
}

func TestJar_FilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	jar, err := New(path)
	require.NoError(t, err)
	require.NoError(t, jar.Set(Cookie{Name: "sid", Value: "abc123", Path: "/"}))

	// A fresh jar backed by the same file sees the cookie.
	reloaded, err := New(path)
	require.NoError(t, err)
	c, ok := reloaded.Get("sid")
	require.True(t, ok)
	assert.Equal(t, "abc123", c.Value)
	assert.Equal(t, "/", c.Path)
}

func TestJar_FileMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	jar, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 0, jar.Len())
}

func TestJar_FileCorruptFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}
