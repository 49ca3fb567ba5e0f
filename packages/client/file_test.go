package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	f, err := NewFile(path)

	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, "report.csv", f.Filename)
	assert.NotEmpty(t, f.MIME)
}

func TestNewFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")

	_, err := NewFile(path)

	require.Error(t, err)
	var notFound *FileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, path, notFound.Path)
	assert.Contains(t, err.Error(), "file not found")
}
