package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURL_EmptyQueryIsExactConcatenation(t *testing.T) {
	opts := &Options{Base: "http://example.com/api"}

	assert.Equal(t, "http://example.com/api/todos", BuildURL("/todos", opts))
}

func TestBuildURL_NoBase(t *testing.T) {
	assert.Equal(t, "http://example.com/x", BuildURL("http://example.com/x", &Options{}))
}

func TestBuildURL_NoSlashNormalization(t *testing.T) {
	opts := &Options{Base: "http://example.com/api/"}

	assert.Equal(t, "http://example.com/api//todos", BuildURL("/todos", opts))
}

func TestBuildURL_QueryEncoding(t *testing.T) {
	opts := &Options{Query: []Param{
		{"q", "two words"},
		{"filter", "a&b=c"},
	}}

	assert.Equal(t, "/search?q=two+words&filter=a%26b%3Dc", BuildURL("/search", opts))
}

func TestBuildURL_QueryInsertionOrder(t *testing.T) {
	opts := &Options{Query: []Param{
		{"z", "1"},
		{"a", "2"},
		{"m", "3"},
	}}

	assert.Equal(t, "/x?z=1&a=2&m=3", BuildURL("/x", opts))
}
