package client

import (
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// FileSigil marks a string field value as a path to upload: "@/tmp/x.csv".
const FileSigil = "@"

const fallbackMIME = "application/octet-stream"

// File references a local file for a multipart upload. MIME is sniffed
// from the file contents; Filename is the basename sent in the part's
// Content-Disposition.
type File struct {
	Path     string
	MIME     string
	Filename string
}

// NewFile builds a file reference for a multipart field. Returns
// *FileNotFoundError when the path does not exist at construction time.
func NewFile(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &FileNotFoundError{Path: path}
	}

	mime := fallbackMIME
	if detected, err := mimetype.DetectFile(path); err == nil {
		mime = detected.String()
	}

	return &File{
		Path:     path,
		MIME:     mime,
		Filename: filepath.Base(path),
	}, nil
}
