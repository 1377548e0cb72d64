package prt

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const fileScheme = "file:"

// FileURI converts a local path into a percent encoded "file:" URI, e.g.
// "/tmp/foo bar.rpk" becomes "file:/tmp/foo%20bar.rpk".
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("file uri for %s: %w", path, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Path: p}
	return fileScheme + u.EscapedPath(), nil
}

// PathFromFileURI is the inverse of FileURI.
func PathFromFileURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, fileScheme)
	if !ok {
		return "", Errorf("path from uri "+uri, StatusInvalidURI)
	}
	p, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("path from uri %s: %w", uri, err)
	}
	return filepath.FromSlash(p), nil
}
