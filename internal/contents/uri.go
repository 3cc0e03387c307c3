package contents

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathFromURI converts a file:// URI to a local path. Other schemes report
// false.
func PathFromURI(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	p := u.Path
	// file:///C:/x on Windows parses with a leading slash before the drive.
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), true
}

// URIFromPath converts an absolute local path to a file:// URI.
func URIFromPath(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
