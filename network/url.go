package network

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotDataURL is returned by ParseDataURL for anything not starting with
// "data:".
var ErrNotDataURL = errors.New("not a data URL")

// ResolveURL resolves ref against base. Absolute references, including
// data: URLs, are returned unchanged.
func ResolveURL(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	if IsDataURL(ref) {
		return ref, nil
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference URL: %w", err)
	}
	if refURL.IsAbs() {
		return refURL.String(), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// SourceURL turns a command-line source into a URL. Strings with a scheme
// are kept; anything else is a local path made absolute and given the
// file scheme.
func SourceURL(source string) (string, error) {
	if u, err := url.Parse(source); err == nil && len(u.Scheme) > 1 {
		return source, nil
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", source, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// IsDataURL reports whether s is a data: URL.
func IsDataURL(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// DataURL is a decoded data: URL.
type DataURL struct {
	MediaType string
	Charset   string
	Data      []byte
}

// ParseDataURL decodes data:[<mediatype>][;charset=x][;base64],<data>. The
// media type defaults to text/plain.
func ParseDataURL(s string) (*DataURL, error) {
	if !IsDataURL(s) {
		return nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(s[5:], ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL: missing comma")
	}

	d := &DataURL{MediaType: "text/plain", Charset: "us-ascii"}
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		part = strings.TrimSpace(part)
		switch {
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		case i == 0 && part != "" && !strings.Contains(part, "="):
			d.MediaType = strings.ToLower(part)
		default:
			if name, value, ok := strings.Cut(part, "="); ok && strings.EqualFold(name, "charset") {
				d.Charset = strings.ToLower(value)
			}
		}
	}

	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %w", err)
		}
		d.Data = decoded
		return d, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	d.Data = []byte(decoded)
	return d, nil
}

// GuessContentType maps a file extension to the media types this package
// cares about.
func GuessContentType(name string) string {
	if u, err := url.Parse(name); err == nil && u.Path != "" {
		name = u.Path
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return "text/html"
	case ".xhtml":
		return "application/xhtml+xml"
	case ".js", ".mjs":
		return "text/javascript"
	case ".json":
		return "application/json"
	case ".css":
		return "text/css"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
