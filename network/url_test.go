package network

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://example.com/a/b.html", "c.js", "https://example.com/a/c.js"},
		{"https://example.com/a/b.html", "/c.js", "https://example.com/c.js"},
		{"https://example.com/a/b.html", "../c.js", "https://example.com/c.js"},
		{"https://example.com/a/", "https://other.org/x.js", "https://other.org/x.js"},
		{"file:///srv/site/index.html", "js/app.js", "file:///srv/site/js/app.js"},
		{"https://example.com/", "data:,hi", "data:,hi"},
		{"https://example.com/a", "", "https://example.com/a"},
	}
	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.ref)
		if err != nil {
			t.Errorf("ResolveURL(%q, %q) error = %v", tt.base, tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestSourceURL(t *testing.T) {
	for _, in := range []string{"https://example.com/x", "file:///tmp/x.html", "data:,x"} {
		got, err := SourceURL(in)
		if err != nil || got != in {
			t.Errorf("SourceURL(%q) = %q, %v; want unchanged", in, got, err)
		}
	}

	got, err := SourceURL("page.html")
	if err != nil {
		t.Fatalf("SourceURL() error = %v", err)
	}
	abs, _ := filepath.Abs("page.html")
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, filepath.ToSlash(abs)) {
		t.Errorf("SourceURL(page.html) = %q, want a file URL for %s", got, abs)
	}
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		in        string
		mediaType string
		charset   string
		data      string
	}{
		{"data:,Hello%2C%20World", "text/plain", "us-ascii", "Hello, World"},
		{"data:text/html,<p>a+b</p>", "text/html", "us-ascii", "<p>a+b</p>"},
		{"data:text/html;charset=UTF-8;base64,PHA+aGk8L3A+", "text/html", "utf-8", "<p>hi</p>"},
		{"DATA:;base64,aGk=", "text/plain", "us-ascii", "hi"},
	}
	for _, tt := range tests {
		d, err := ParseDataURL(tt.in)
		if err != nil {
			t.Errorf("ParseDataURL(%q) error = %v", tt.in, err)
			continue
		}
		if d.MediaType != tt.mediaType || d.Charset != tt.charset || string(d.Data) != tt.data {
			t.Errorf("ParseDataURL(%q) = {%q %q %q}, want {%q %q %q}",
				tt.in, d.MediaType, d.Charset, d.Data, tt.mediaType, tt.charset, tt.data)
		}
	}
}

func TestParseDataURLErrors(t *testing.T) {
	if _, err := ParseDataURL("https://x"); !errors.Is(err, ErrNotDataURL) {
		t.Errorf("Expected ErrNotDataURL, got %v", err)
	}
	for _, in := range []string{"data:text/plain", "data:;base64,***"} {
		if _, err := ParseDataURL(in); err == nil {
			t.Errorf("ParseDataURL(%q) expected an error", in)
		}
	}
}

func TestGuessContentType(t *testing.T) {
	tests := map[string]string{
		"index.html":                  "text/html",
		"/srv/app.JS":                 "text/javascript",
		"https://x.org/a/b.htm?q=1#f": "text/html",
		"file:///tmp/data.json":       "application/json",
		"noext":                       "application/octet-stream",
	}
	for in, want := range tests {
		if got := GuessContentType(in); got != want {
			t.Errorf("GuessContentType(%q) = %q, want %q", in, got, want)
		}
	}
}
