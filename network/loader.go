package network

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Resource is loaded content and where it came from.
type Resource struct {
	URL         string
	Content     []byte
	ContentType string
	Charset     string
	StatusCode  int
	Cached      bool
}

// String returns the content as a string.
func (r *Resource) String() string {
	return string(r.Content)
}

// StatusError is returned for HTTP responses outside 2xx.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCache replaces the loader's cache.
func WithCache(cache *Cache) LoaderOption {
	return func(l *Loader) {
		if cache != nil {
			l.cache = cache
		}
	}
}

// WithLoaderLogger sets the logger loads are traced to.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader loads resources by URL: file:, data: and http(s).
type Loader struct {
	client *Client
	cache  *Cache
	logger *zap.Logger
}

// NewLoader creates a loader fetching http(s) URLs through client.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{
		client: client,
		cache:  NewCache(0),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("network")
	return l
}

// Load loads urlStr. Only http(s) responses are cached.
func (l *Loader) Load(ctx context.Context, urlStr string) (*Resource, error) {
	if IsDataURL(urlStr) {
		d, err := ParseDataURL(urlStr)
		if err != nil {
			return nil, err
		}
		return &Resource{
			URL:         urlStr,
			Content:     d.Data,
			ContentType: d.MediaType,
			Charset:     d.Charset,
			StatusCode:  200,
		}, nil
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", urlStr, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return l.loadFile(urlStr, u)
	case "http", "https":
		return l.loadHTTP(ctx, urlStr)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}

func (l *Loader) loadFile(urlStr string, u *url.URL) (*Resource, error) {
	p := filepath.FromSlash(u.Path)
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	l.logger.Debug("read file", zap.String("path", p), zap.Int("bytes", len(content)))
	return &Resource{
		URL:         urlStr,
		Content:     content,
		ContentType: GuessContentType(p),
		StatusCode:  200,
	}, nil
}

func (l *Loader) loadHTTP(ctx context.Context, urlStr string) (*Resource, error) {
	if entry, ok := l.cache.Get(urlStr); ok {
		l.logger.Debug("cache hit", zap.String("url", urlStr))
		return responseResource(urlStr, entry.Response, true), nil
	}

	if l.client == nil {
		return nil, fmt.Errorf("no HTTP client to fetch %s", urlStr)
	}
	resp, err := l.client.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: urlStr, Status: resp.Status, Code: resp.StatusCode}
	}
	l.cache.Set(urlStr, resp)

	res := responseResource(urlStr, resp, false)
	if resp.URL != nil {
		res.URL = resp.URL.String()
	}
	return res, nil
}

func responseResource(urlStr string, resp *Response, cached bool) *Resource {
	mediaType, charset := ParseContentType(resp.ContentType)
	return &Resource{
		URL:         urlStr,
		Content:     resp.Body,
		ContentType: mediaType,
		Charset:     charset,
		StatusCode:  resp.StatusCode,
		Cached:      cached,
	}
}
