// Package network fetches the documents and scripts seht works on: local
// files, data: URLs and http(s) resources, with an in-memory response cache.
package network

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// DefaultUserAgent is sent when no other user agent is configured.
const DefaultUserAgent = "seht/1.0"

// Client is an HTTP client with a cookie jar. It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	timeout      time.Duration
	maxRedirects int
	userAgent    string
	logger       *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRedirects sets how many redirects are followed. Zero disables
// following; the redirect response itself is returned.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = n
	}
}

// WithUserAgent sets the User-Agent header. Empty keeps the default.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithClientLogger sets the logger requests are traced to.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client. Cookies are scoped with the public suffix list.
func NewClient(opts ...ClientOption) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		timeout:      30 * time.Second,
		maxRedirects: 10,
		userAgent:    DefaultUserAgent,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("network")

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}

	maxRedirects := c.maxRedirects
	c.httpClient = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   c.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if maxRedirects <= 0 {
				return http.ErrUseLastResponse
			}
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return c, nil
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	Status      string
	Headers     http.Header
	Body        []byte
	ContentType string
	// URL is the final URL after redirects.
	URL *url.URL
}

// Get fetches urlStr.
func (c *Client) Get(ctx context.Context, urlStr string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("fetched",
		zap.String("url", urlStr),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	return &Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Headers:     resp.Header,
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         resp.Request.URL,
	}, nil
}

// Cookies returns the cookies the jar would send to u.
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	return c.httpClient.Jar.Cookies(u)
}

// ParseContentType splits a Content-Type header into its lower-cased media
// type and charset. An empty or malformed header yields
// application/octet-stream.
func ParseContentType(contentType string) (mediaType, charset string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "application/octet-stream", ""
	}
	return mediaType, strings.ToLower(params["charset"])
}

// IsHTMLContentType reports whether contentType names an HTML document.
func IsHTMLContentType(contentType string) bool {
	mediaType, _ := ParseContentType(contentType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// IsJavaScriptType reports whether a script type attribute or media type
// names classic JavaScript. An empty type means JavaScript.
func IsJavaScriptType(t string) bool {
	if strings.TrimSpace(t) == "" {
		return true
	}
	mediaType, _ := ParseContentType(t)
	switch mediaType {
	case "text/javascript", "application/javascript", "application/x-javascript",
		"application/ecmascript", "text/ecmascript":
		return true
	}
	return false
}
