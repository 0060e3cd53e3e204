package webfetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/intake/internal/utils"
)

const (
	// DefaultTimeout bounds the whole fetch.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "intake-webfetch/1.0"
	// MaxBodySize is the largest accepted page (10MB).
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout is the maximum time to wait for a TCP connection.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time to wait for the TLS handshake.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is the maximum time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second
	// maxRedirects is the number of redirects followed before giving up.
	maxRedirects = 10
)

// Output is the fetched page.
type Output struct {
	// URL is the final URL after redirects.
	URL string
	// Markdown is the page converted from HTML.
	Markdown string
}

// Fetcher downloads pages and converts them to markdown.
type Fetcher struct {
	timeout   time.Duration
	userAgent string
	client    *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the default client. Its redirect policy is kept.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// New returns a Fetcher with connection-level timeouts on every phase of the
// request.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   TLSHandshakeTimeout,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (>%d)", maxRedirects)
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NormalizeURL trims rawURL and adds https:// when no scheme is present.
// Schemes other than http and https are rejected.
func NormalizeURL(rawURL string) (string, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return "", fmt.Errorf("webfetch: URL cannot be empty")
	}

	if scheme, _, found := strings.Cut(url, "://"); found {
		switch strings.ToLower(scheme) {
		case "http", "https":
			return url, nil
		default:
			return "", fmt.Errorf("webfetch: unsupported scheme %q", scheme)
		}
	}

	// "javascript:..." or "data:..." but not "host:8080/...".
	host, _, _ := strings.Cut(url, "/")
	if i := strings.IndexByte(host, ':'); i >= 0 && !looksLikePort(host[i+1:]) {
		return "", fmt.Errorf("webfetch: unsupported URL %q", url)
	}
	return "https://" + url, nil
}

// looksLikePort reports whether s starts with a port number, as in "host:8080/x".
func looksLikePort(s string) bool {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	return true
}

// Fetch downloads rawURL and converts the page to markdown. Non-200 statuses,
// bodies above MaxBodySize and conversion failures are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Output, error) {
	url, err := NormalizeURL(rawURL)
	if err != nil {
		return Output{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("webfetch: create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("webfetch: request timeout or canceled: %w", err)
		}
		return Output{}, fmt.Errorf("webfetch: fetch %s: %w", url, err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("webfetch: unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Output{}, fmt.Errorf("webfetch: read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Output{}, fmt.Errorf("webfetch: response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Output{}, fmt.Errorf("webfetch: convert HTML to markdown: %w", err)
	}

	return Output{URL: resp.Request.URL.String(), Markdown: markdown}, nil
}

// FetchMarkdown returns only the markdown of rawURL.
func (f *Fetcher) FetchMarkdown(ctx context.Context, rawURL string) (string, error) {
	out, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return out.Markdown, nil
}
