// Package fetch retrieves pages to annotate, over HTTP or from disk.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/tokenize"
)

const (
	DefaultMaxBodyBytes = 10 * 1024 * 1024
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrTooLarge is returned when a page exceeds the body limit.
var ErrTooLarge = errors.New("fetch: response body exceeds size limit")

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Code)
}

// Page is fetched HTML with ruby annotations already stripped.
type Page struct {
	URL      *url.URL
	HTML     []byte
	Title    string
	SiteName string
	Byline   string
}

// Host returns the page's host name without port, or "" for local files.
func (p *Page) Host() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.Hostname()
}

// Fetcher downloads pages with browser-like headers.
type Fetcher struct {
	Client       *http.Client
	MaxBodyBytes int64
	UserAgent    string
	Logger       *zap.Logger
}

// New returns a Fetcher. Zero values select the defaults.
func New(timeout time.Duration, maxBodyBytes int64, userAgent string, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client:       &http.Client{Timeout: timeout},
		MaxBodyBytes: maxBodyBytes,
		UserAgent:    userAgent,
		Logger:       logger,
	}
}

// Fetch downloads rawURL. Only http and https are accepted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: create request: %w", err)
	}
	setBrowserHeaders(req, f.UserAgent)

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	body, err := f.readLimited(resp)
	if err != nil {
		return nil, err
	}
	f.Logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Page{URL: u, HTML: tokenize.SanitizeRuby(body)}, nil
}

func (f *Fetcher) readLimited(resp *http.Response) ([]byte, error) {
	if resp.ContentLength > f.MaxBodyBytes {
		return nil, ErrTooLarge
	}
	// One extra byte distinguishes "exactly the limit" from "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(body)) > f.MaxBodyBytes {
		return nil, ErrTooLarge
	}
	return body, nil
}

func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// ReadFile loads a local HTML file as a Page.
func ReadFile(path string) (*Page, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: read %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Page{
		URL:  &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)},
		HTML: tokenize.SanitizeRuby(body),
	}, nil
}

// Get fetches src over HTTP when it looks like a URL, otherwise reads it from disk.
func (f *Fetcher) Get(ctx context.Context, src string) (*Page, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return f.Fetch(ctx, src)
	}
	return ReadFile(src)
}

func (p *Page) reader() io.Reader {
	return bytes.NewReader(p.HTML)
}
