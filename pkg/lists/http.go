package lists

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

// maxListSize bounds a single list download.
const maxListSize = 20 * 1024 * 1024

// HTTPResolver fetches catalog lists relative to a base URL.
type HTTPResolver struct {
	BaseURL string
	Catalog Catalog
	Client  *http.Client
	Logger  *zap.Logger
}

// NewHTTPResolver creates a resolver for lists published under baseURL.
func NewHTTPResolver(baseURL string, logger *zap.Logger) *HTTPResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Catalog: DefaultCatalog(),
		Client:  &http.Client{Timeout: 10 * time.Second},
		Logger:  logger.With(zap.String("resolver", "http")),
	}
}

// URL returns the address list id is fetched from.
func (r *HTTPResolver) URL(id string) (string, error) {
	file, ok := r.Catalog.File(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownList, id)
	}
	return r.BaseURL + "/" + strings.TrimLeft(file, "/"), nil
}

func (r *HTTPResolver) Resolve(ctx context.Context, id string) ([]dictionary.Record, error) {
	url, err := r.URL(id)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lists: create request: %w", err)
	}
	req.Header.Set("User-Agent", "wordweave")

	r.Logger.Debug("fetching list", zap.String("list", id), zap.String("url", url))
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lists: fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lists: fetch %s: status %s", id, resp.Status)
	}

	var body io.Reader = io.LimitReader(resp.Body, maxListSize)
	name := strings.TrimSuffix(url, ".gz")
	if name != url {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("lists: failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("lists: read %s: %w", id, err)
	}
	records, err := dictionary.ParseList(data, dictionary.FormatForPath(name))
	if err != nil {
		return nil, fmt.Errorf("lists: parse %s: %w", id, err)
	}
	return records, nil
}
