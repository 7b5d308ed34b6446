package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

const (
	defaultIdleConnTimeout = 90 * time.Second
	maxIdleConnsPerHost    = 16
)

// HTTPFetcher implements domain.Fetcher over net/http
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with a tuned transport. A zero timeout
// leaves the request bounded only by the caller's context.
func NewHTTPFetcher(config *domain.FetchConfig) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
	if config != nil {
		f.client.Timeout = config.Timeout
		f.userAgent = config.UserAgent
	}
	return f
}

// NewHTTPFetcherWithClient wraps an existing client
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch issues a GET request for rawURL
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*domain.FetchResponse, error) {
	target, err := encodeURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	return &domain.FetchResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// encodeURL escapes characters such as spaces that asset URLs often carry
// unencoded, and rejects non-HTTP schemes.
func encodeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return u.String(), nil
}
