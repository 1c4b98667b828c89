package article

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 10 << 20

// Page is a downloaded document. URL is the final URL after redirects.
type Page struct {
	URL  string
	HTML string
}

type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*Page, error)
}

// HTTPFetcher downloads pages with a plain HTTP client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download %s: bad status %d", targetURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", targetURL, err)
	}
	return &Page{URL: resp.Request.URL.String(), HTML: string(body)}, nil
}

// NewFetcher returns the fetcher for mode ("http" or "browser") and a func
// that releases it.
func NewFetcher(mode string, timeout time.Duration, userAgent string) (Fetcher, func(), error) {
	switch mode {
	case "", "http":
		return NewHTTPFetcher(timeout, userAgent), func() {}, nil
	case "browser":
		f, err := NewBrowserFetcher(timeout, userAgent)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown fetch mode %q", mode)
	}
}
