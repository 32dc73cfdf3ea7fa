package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (compatible; enrich-cli/1.0)"

// maxBodyBytes bounds how much of a page is read.
const maxBodyBytes = 2 << 20

// Result holds a scraped page with its source.
type Result struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
	Source     string // e.g. "local_http", "readability", "jina"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

// HTTPOptions configures the shared page fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// fetchPage GETs targetURL and returns the bounded body. Blocked pages and
// non-2xx statuses are errors; callers label them with their own prefix.
func fetchPage(ctx context.Context, client *http.Client, userAgent, targetURL string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create request")
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, eris.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp, nil, eris.Wrap(err, "read body")
	}

	if block := DetectBlock(resp, body); block != BlockNone {
		return resp, nil, eris.Errorf("blocked (%s)", block)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil, eris.Errorf("status %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return resp, nil, eris.New("empty page")
	}
	return resp, body, nil
}
