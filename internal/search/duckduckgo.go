package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
)

// DefaultDuckDuckGoURL is the JavaScript-free DuckDuckGo results endpoint.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo searches the DuckDuckGo HTML endpoint. Result links are
// returned in their /l/?uddg= redirect form; callers unwrap them.
type DuckDuckGo struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo searcher. An empty baseURL uses the
// public endpoint.
func NewDuckDuckGo(baseURL, userAgent string, timeout time.Duration) *DuckDuckGo {
	if baseURL == "" {
		baseURL = DefaultDuckDuckGoURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DuckDuckGo{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// Search posts the query form and parses result anchors.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
		return nil, resilience.StatusError(err, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: parse results")
	}

	var hits []model.SearchHit
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}
		if strings.HasPrefix(href, "//") {
			href = "https:" + href
		}
		hits = append(hits, model.SearchHit{
			Title: strings.TrimSpace(s.Text()),
			Href:  href,
		})
		return maxResults <= 0 || len(hits) < maxResults
	})

	return hits, nil
}
