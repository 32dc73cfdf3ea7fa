package scrape

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
)

// ReadabilityScraper extracts the main article content of a page, dropping
// navigation and boilerplate. It is the content-focused extractor.
type ReadabilityScraper struct {
	client    *http.Client
	userAgent string
}

// NewReadabilityScraper creates a ReadabilityScraper.
func NewReadabilityScraper(opts HTTPOptions) *ReadabilityScraper {
	return &ReadabilityScraper{
		client:    newHTTPClient(opts.Timeout),
		userAgent: opts.UserAgent,
	}
}

func (r *ReadabilityScraper) Name() string           { return "readability" }
func (r *ReadabilityScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL and returns its readable text content.
func (r *ReadabilityScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "readability: parse url")
	}

	resp, body, err := fetchPage(ctx, r.client, r.userAgent, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "readability")
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, eris.Wrap(err, "readability: parse content")
	}

	text := CleanText(article.TextContent)
	if text == "" {
		return nil, eris.New("readability: empty page")
	}

	return &Result{
		URL:        targetURL,
		Title:      article.Title,
		Text:       text,
		StatusCode: resp.StatusCode,
		Source:     "readability",
	}, nil
}
