package scrape

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// LocalScraper fetches HTML via net/http, detects blocks, and returns the
// visible text of the whole document. It is the fast generic extractor.
type LocalScraper struct {
	client    *http.Client
	userAgent string
}

// NewLocalScraper creates a LocalScraper.
func NewLocalScraper(opts HTTPOptions) *LocalScraper {
	return &LocalScraper{
		client:    newHTTPClient(opts.Timeout),
		userAgent: opts.UserAgent,
	}
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL and strips script, style and noscript content.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, body, err := fetchPage(ctx, l.client, l.userAgent, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "local_http")
	}

	title, text, err := visibleText(body)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse html")
	}
	if text == "" {
		return nil, eris.New("local_http: empty page")
	}

	return &Result{
		URL:        targetURL,
		Title:      title,
		Text:       text,
		StatusCode: resp.StatusCode,
		Source:     "local_http",
	}, nil
}

// visibleText returns the document title and its cleaned visible text.
func visibleText(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, template").Remove()
	// Separate block elements so adjacent words do not run together.
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, br, td, section, article").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return title, CleanText(doc.Find("body").Text()), nil
}
