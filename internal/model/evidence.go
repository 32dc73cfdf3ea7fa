package model

import (
	"strings"
)

// Page is one scraped page of evidence.
type Page struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Evidence is an ordered URL → text bundle gathered for one organization.
// Insertion order is preserved; re-adding a URL replaces its text in place.
type Evidence struct {
	urls  []string
	texts map[string]string
}

// NewEvidence creates an empty bundle.
func NewEvidence() *Evidence {
	return &Evidence{texts: make(map[string]string)}
}

// EvidenceFromPages rebuilds a bundle from a page list (e.g. a cache entry).
func EvidenceFromPages(pages []Page) *Evidence {
	ev := NewEvidence()
	for _, p := range pages {
		ev.Add(p.URL, p.Text)
	}
	return ev
}

// Add records text for url. Empty text is ignored.
func (e *Evidence) Add(url, text string) {
	if text == "" {
		return
	}
	if e.texts == nil {
		e.texts = make(map[string]string)
	}
	if _, ok := e.texts[url]; !ok {
		e.urls = append(e.urls, url)
	}
	e.texts[url] = text
}

// Len returns the number of pages in the bundle.
func (e *Evidence) Len() int {
	if e == nil {
		return 0
	}
	return len(e.urls)
}

// URLs returns the page URLs in insertion order.
func (e *Evidence) URLs() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.urls))
	copy(out, e.urls)
	return out
}

// Pages returns the bundle as an ordered page list.
func (e *Evidence) Pages() []Page {
	if e == nil {
		return nil
	}
	pages := make([]Page, 0, len(e.urls))
	for _, u := range e.urls {
		pages = append(pages, Page{URL: u, Text: e.texts[u]})
	}
	return pages
}

// Joined concatenates all page texts with single spaces, capped at limit
// bytes (limit <= 0 means no cap).
func (e *Evidence) Joined(limit int) string {
	if e.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.urls))
	for _, u := range e.urls {
		parts = append(parts, e.texts[u])
	}
	s := strings.Join(parts, " ")
	return Truncate(s, limit)
}

// Truncate cuts s to at most limit characters. limit <= 0 returns s
// unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
