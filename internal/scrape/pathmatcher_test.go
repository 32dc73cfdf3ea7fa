package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatcher_IsExcluded(t *testing.T) {
	t.Parallel()
	m := NewPathMatcher([]string{"/blog/*", "/news/*", "/*.pdf", "/about*"})

	tests := []struct {
		name     string
		url      string
		excluded bool
	}{
		{"blog post", "https://fund.example/blog/post1", true},
		{"blog root", "https://fund.example/blog", true},
		{"blog trailing slash", "https://fund.example/blog/", true},
		{"blog deep path", "https://fund.example/blog/2024/01/post", true},
		{"news article", "https://fund.example/news/article", true},
		{"root pdf", "https://fund.example/annual-report.pdf", true},
		{"nested pdf", "https://fund.example/files/2024/report.PDF", true},
		{"about glob", "https://fund.example/about-us", true},
		{"portfolio", "https://fund.example/portfolio", false},
		{"programs", "https://fund.example/programs", false},
		{"homepage", "https://fund.example/", false},
		{"bare host", "https://fund.example", false},
		{"blogroll is not blog", "https://fund.example/blogroll", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.excluded, m.IsExcluded(tt.url))
		})
	}
}

func TestPathMatcher_DefaultPatterns(t *testing.T) {
	m := NewPathMatcher(nil)

	assert.Equal(t, DefaultExcludePaths, m.Patterns())
	assert.True(t, m.IsExcluded("https://acme.vc/press/release"))
	assert.True(t, m.IsExcluded("https://acme.vc/careers/analyst"))
	assert.True(t, m.IsExcluded("https://acme.vc/events/demo-day"))
	assert.True(t, m.IsExcluded("https://acme.vc/docs/deck.pdf"))

	for _, p := range []string{"/about", "/programs", "/portfolio", "/investments", "/what-we-do"} {
		assert.False(t, m.IsExcluded("https://acme.vc"+p), p)
	}
}

func TestPathMatcher_CaseInsensitiveAndBlank(t *testing.T) {
	m := NewPathMatcher([]string{" /Blog/* ", ""})

	assert.True(t, m.IsExcluded("https://acme.vc/blog/post"))
	assert.True(t, m.IsExcluded("https://acme.vc/BLOG/POST"))
	assert.False(t, m.IsExcluded("https://acme.vc/"))
}

func TestPathMatcher_InvalidURL(t *testing.T) {
	m := NewPathMatcher([]string{"/blog/*"})
	assert.True(t, m.IsExcluded("://invalid"))
}
