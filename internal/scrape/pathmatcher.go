package scrape

import (
	"net/url"
	"path"
	"strings"
)

// DefaultExcludePaths skip pages that rarely describe what an organization
// funds or runs: news feeds, hiring pages and downloadable documents.
var DefaultExcludePaths = []string{
	"/blog/*",
	"/news/*",
	"/press/*",
	"/careers/*",
	"/events/*",
	"/*.pdf",
}

// PathMatcher decides which candidate pages a crawl skips. Patterns are
// case-insensitive path.Match globs with two extensions: "/dir/*" also
// covers every page below /dir, and an extension glob such as "/*.pdf"
// matches files at any depth.
type PathMatcher struct {
	patterns []string
	rules    []pathRule
}

type pathRule struct {
	glob   string
	subdir string // set for "/dir/*"
	ext    string // set for "/*.ext"
}

// NewPathMatcher compiles patterns, using DefaultExcludePaths when none are
// given. Blank patterns are ignored.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = DefaultExcludePaths
	}
	m := &PathMatcher{patterns: patterns}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		r := pathRule{glob: p}
		switch {
		case strings.HasPrefix(p, "/*.") && !strings.Contains(p[1:], "/"):
			r.ext = p[1:]
		case strings.HasSuffix(p, "/*"):
			r.subdir = strings.TrimSuffix(p, "/*")
		}
		m.rules = append(m.rules, r)
	}
	return m
}

// Patterns returns the patterns as configured.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded reports whether rawURL's path matches a pattern. URLs that do
// not parse are excluded.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	p := strings.ToLower(u.Path)
	if p == "" {
		p = "/"
	}
	for _, r := range m.rules {
		if r.matches(p) {
			return true
		}
	}
	return false
}

func (r pathRule) matches(p string) bool {
	if ok, _ := path.Match(r.glob, p); ok {
		return true
	}
	if r.subdir != "" && (p == r.subdir || strings.HasPrefix(p, r.subdir+"/")) {
		return true
	}
	if r.ext != "" {
		ok, _ := path.Match(r.ext, path.Base(p))
		return ok
	}
	return false
}
