// Package evidence resolves an organization's website and collects page
// text from it for extraction.
package evidence

import (
	"net/url"
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"

	"github.com/sells-group/enrich-cli/internal/model"
)

var (
	explicitURLRe = xurls.Strict()
	domainRe      = regexp.MustCompile(`[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// socialHosts are registrable domains never accepted as an official site.
var socialHosts = []string{
	"linkedin.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"t.co",
}

// IsSocial reports whether rawURL (or a bare host) belongs to a social
// network. The host must equal a social domain or be a subdomain of one.
func IsSocial(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, s := range socialHosts {
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// ExtractURL pulls a usable URL out of a freeform website cell. An explicit
// http(s) link anywhere in the text wins; otherwise the first domain-like
// token is taken and given an https scheme. Returns "" when nothing usable
// is found.
func ExtractURL(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	for _, m := range explicitURLRe.FindAllString(s, -1) {
		lower := strings.ToLower(m)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return strings.TrimRight(m, ").,;")
		}
	}
	if m := domainRe.FindString(s); m != "" {
		return "https://" + strings.Trim(m, ".-")
	}
	return ""
}

// NormalizeSearchHref turns a raw search-result link into a plain http(s)
// URL. DuckDuckGo /l/?uddg= redirect wrappers are unwrapped; anything that
// is not http(s) yields "".
func NormalizeSearchHref(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if (host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com")) && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); isHTTP(target) {
			return target
		}
		return ""
	}
	if isHTTP(raw) {
		return raw
	}
	return ""
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ResolveWebsite picks the organization's official site: the URL found in
// the website cell when it is not a social profile, else the first
// non-social search hit. Returns "" when neither source yields one.
func ResolveWebsite(cell string, hits []model.SearchHit) string {
	if u := ExtractURL(cell); u != "" && !IsSocial(u) {
		return u
	}
	for _, h := range hits {
		if u := NormalizeSearchHref(h.URL()); u != "" && !IsSocial(u) {
			return u
		}
	}
	return ""
}

// MatchingHit returns the hit whose normalized link equals website.
func MatchingHit(website string, hits []model.SearchHit) (model.SearchHit, bool) {
	for _, h := range hits {
		if NormalizeSearchHref(h.URL()) == website {
			return h, true
		}
	}
	return model.SearchHit{}, false
}
