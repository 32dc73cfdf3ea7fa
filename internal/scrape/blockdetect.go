package scrape

import (
	"net/http"
	"strings"
)

// BlockType names the reason a page was rejected as not real content.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockParked     BlockType = "parked"
)

// shellBodyLimit is the size under which a page is considered a script
// shell or redirect stub rather than content.
const shellBodyLimit = 2000

// Challenge pages are recognized by markers only the interstitial itself
// carries. Ordinary pages may mention Cloudflare or embed a captcha widget
// on a form; those stay usable.
var (
	cloudflareMarkers = []string{
		"cf-browser-verification",
		"cf-chl-",
		"/cdn-cgi/challenge-platform/",
		"checking your browser before accessing",
	}
	captchaWidgets = []string{"captcha", "cf-turnstile"}
	captchaPrompts = []string{
		"verify you are human",
		"verify that you are human",
		"are you a robot",
		"not a robot",
		"unusual traffic",
		"complete the captcha",
		"complete the recaptcha",
		"solve the captcha",
	}
	// Lapsed organization domains often resolve to registrar sale pages.
	parkedMarkers = []string{"this domain is for sale", "buy this domain", "domain may be for sale", "parked free"}
)

// DetectBlock reports why resp/body is an anti-bot wall, a parked domain or
// an empty script shell, or BlockNone for a usable page.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp == nil {
		return BlockNone
	}

	lower := strings.ToLower(string(body))
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		h := resp.Header
		if h.Get("cf-ray") != "" || h.Get("cf-cache-status") != "" || strings.EqualFold(h.Get("server"), "cloudflare") {
			return BlockCloudflare
		}
		if containsAny(lower, captchaWidgets) {
			return BlockCaptcha
		}
	}

	if containsAny(lower, cloudflareMarkers) {
		return BlockCloudflare
	}
	if containsAny(lower, captchaWidgets) && containsAny(lower, captchaPrompts) {
		return BlockCaptcha
	}
	if containsAny(lower, parkedMarkers) {
		return BlockParked
	}

	if len(body) < shellBodyLimit {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return BlockJSShell
		}
	}
	return BlockNone
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
