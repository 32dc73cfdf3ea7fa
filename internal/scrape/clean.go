package scrape

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText NFKC-normalizes s and collapses every whitespace run to a single
// space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
