package scrape

import (
	"regexp"
	"strings"
)

// placeholderPatterns are phrases that betray a page whose real content
// only exists after client-side script execution. Matched against the
// lowercase, punctuation-normalized body excerpt.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`enable javascript`),
	regexp.MustCompile(`turn on javascript`),
	regexp.MustCompile(`javascript is disabled`),
	regexp.MustCompile(`please enable javascript`),
	regexp.MustCompile(`js-disabled`),
	regexp.MustCompile(`enable-javascript`),
	regexp.MustCompile(`x-javascript-error`),
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s-]`)

// ContentIsPlaceholder reports whether text looks like a JS placeholder
// shell rather than real page content.
func ContentIsPlaceholder(text string) bool {
	if text == "" {
		return false
	}
	lower := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	for _, pat := range placeholderPatterns {
		if pat.MatchString(lower) {
			return true
		}
	}
	return false
}
