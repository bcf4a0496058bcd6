package validate

import (
	"net/url"
	"strings"
)

// functionalParams is the allow-list of query parameter names that change
// what a page shows. Everything outside this set is treated as tracking
// noise and stripped.
var functionalParams = map[string]bool{
	"id":         true,
	"article_id": true,
	"post_id":    true,
	"video_id":   true,
	"product_id": true,
	"item_id":    true,
	"p":          true,
	"page":       true,
	"post":       true,
	"v":          true,
	"watch":      true,
	"tab":        true,
	"section":    true,
	"category":   true,
	"sort":       true,
	"order":      true,
	"filter":     true,
	"search":     true,
	"q":          true,
	"query":      true,
	"keywords":   true,
	"offset":     true,
	"limit":      true,
	"start":      true,
	"variant":    true,
	"color":      true,
	"size":       true,
	"quantity":   true,
	"sku":        true,
	"asin":       true,
	"action":     true,
	"mode":       true,
	"view":       true,
	"format":     true,
	"t":          true,
	"time":       true,
	"timestamp":  true,
	"version":    true,
	"feature":    true,
	"ab_test":    true,
}

// RemoveTrackingParameters strips query parameters whose lowercased name
// is outside the functional allow-list. Retained parameters keep their
// original relative order, values and repetition; the rest of the URL is
// left untouched. Malformed input is returned as-is.
func RemoveTrackingParameters(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" {
		return u.String()
	}

	// Walk the raw query segment by segment instead of using url.Values
	// so order and multi-value repetition survive.
	var kept []string
	for _, segment := range strings.Split(u.RawQuery, "&") {
		if segment == "" {
			continue
		}
		key := segment
		if idx := strings.Index(segment, "="); idx >= 0 {
			key = segment[:idx]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if functionalParams[strings.ToLower(key)] {
			kept = append(kept, segment)
		}
	}

	u.RawQuery = strings.Join(kept, "&")
	return u.String()
}
