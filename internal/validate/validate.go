// Package validate checks and normalizes user-submitted URLs before they
// are scraped or persisted. It is pure: no I/O, deterministic, and
// idempotent over its own output.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindEmpty       Kind = "empty"
	KindBadScheme   Kind = "bad_scheme"
	KindMissingHost Kind = "missing_host"
	KindPrivateIP   Kind = "private_ip"
	KindLocalhost   Kind = "localhost"
	KindTooLong     Kind = "too_long"
)

// Error is a user-visible validation failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// MaxURLLength is the cap applied after normalization.
const MaxURLLength = 2048

// Validate checks a raw URL string and returns its normalized form.
// A missing scheme is normalized to https:// rather than rejected.
// Literal private, loopback and link-local addresses are rejected to
// prevent the scraper from being pointed at internal resources.
func Validate(raw string) (string, error) {
	if raw == "" {
		return "", &Error{Kind: KindEmpty, Message: "URL cannot be empty"}
	}

	if !hasScheme(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &Error{Kind: KindBadScheme, Message: "Invalid URL format"}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &Error{Kind: KindBadScheme, Message: "Only HTTP and HTTPS URLs are allowed"}
	}

	if u.Host == "" {
		return "", &Error{Kind: KindMissingHost, Message: "Invalid URL: missing hostname"}
	}

	hostname := strings.ToLower(u.Hostname())

	// SSRF prevention: reject literal addresses in internal ranges.
	if ip := net.ParseIP(strings.Trim(hostname, "[]")); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return "", &Error{Kind: KindPrivateIP, Message: "Private/internal IP addresses are not allowed"}
		}
	}

	if isLocalhost(hostname) {
		return "", &Error{Kind: KindLocalhost, Message: "Localhost URLs are not allowed"}
	}

	normalized := RemoveTrackingParameters(u.String())

	if len(normalized) > MaxURLLength {
		return "", &Error{Kind: KindTooLong, Message: fmt.Sprintf("URL is too long (max %d characters)", MaxURLLength)}
	}

	return normalized, nil
}

// hasScheme reports whether raw carries an explicit scheme, that is a
// "://" appearing before any path separator. Bare hostnames get https://
// prepended; explicit non-HTTP schemes must be rejected, not rewritten.
func hasScheme(raw string) bool {
	i := strings.Index(raw, "://")
	if i < 0 {
		return false
	}
	if j := strings.Index(raw, "/"); j >= 0 && j < i {
		return false
	}
	return true
}

// isLocalhost matches the literal localhost spellings that bypass the IP
// range checks.
func isLocalhost(hostname string) bool {
	switch hostname {
	case "localhost", "0.0.0.0", "::1", "0:0:0:0:0:0:0:1":
		return true
	}
	return strings.HasPrefix(hostname, "127.")
}
