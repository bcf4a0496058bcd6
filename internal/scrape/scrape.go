// Package scrape fetches webpage content for AI analysis. It extracts
// title, description and a body excerpt, detects JS-only placeholder
// pages and applies an ordered fallback chain (oEmbed lookup, mirror
// hosts, text-extraction proxy) for hosts that cannot be rendered
// without a browser engine.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error kinds surfaced by the scraper. Every failure is terminal for the
// request that triggered it; callers never retry a scrape.
const (
	KindUnauthorized       = "unauthorized"
	KindForbidden          = "forbidden"
	KindNotFound           = "not_found"
	KindServerError        = "server_error"
	KindInvalidContent     = "invalid_content"
	KindContentUnavailable = "content_unavailable"
	KindNoContent          = "no_content"
	KindTimeout            = "timeout"
	KindConnectionError    = "connection_error"
	KindTooManyRedirects   = "too_many_redirects"
	KindHTTPError          = "http_error"
	KindUnknownError       = "unknown_error"
)

const (
	maxRedirects   = 5
	maxBodyBytes   = 2 << 20 // 2MB cap on response bodies
	excerptLength  = 1000
	minContentSize = 50
)

var errTooManyRedirects = errors.New("stopped after 5 redirects")

// Config contains scraper configuration.
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	MirrorHosts    []string // substituted into status-page paths, tried in order
	TextProxyURL   string   // prefix prepended to the original URL, e.g. "https://r.jina.ai/"
	OEmbedEndpoint string   // structured embed lookup for micro-blogging status pages

	// Transport overrides the HTTP transport; nil means the default.
	Transport http.RoundTripper
}

// DefaultConfig returns the production scraper configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		UserAgent:      "Mozilla/5.0 (compatible; BriefenMe/1.0; +http://briefen.me)",
		MirrorHosts:    []string{"nitter.net", "nitter.poast.org"},
		TextProxyURL:   "https://r.jina.ai/",
		OEmbedEndpoint: "https://publish.twitter.com/oembed",
	}
}

// Result is the outcome of one scrape. When Success is false, ErrKind
// and ErrMessage describe the failure; when a fallback strategy salvaged
// the content, Fallback names it ("oembed", "mirror:<host>", "text-proxy").
type Result struct {
	Success     bool
	Title       string
	Description string
	Content     string
	URL         string
	Fallback    string
	ErrKind     string
	ErrMessage  string
}

// Scraper fetches webpages over HTTP with a capped redirect count.
type Scraper struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Scraper. A nil logger falls back to slog.Default.
func New(config Config, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		logger: logger,
	}
}

// Scrape fetches targetURL and extracts its content. Micro-blogging
// status pages try the structured embed lookup first, since the primary
// page is typically unrenderable without client-side script execution.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) *Result {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return failure(KindUnknownError, "Invalid URL")
	}

	if isStatusPage(parsed) {
		if res := s.tryOEmbed(ctx, targetURL); res != nil {
			return res
		}
	}

	res := s.fetchAndExtract(ctx, targetURL)

	// The fallback chain only fires for placeholder pages on hosts we
	// know how to mirror; everything else fails as-is.
	if !res.Success && res.ErrKind == KindContentUnavailable && isFallbackHost(parsed) {
		if alt := s.tryFallbacks(ctx, parsed, targetURL); alt != nil {
			return alt
		}
	}

	return res
}

// tryOEmbed asks the embed endpoint for the status content. Returns nil
// when the lookup fails or yields nothing, in which case the caller
// proceeds with the normal page fetch.
func (s *Scraper) tryOEmbed(ctx context.Context, targetURL string) *Result {
	oembedURL := fmt.Sprintf("%s?url=%s&omit_script=1", s.config.OEmbedEndpoint, url.QueryEscape(targetURL))

	body, _, err := s.get(ctx, oembedURL)
	if err != nil {
		s.logger.DebugContext(ctx, "oembed lookup failed", "url", targetURL, "error", err)
		return nil
	}

	var payload struct {
		HTML       string `json:"html"`
		AuthorName string `json:"author_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}

	text := stripTags(payload.HTML)
	if text == "" {
		return nil
	}

	author := payload.AuthorName
	if author == "" {
		author = "Twitter"
	}
	description := truncate(text, 160)

	return &Result{
		Success:     true,
		Title:       author + " on Twitter",
		Description: description,
		Content:     text,
		URL:         targetURL,
		Fallback:    "oembed",
	}
}

// fetchAndExtract performs the direct page fetch and extraction.
func (s *Scraper) fetchAndExtract(ctx context.Context, targetURL string) *Result {
	body, resp, err := s.get(ctx, targetURL)
	if err != nil {
		return networkFailure(err, s.config.Timeout)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return failure(KindUnauthorized, "This page requires authentication. Please use a publicly accessible URL.")
	case resp.StatusCode == http.StatusForbidden:
		return failure(KindForbidden, "Access to this page is forbidden. Please use a public URL.")
	case resp.StatusCode == http.StatusNotFound:
		return failure(KindNotFound, "Page not found. Please check the URL and try again.")
	case resp.StatusCode >= 500:
		return failure(KindServerError, "The website's server is currently unavailable. Please try again later.")
	case resp.StatusCode >= 400:
		return failure(KindHTTPError, fmt.Sprintf("HTTP error occurred: status %d", resp.StatusCode))
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return failure(KindInvalidContent, "This URL doesn't point to a webpage. Please provide a link to a web page.")
	}

	res := extractResult(body, targetURL)
	return res
}

// tryFallbacks runs the ordered fallback strategies: each mirror host
// substituted into the original path, then the text-extraction proxy.
// First success wins; nil means everything failed.
func (s *Scraper) tryFallbacks(ctx context.Context, parsed *url.URL, targetURL string) *Result {
	for _, mirror := range s.config.MirrorHosts {
		mirrored := *parsed
		mirrored.Host = mirror
		res := s.fetchAndExtract(ctx, mirrored.String())
		if res.Success {
			s.logger.InfoContext(ctx, "mirror fallback succeeded", "mirror", mirror, "url", targetURL)
			res.URL = targetURL
			res.Fallback = "mirror:" + mirror
			return res
		}
	}

	if s.config.TextProxyURL != "" {
		if res := s.tryTextProxy(ctx, targetURL); res != nil {
			return res
		}
	}

	return nil
}

// tryTextProxy fronts the original URL with a generic text-extraction
// proxy that returns a plain-text rendering of the page.
func (s *Scraper) tryTextProxy(ctx context.Context, targetURL string) *Result {
	body, resp, err := s.get(ctx, s.config.TextProxyURL+targetURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil
	}

	text := truncate(strings.TrimSpace(string(body)), excerptLength)
	if text == "" || ContentIsPlaceholder(text) {
		return nil
	}

	s.logger.InfoContext(ctx, "text proxy fallback succeeded", "url", targetURL)
	return &Result{
		Success:  true,
		Content:  text,
		URL:      targetURL,
		Fallback: "text-proxy",
	}
}

// get issues a GET with the identifying user agent and returns the
// capped body. The response is non-nil only when err is nil.
func (s *Scraper) get(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, err
	}
	return body, resp, nil
}

// extractResult parses an HTML document and classifies thin or
// placeholder content.
func extractResult(body []byte, targetURL string) *Result {
	doc, err := parseHTML(body)
	if err != nil {
		return failure(KindUnknownError, "An unexpected error occurred while processing this page.")
	}

	title := extractTitle(doc)
	description := extractDescription(doc)
	content := extractBodyText(doc, excerptLength)

	if ContentIsPlaceholder(content) {
		return failure(KindContentUnavailable,
			"This page appears to require JavaScript to render its content. We couldn't extract meaningful content.")
	}

	if title == "" && description == "" && len(content) < minContentSize {
		return failure(KindNoContent,
			"Unable to extract meaningful content from this page. The page might be empty or require JavaScript to load.")
	}

	return &Result{
		Success:     true,
		Title:       title,
		Description: description,
		Content:     content,
		URL:         targetURL,
	}
}

// isStatusPage reports whether the URL is a micro-blogging status page
// eligible for the structured embed lookup.
func isStatusPage(u *url.URL) bool {
	if !isFallbackHost(u) {
		return false
	}
	return strings.Contains(u.Path, "/status/") || strings.Contains(u.Path, "/statuses/")
}

// isFallbackHost matches the known class of JS-heavy micro-blogging hosts.
func isFallbackHost(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "twitter.com" || host == "x.com" ||
		strings.HasSuffix(host, ".twitter.com") || strings.HasSuffix(host, ".x.com")
}

func failure(kind, message string) *Result {
	return &Result{ErrKind: kind, ErrMessage: message}
}

// networkFailure maps transport-level errors to their dedicated kinds.
func networkFailure(err error, timeout time.Duration) *Result {
	var netErr net.Error
	switch {
	case errors.Is(err, errTooManyRedirects):
		return failure(KindTooManyRedirects,
			"This URL has too many redirects. Please try the final destination URL directly.")
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return failure(KindTimeout,
			fmt.Sprintf("This page is taking too long to load (>%s). Please try a different URL or try again later.", timeout))
	case isConnectionError(err):
		return failure(KindConnectionError,
			"Unable to connect to this website. Please check the URL and your internet connection.")
	default:
		return failure(KindUnknownError,
			fmt.Sprintf("An unexpected error occurred while processing this page: %v", err))
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
