// Package ai calls the external generative model that proposes slug
// candidates. The model is an opaque collaborator: text in, candidate
// strings out. It may optionally stream narration lines which callers
// pass through as progress text, never parsed for logic.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codeGROOVE-dev/retry"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("ai: api key not configured")

const (
	defaultTimeout    = 30 * time.Second
	contentPreviewLen = 500
)

// Generator produces slug candidates from scraped page content.
type Generator interface {
	GenerateSlugs(ctx context.Context, title, description, content string, n int) ([]string, error)
}

// Client talks to a Gemini-style generateContent REST endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	// narrate receives intermediate narration lines when set.
	narrate func(string)
}

// Option configures a Client.
type Option func(*Client)

// WithNarration sets a callback invoked with each narration line the
// model emits before its final candidates.
func WithNarration(fn func(string)) Option {
	return func(c *Client) { c.narrate = fn }
}

type narrationKey struct{}

// ContextWithNarration returns a context that routes narration lines for
// calls made with it to fn. A context callback takes precedence over the
// client-level one, so a shared client can narrate per request.
func ContextWithNarration(ctx context.Context, fn func(string)) context.Context {
	return context.WithValue(ctx, narrationKey{}, fn)
}

// Narrate delivers a narration line to the callback carried by ctx, if
// any. Generator implementations call it for intermediate reasoning text.
func Narrate(ctx context.Context, line string) {
	if fn := narrationFrom(ctx); fn != nil {
		fn(line)
	}
}

func narrationFrom(ctx context.Context) func(string) {
	fn, _ := ctx.Value(narrationKey{}).(func(string))
	return fn
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the given endpoint, model and API key.
func New(endpoint, model, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type part struct {
	Text string `json:"text"`
}

type messageContent struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []messageContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content messageContent `json:"content"`
	} `json:"candidates"`
}

// GenerateSlugs asks the model for n slug candidates based on the page
// content. The returned strings are raw model output lines; callers are
// expected to sanitize them. Any failure aborts the whole request.
func (c *Client) GenerateSlugs(ctx context.Context, title, description, content string, n int) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	prompt := buildPrompt(title, description, truncate(content, contentPreviewLen), n)

	text, err := retry.DoWithData(
		func() (string, error) { return c.generate(ctx, prompt) },
		retry.Context(ctx),
		retry.Attempts(2), // single retry for transient upstream errors
		retry.Delay(300*time.Millisecond),
		retry.MaxJitter(150*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.WarnContext(ctx, "ai generation retry", "attempt", attempt, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	slugs := make([]string, 0, n)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		slugs = append(slugs, line)
		if len(slugs) >= n {
			break
		}
	}
	return slugs, nil
}

// generate performs one generateContent call.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []messageContent{{Parts: []part{{Text: prompt}}}},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("malformed model response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("model returned no candidates")
	}

	text := out.Candidates[0].Content.Parts[0].Text
	narrate := narrationFrom(ctx)
	if narrate == nil {
		narrate = c.narrate
	}
	if narrate != nil {
		// Everything before a blank-line separator is narration; emit it
		// line by line and keep only the final block as candidates.
		if idx := strings.LastIndex(text, "\n\n"); idx >= 0 {
			for _, line := range strings.Split(strings.TrimSpace(text[:idx]), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					narrate(line)
				}
			}
			text = text[idx+2:]
		}
	}
	return text, nil
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func buildPrompt(title, description, content string, n int) string {
	return fmt.Sprintf(`You are a URL slug generator. Based on the following webpage information, generate %d short, descriptive, SEO-friendly URL slugs.

Title: %s
Description: %s
Content preview: %s

Requirements:
- Maximum 50 characters
- Only lowercase letters (a-z), numbers (0-9), and hyphens (-)
- No leading or trailing hyphens
- No consecutive hyphens
- Descriptive and memorable
- Each slug should be semantically different from the others

Return ONLY the slugs, one per line, nothing else.`, n, title, description, content)
}
