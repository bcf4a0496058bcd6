// Package geo resolves IP addresses to country and city through an
// external lookup service. Lookups are best-effort: short timeout, one
// retry, failures logged and dropped.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// ErrLookupFailed is returned when the service answers but cannot
// resolve the address.
var ErrLookupFailed = errors.New("geo: lookup failed")

// Location is a resolved address.
type Location struct {
	Country string
	City    string
}

// Client queries an ip-api.com style JSON endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client with the given endpoint and per-lookup timeout.
func New(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type lookupResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// Lookup resolves ip to a Location.
func (c *Client) Lookup(ctx context.Context, ip string) (*Location, error) {
	return retry.DoWithData(
		func() (*Location, error) { return c.lookup(ctx, ip) },
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// A definitive "fail" answer from the service is not transient.
			return !errors.Is(err, ErrLookupFailed)
		}),
	)
}

func (c *Client) lookup(ctx context.Context, ip string) (*Location, error) {
	lookupURL := fmt.Sprintf("%s/%s?fields=status,country,city", c.endpoint, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, err
	}

	var out lookupResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if out.Status != "success" {
		return nil, ErrLookupFailed
	}

	loc := &Location{Country: out.Country, City: out.City}
	if loc.Country == "" {
		loc.Country = "Unknown"
	}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	return loc, nil
}
