// Package amap is a thin client for the AMap (高德) v3 REST API covering
// forward geocoding and around-point place search. It folds in the
// operational guards the upstream needs in practice: a QPS limiter,
// bounded retries with linear backoff on rate-limit answers, and a
// circuit breaker so a dead upstream fails fast.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/meetspot-ai/meetspot/config"
	"github.com/meetspot-ai/meetspot/internal/telemetry"
)

// Infocode/info values the upstream uses for per-key throttling. These
// answers come back with HTTP 200, so they must be detected in the body.
const (
	infoRateLimited = "CUQPS_HAS_EXCEEDED_THE_LIMIT"
	statusOK        = "1"
)

// RateLimitError marks an upstream throttle answer that survived all
// retry attempts.
type RateLimitError struct {
	Endpoint string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("amap %s rate limited after %d attempts", e.Endpoint, e.Attempts)
}

// APIError is a non-throttle upstream rejection (bad key, bad params).
type APIError struct {
	Endpoint string
	Info     string
	Infocode string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amap %s failed: %s (infocode %s)", e.Endpoint, e.Info, e.Infocode)
}

// Client calls the AMap REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	backoff    time.Duration
	pageSize   int
	logger     *log.Logger
	metrics    *telemetry.Metrics
}

// WithMetrics attaches upstream request counters. Returns the client for
// chaining during wiring.
func (c *Client) WithMetrics(m *telemetry.Metrics) *Client {
	c.metrics = m
	return c
}

func (c *Client) count(endpoint, outcome string) {
	if c.metrics != nil {
		c.metrics.UpstreamHits.WithLabelValues(endpoint, outcome).Inc()
	}
}

// NewClient builds a client from configuration. The API key must be set;
// everything else has defaults.
func NewClient(cfg config.AmapConfig, logger *log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("amap api key is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://restapi.amap.com/v3"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "amap",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.QPS), 1),
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		pageSize:   pageSize,
		logger:     logger,
	}, nil
}

// Geocode resolves a free-form address to candidate coordinates.
func (c *Client) Geocode(ctx context.Context, address string) ([]Geocode, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.getWithRetry(ctx, "/geocode/geo", params, &resp, func() (string, string, string) {
		return resp.Status, resp.Info, resp.Infocode
	}); err != nil {
		return nil, err
	}
	return resp.Geocodes, nil
}

// SearchAround lists places near location ("lng,lat"). keywords and
// typeCodes are passed through as the upstream expects; either may be
// empty for a broad search.
func (c *Client) SearchAround(ctx context.Context, location, keywords string, radius int, typeCodes string) ([]POI, error) {
	params := url.Values{}
	params.Set("location", location)
	params.Set("radius", strconv.Itoa(radius))
	params.Set("offset", strconv.Itoa(c.pageSize))
	params.Set("page", "1")
	params.Set("extensions", "all")
	params.Set("sortrule", "distance")
	if keywords != "" {
		params.Set("keywords", keywords)
	}
	if typeCodes != "" {
		params.Set("types", typeCodes)
	}

	var resp placeResponse
	if err := c.getWithRetry(ctx, "/place/around", params, &resp, func() (string, string, string) {
		return resp.Status, resp.Info, resp.Infocode
	}); err != nil {
		return nil, err
	}
	return resp.POIs, nil
}

// getWithRetry performs the request up to maxRetries times. Only
// rate-limit answers and transport errors are retried; a definitive
// upstream rejection returns immediately. Backoff grows linearly with
// the attempt number.
func (c *Client) getWithRetry(ctx context.Context, endpoint string, params url.Values, out interface{}, status func() (string, string, string)) error {
	tries := c.maxRetries
	if tries < 1 {
		tries = 1
	}

	var lastErr error
	for attempt := 0; attempt < tries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(attempt)
			c.logger.Printf("retrying %s in %s (attempt %d/%d)", endpoint, wait, attempt+1, tries)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.doOnce(ctx, endpoint, params, out)
		if err == nil {
			st, info, code := status()
			if st == statusOK {
				c.count(endpoint, "ok")
				return nil
			}
			if info == infoRateLimited || code == "10021" {
				c.count(endpoint, "rate_limited")
				lastErr = &RateLimitError{Endpoint: endpoint, Attempts: attempt + 1}
				continue
			}
			c.count(endpoint, "rejected")
			return &APIError{Endpoint: endpoint, Info: info, Infocode: code}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.count(endpoint, "error")
		lastErr = err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("key", c.apiKey)
	q.Set("output", "json")
	fullURL := c.baseURL + endpoint + "?" + q.Encode()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("amap %s returned HTTP %d", endpoint, resp.StatusCode)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decoding %s response: %w", endpoint, err)
		}
		return nil, nil
	})
	return err
}
