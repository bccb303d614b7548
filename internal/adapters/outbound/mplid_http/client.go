package mplid_http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

const (
	DefaultBaseURL = "https://mlbb-stats.ridwaanhall.com/api/mplid"
	userAgent      = "mplid-predictor/1.0"
	maxBodyBytes   = 8 << 20
)

var (
	// ErrUpstreamStatus wraps every non-2xx upstream response.
	ErrUpstreamStatus = errors.New("upstream status")
	// ErrIndexPayload means the upstream answered with its endpoint index
	// instead of the requested data.
	ErrIndexPayload = errors.New("upstream returned endpoint index")
)

// StatusError carries the upstream status code.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s -> %d: %s", e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUpstreamStatus }

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache
	sfGroup    singleflight.Group
}

// NewClient throttles to rps requests per second. rps <= 0 disables the
// limiter.
func NewClient(baseURL string, timeout time.Duration, rps int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), rps)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    lim,
		cache:      newCache(),
	}
}

// Invalidate drops every cached response.
func (c *Client) Invalidate() {
	c.cache.clear()
}

// InvalidateOnSync clears the cache whenever a sync run completes, so the
// API never serves data older than what was just stored.
func (c *Client) InvalidateOnSync(bus *events.Bus) {
	bus.Subscribe(func(events.Event) error {
		c.Invalidate()
		telemetry.Debugf("mplid_http: cache invalidated after sync")
		return nil
	}, events.EventSyncCompleted)
}

// fetch returns the body for path, from cache while it is fresh. Concurrent
// misses share one request. A failed refresh falls back to the stale body.
func (c *Client) fetch(ctx context.Context, path string, ttl time.Duration) ([]byte, error) {
	if body, fresh, ok := c.cache.get(path); ok && fresh {
		telemetry.Metrics.CacheHits.Inc()
		return body, nil
	}

	v, err, _ := c.sfGroup.Do(path, func() (any, error) {
		if body, fresh, ok := c.cache.get(path); ok && fresh {
			return body, nil
		}
		body, err := c.get(ctx, path)
		if err != nil {
			return nil, err
		}
		c.cache.put(path, body, ttl)
		return body, nil
	})
	if err != nil {
		if stale, _, ok := c.cache.get(path); ok {
			telemetry.Warnf("mplid_http: %s refresh failed, serving stale: %v", path, err)
			return stale, nil
		}
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	telemetry.Metrics.UpstreamFetches.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.UpstreamErrors.Inc()
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	telemetry.Metrics.UpstreamLatency.Since(start)
	if err != nil {
		telemetry.Metrics.UpstreamErrors.Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	telemetry.Debugf("mplid_http: GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		telemetry.Metrics.UpstreamErrors.Inc()
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Path: path, Code: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
