// Package binance fetches spot market candles and live tick prices.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"updown-bot/internal/data"
	"updown-bot/internal/domain"
)

// DefaultBaseURL is the public spot REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

// Default configuration values.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultCacheTTL   = time.Minute
	DefaultLimit      = 100
)

// symbols maps asset keys to spot trading pairs.
var symbols = map[string]string{
	"btc": "BTCUSDT",
	"eth": "ETHUSDT",
	"sol": "SOLUSDT",
	"xrp": "XRPUSDT",
}

// Symbol returns the spot pair for an asset key.
func Symbol(asset string) (string, bool) {
	s, ok := symbols[asset]
	return s, ok
}

// Client fetches 1-minute klines over REST. Successful responses are
// cached per asset; a failed fetch falls back to the cached candles so
// a transient outage degrades to slightly stale signals instead of a
// skipped cycle.
type Client struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	cacheTTL   time.Duration

	mu    sync.Mutex
	cache map[string]cachedKlines
}

type cachedKlines struct {
	candles []domain.Candle
	at      time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the REST endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithCacheTTL sets how long cached candles are served without a fetch.
func WithCacheTTL(d time.Duration) ClientOption {
	return func(c *Client) { c.cacheTTL = d }
}

// NewClient creates a new kline client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		cacheTTL:   DefaultCacheTTL,
		cache:      make(map[string]cachedKlines),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ data.CandleProvider = (*Client)(nil)

// Candles returns up to limit 1-minute candles for asset, ascending by
// open time. Cached candles younger than the TTL are returned without
// a network round trip.
func (c *Client) Candles(ctx context.Context, asset string, limit int) ([]domain.Candle, error) {
	symbol, ok := symbols[asset]
	if !ok {
		return nil, fmt.Errorf("unknown asset: %s", asset)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	c.mu.Lock()
	cached, hasCache := c.cache[asset]
	c.mu.Unlock()
	if hasCache && time.Since(cached.at) < c.cacheTTL && len(cached.candles) >= limit {
		return cached.candles, nil
	}

	candles, err := c.fetchKlines(ctx, symbol, limit)
	if err != nil {
		if hasCache && len(cached.candles) > 0 {
			return cached.candles, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.cache[asset] = cachedKlines{candles: candles, at: time.Now()}
	c.mu.Unlock()
	return candles, nil
}

func (c *Client) fetchKlines(ctx context.Context, symbol string, limit int) ([]domain.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1m")
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/api/v3/klines?" + q.Encode()

	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		candles, err := c.doFetch(ctx, endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		return candles, nil
	}
	return nil, fmt.Errorf("fetch klines %s: %w", symbol, lastErr)
}

func (c *Client) doFetch(ctx context.Context, endpoint string) ([]domain.Candle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []kline
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	candles := make([]domain.Candle, len(raw))
	for i, k := range raw {
		candles[i] = domain.Candle(k)
	}
	return candles, nil
}

// kline decodes the wire format, a heterogeneous JSON array
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
// Short or non-numeric rows are rejected rather than zero-filled.
type kline domain.Candle

func (k *kline) UnmarshalJSON(b []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("kline row: %w", err)
	}
	if len(fields) < 7 {
		return fmt.Errorf("kline row has %d fields, want at least 7", len(fields))
	}

	if err := json.Unmarshal(fields[0], &k.OpenTime); err != nil {
		return fmt.Errorf("kline openTime: %w", err)
	}
	if err := json.Unmarshal(fields[6], &k.CloseTime); err != nil {
		return fmt.Errorf("kline closeTime: %w", err)
	}

	numeric := []struct {
		name string
		raw  json.RawMessage
		dst  *float64
	}{
		{"open", fields[1], &k.Open},
		{"high", fields[2], &k.High},
		{"low", fields[3], &k.Low},
		{"close", fields[4], &k.Close},
		{"volume", fields[5], &k.Volume},
	}
	for _, f := range numeric {
		var s string
		if err := json.Unmarshal(f.raw, &s); err != nil {
			return fmt.Errorf("kline %s: %w", f.name, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("kline %s %q: %w", f.name, s, err)
		}
		*f.dst = v
	}
	return nil
}
