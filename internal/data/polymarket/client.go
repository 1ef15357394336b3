// Package polymarket fetches 15-minute up/down binary markets from the
// gamma API.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"updown-bot/internal/data"
	"updown-bot/internal/domain"
)

// DefaultBaseURL is the public gamma API endpoint.
const DefaultBaseURL = "https://gamma-api.polymarket.com"

// Default configuration values.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultRate      = 5 // requests per second
	DefaultBurst     = 10
	DefaultLookahead = 4 // market windows to probe per asset

	// windowSeconds is the market duration; slugs are keyed to
	// 900-second slot boundaries.
	windowSeconds = 900
)

// Slug returns the market identifier for an asset at the slot
// containing ts: {asset}-updown-15m-{slot}.
func Slug(asset string, ts time.Time) string {
	slot := ts.Unix() / windowSeconds * windowSeconds
	return fmt.Sprintf("%s-updown-15m-%d", asset, slot)
}

// Client fetches market quotes. Requests go through a token-bucket
// rate limiter and a circuit breaker; when the breaker is open the
// evaluation loop sees an error and treats the cycle as missing
// market data.
type Client struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	lookahead int
	log       zerolog.Logger
	now       func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the gamma API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithRateLimit sets the request rate and burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLookahead sets how many upcoming market windows to probe.
func WithLookahead(n int) ClientOption {
	return func(c *Client) { c.lookahead = n }
}

// NewClient creates a new gamma API client.
func NewClient(log zerolog.Logger, opts ...ClientOption) *Client {
	st := gobreaker.Settings{Name: "polymarket"}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 5 }
	st.Timeout = 30 * time.Second

	c := &Client{
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: DefaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRate), DefaultBurst),
		breaker:   gobreaker.NewCircuitBreaker(st),
		lookahead: DefaultLookahead,
		log:       log.With().Str("component", "polymarket").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ data.QuoteProvider = (*Client)(nil)

// Markets returns quotes for the current and upcoming 15-minute
// windows of an asset, sorted by ascending end date. Windows without
// a listed market are skipped; a malformed listing is logged and
// skipped rather than defaulted.
func (c *Client) Markets(ctx context.Context, asset string) ([]domain.MarketQuote, error) {
	slot := c.now().Unix() / windowSeconds * windowSeconds

	var quotes []domain.MarketQuote
	for i := 0; i < c.lookahead; i++ {
		slug := fmt.Sprintf("%s-updown-15m-%d", asset, slot+int64(i*windowSeconds))

		quote, err := c.fetchEvent(ctx, asset, slug)
		if err != nil {
			if c.breaker.State() == gobreaker.StateOpen {
				return nil, fmt.Errorf("fetch %s: %w", slug, err)
			}
			c.log.Warn().Err(err).Str("slug", slug).Msg("skipping market window")
			continue
		}
		if quote != nil {
			quotes = append(quotes, *quote)
		}
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].EndDate.Before(quotes[j].EndDate)
	})
	return quotes, nil
}

// gammaEvent is the /events payload subset this client reads.
type gammaEvent struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Markets []struct {
		Question      string `json:"question"`
		ConditionID   string `json:"conditionId"`
		EndDate       string `json:"endDate"`
		OutcomePrices string `json:"outcomePrices"`
		ClobTokenIDs  string `json:"clobTokenIds"`
		NegRisk       bool   `json:"negRisk"`
	} `json:"markets"`
}

// fetchEvent returns the quote for one slug, nil when no market is
// listed for that window.
func (c *Client) fetchEvent(ctx context.Context, asset, slug string) (*domain.MarketQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, "/events?slug="+url.QueryEscape(slug))
	})
	if err != nil {
		return nil, err
	}

	var events []gammaEvent
	if err := json.Unmarshal(body.([]byte), &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	if len(events) == 0 || len(events[0].Markets) == 0 {
		return nil, nil
	}

	event := events[0]
	market := event.Markets[0]

	endDate, err := time.Parse(time.RFC3339, market.EndDate)
	if err != nil {
		return nil, fmt.Errorf("parse endDate %q: %w", market.EndDate, err)
	}

	quote := &domain.MarketQuote{
		Asset:       asset,
		Slug:        event.Slug,
		Question:    market.Question,
		ConditionID: market.ConditionID,
		EndDate:     endDate,
		NegRisk:     market.NegRisk,
	}

	// Prices and token ids arrive as JSON strings inside the JSON
	// payload. Absent fields leave the quote's prices nil; present but
	// malformed fields fail the whole market.
	if market.OutcomePrices != "" {
		up, down, err := parseOutcomePrices(market.OutcomePrices)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", event.Slug, err)
		}
		quote.UpCents = &up
		quote.DownCents = &down
	}
	if market.ClobTokenIDs != "" {
		upTok, downTok, err := parseTokenIDs(market.ClobTokenIDs)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", event.Slug, err)
		}
		quote.UpTokenID = upTok
		quote.DownTokenID = downTok
	}

	return quote, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
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
	return io.ReadAll(resp.Body)
}

// parseOutcomePrices decodes the embedded '["0.55","0.45"]' pair into
// cents.
func parseOutcomePrices(raw string) (up, down float64, err error) {
	var prices []string
	if err := json.Unmarshal([]byte(raw), &prices); err != nil {
		return 0, 0, fmt.Errorf("decode outcomePrices %q: %w", raw, err)
	}
	if len(prices) != 2 {
		return 0, 0, fmt.Errorf("outcomePrices has %d entries, want 2", len(prices))
	}

	vals := make([]float64, 2)
	for i, p := range prices {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("outcomePrices[%d] %q: %w", i, p, err)
		}
		if v < 0 || v > 1 {
			return 0, 0, fmt.Errorf("outcomePrices[%d] %v out of [0,1]", i, v)
		}
		vals[i] = v * 100
	}
	return vals[0], vals[1], nil
}

func parseTokenIDs(raw string) (up, down string, err error) {
	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return "", "", fmt.Errorf("decode clobTokenIds %q: %w", raw, err)
	}
	if len(tokens) != 2 {
		return "", "", fmt.Errorf("clobTokenIds has %d entries, want 2", len(tokens))
	}
	return tokens[0], tokens[1], nil
}
