package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"updown-bot/internal/domain"
)

// DefaultDataAPIURL is the public positions endpoint.
const DefaultDataAPIURL = "https://data-api.polymarket.com"

// PositionSettler reads the wallet's positions from the data API and
// matches them against the ledger's open positions. A position whose
// token trades at 1.0 has won and pays $1 per contract; an open
// position whose market window has expired and whose token trades at
// 0 has lost. On-chain redemption of the payout is outside this
// component.
type PositionSettler struct {
	baseURL string
	wallet  string
	client  *http.Client
	log     zerolog.Logger
	now     func() time.Time
}

// SettlerOption configures PositionSettler.
type SettlerOption func(*PositionSettler)

// WithDataAPIURL overrides the data API endpoint.
func WithDataAPIURL(u string) SettlerOption {
	return func(s *PositionSettler) { s.baseURL = u }
}

// WithSettlerHTTPClient sets a custom http.Client.
func WithSettlerHTTPClient(c *http.Client) SettlerOption {
	return func(s *PositionSettler) { s.client = c }
}

// NewPositionSettler creates a settler for the given wallet address.
func NewPositionSettler(wallet string, log zerolog.Logger, opts ...SettlerOption) *PositionSettler {
	s := &PositionSettler{
		baseURL: DefaultDataAPIURL,
		wallet:  wallet,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("component", "settler").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ Settler = (*PositionSettler)(nil)

// apiPosition is the data API payload subset this settler reads.
type apiPosition struct {
	Slug     string  `json:"slug"`
	CurPrice float64 `json:"curPrice"`
	Size     float64 `json:"size"`
}

// ResolvedPositions reports which open positions have resolved.
func (s *PositionSettler) ResolvedPositions(ctx context.Context, open map[string]domain.Position) ([]Settlement, error) {
	if len(open) == 0 {
		return nil, nil
	}

	endpoint := s.baseURL + "/positions?user=" + url.QueryEscape(s.wallet)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var positions []apiPosition
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}

	bySlug := make(map[string]apiPosition, len(positions))
	for _, p := range positions {
		bySlug[p.Slug] = p
	}

	var resolved []Settlement
	for slug, pos := range open {
		api, seen := bySlug[slug]
		switch {
		case seen && api.CurPrice == 1.0 && api.Size > 0:
			resolved = append(resolved, Settlement{
				Slug:      slug,
				Outcome:   domain.OutcomeWin,
				PayoutUsd: pos.Size,
			})
		case s.marketExpired(slug) && (!seen || api.CurPrice == 0):
			resolved = append(resolved, Settlement{
				Slug:    slug,
				Outcome: domain.OutcomeLoss,
			})
		}
	}
	return resolved, nil
}

// marketExpired reports whether the slug's 15-minute window has ended,
// with a grace period for the venue to publish resolution.
func (s *PositionSettler) marketExpired(slug string) bool {
	idx := strings.LastIndex(slug, "-")
	if idx < 0 {
		return false
	}
	slot, err := strconv.ParseInt(slug[idx+1:], 10, 64)
	if err != nil {
		return false
	}
	end := time.Unix(slot+900, 0)
	return s.now().After(end.Add(2 * time.Minute))
}
