// Package trader runs the evaluation loop: candles and quotes in,
// decisions out, ledger mutations only after a confirmed fill.
package trader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"updown-bot/internal/config"
	"updown-bot/internal/data"
	"updown-bot/internal/domain"
	"updown-bot/internal/engine"
	"updown-bot/internal/execution"
	"updown-bot/internal/ledger"
	"updown-bot/internal/observability"
	"updown-bot/internal/storage"
)

// minTradeUsd is the smallest order worth submitting.
const minTradeUsd = 5

// minBankrollUsd gates trading entirely when the balance is too small
// to size anything meaningful.
const minBankrollUsd = 10

// Deps wires the trader's collaborators. Ticks, Settler, Evals and
// Metrics are optional; the loop degrades without them.
type Deps struct {
	Candles  data.CandleProvider
	Ticks    data.TickProvider
	Quotes   data.QuoteProvider
	Executor execution.Executor
	Settler  execution.Settler
	Ledger   *ledger.Ledger
	Evals    storage.EvaluationStore
	Metrics  *observability.Metrics
}

// Trader evaluates every configured asset once per poll interval.
type Trader struct {
	cfg  *config.Config
	deps Deps
	log  zerolog.Logger
	now  func() time.Time

	cycles int
}

// New creates a Trader.
func New(cfg *config.Config, deps Deps, log zerolog.Logger) *Trader {
	return &Trader{
		cfg:  cfg,
		deps: deps,
		log:  log.With().Str("component", "trader").Logger(),
		now:  time.Now,
	}
}

// Run evaluates immediately and then on every poll tick until the
// context is canceled. Buffered evaluation records are flushed on the
// way out.
func (t *Trader) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	t.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			if t.deps.Evals != nil {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := t.deps.Evals.Flush(flushCtx); err != nil {
					t.log.Error().Err(err).Msg("final evaluation flush failed")
				}
				cancel()
			}
			return ctx.Err()
		case <-ticker.C:
			t.runCycle(ctx)
		}
	}
}

// runCycle evaluates all assets concurrently, then updates session
// gauges and periodically sweeps settlements.
func (t *Trader) runCycle(ctx context.Context) {
	var wg sync.WaitGroup
	for _, asset := range t.cfg.Assets {
		wg.Add(1)
		go func(asset string) {
			defer wg.Done()
			t.evaluateAsset(ctx, asset)
		}(asset)
	}
	wg.Wait()

	t.cycles++
	if t.deps.Settler != nil && t.cycles%t.cfg.Settlement.SweepEveryCycles == 0 {
		t.sweepSettlements(ctx)
	}

	if m := t.deps.Metrics; m != nil {
		stats := t.deps.Ledger.Stats()
		m.CyclesTotal.Inc()
		m.TotalPnlUsd.Set(stats.TotalPnl)
		m.OpenPositions.Set(float64(stats.OpenPositions))
		m.ExposureUsd.Set(t.deps.Ledger.TotalExposure())
		m.LastSuccessfulCycle.SetToCurrentTime()
	}
}

// evaluateAsset fetches data for one asset and evaluates each of its
// open market windows. Provider failures skip the asset for this
// cycle only.
func (t *Trader) evaluateAsset(ctx context.Context, asset string) {
	log := t.log.With().Str("asset", asset).Logger()

	start := t.now()
	candles, err := t.deps.Candles.Candles(ctx, asset, t.cfg.CandleLimit)
	if err != nil {
		t.providerError("binance", log, err)
		return
	}
	markets, err := t.deps.Quotes.Markets(ctx, asset)
	if err != nil {
		t.providerError("polymarket", log, err)
		return
	}
	if m := t.deps.Metrics; m != nil {
		m.ProviderLatency.WithLabelValues("fetch").Observe(t.now().Sub(start).Seconds())
	}
	if len(candles) == 0 || len(markets) == 0 {
		log.Debug().Msg("no data this cycle")
		return
	}

	var tick *float64
	if t.deps.Ticks != nil {
		if price, ok := t.deps.Ticks.LastPrice(asset); ok {
			tick = &price
		}
	}

	snap, haColor, haCount := buildSnapshot(candles, t.cfg.TA, tick)
	score := engine.ScoreDirection(engine.FromSnapshot(snap, haColor, haCount, false))

	for _, market := range markets {
		t.evaluateMarket(ctx, log, asset, market, snap, score)
	}
}

// evaluateMarket decides one market window. A panic here is contained
// to this market and cycle.
func (t *Trader) evaluateMarket(ctx context.Context, log zerolog.Logger, asset string, market domain.MarketQuote, snap *domain.IndicatorSnapshot, score engine.Score) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("slug", market.Slug).Msg("market evaluation panicked")
		}
	}()

	start := t.now()
	timing := domain.TimeRemaining(market.EndDate, t.now())
	if timing.Expired {
		return
	}

	aware := engine.ApplyTimeDecay(score.RawUp, timing.RemainingMinutes, t.cfg.WindowMinutes)
	edge := engine.ComputeEdge(aware.AdjustedUp, aware.AdjustedDown, market.UpCents, market.DownCents)
	decision := engine.Decide(engine.DecisionInput{
		RemainingMinutes: timing.RemainingMinutes,
		EdgeUp:           edge.EdgeUp,
		EdgeDown:         edge.EdgeDown,
		ModelUp:          &aware.AdjustedUp,
		ModelDown:        &aware.AdjustedDown,
	})

	log.Debug().
		Str("slug", market.Slug).
		Str("action", decision.Action).
		Str("phase", decision.Phase).
		Str("reason", decision.Reason).
		Float64("remaining_min", timing.RemainingMinutes).
		Msg("evaluated")

	if m := t.deps.Metrics; m != nil {
		m.MarketsEvaluated.WithLabelValues(asset).Inc()
		m.DecisionsTotal.WithLabelValues(decision.Action, decision.Phase).Inc()
		m.EvaluationDuration.WithLabelValues(asset).Observe(t.now().Sub(start).Seconds())
		if edge.EdgeUp != nil && edge.EdgeDown != nil {
			m.ModelEdge.WithLabelValues(asset).Set(max(*edge.EdgeUp, *edge.EdgeDown))
		}
	}

	t.archiveEvaluation(ctx, asset, market, snap, score, aware, edge, timing, decision)

	if decision.Action == engine.ActionEnter {
		t.maybeEnter(ctx, log, market, snap, aware, timing, decision)
	}
}

// maybeEnter sizes and submits the order, recording the entry only
// after the executor confirms the fill.
func (t *Trader) maybeEnter(ctx context.Context, log zerolog.Logger, market domain.MarketQuote, snap *domain.IndicatorSnapshot, aware engine.TimeAware, timing domain.Timing, decision engine.Decision) {
	if !t.cfg.Trading.AutoTrade {
		return
	}
	if t.deps.Ledger.HasPosition(market.Slug) {
		return
	}
	if *decision.Edge < t.cfg.Trading.MinEdge {
		return
	}

	bankroll := t.cfg.Trading.BankrollUsd + t.deps.Ledger.Stats().TotalPnl
	if bankroll <= minBankrollUsd {
		log.Warn().Float64("bankroll", bankroll).Msg("bankroll too low to trade")
		return
	}

	sizeUsd := t.positionSize(bankroll, *decision.Edge)
	if sizeUsd < minTradeUsd {
		return
	}
	if t.deps.Ledger.TotalExposure()+sizeUsd > t.cfg.Trading.MaxTotalExposureUsd {
		log.Warn().Str("slug", market.Slug).Msg("exposure cap reached, skipping entry")
		return
	}

	tokenID, price := market.UpTokenID, market.UpCents
	modelProb := aware.AdjustedUp
	if decision.Side == domain.SideDown {
		tokenID, price = market.DownTokenID, market.DownCents
		modelProb = aware.AdjustedDown
	}
	if tokenID == "" || price == nil {
		log.Warn().Str("slug", market.Slug).Msg("market missing token or price, skipping entry")
		return
	}

	remaining := timing.RemainingMinutes
	signals := snap.Reduce(&modelProb, decision.Edge, &remaining)

	result, err := t.deps.Executor.Execute(ctx, execution.TradeIntent{
		TokenID:    tokenID,
		Side:       "BUY",
		SizeUsd:    sizeUsd,
		PriceCents: *price,
		Slug:       market.Slug,
		Outcome:    decision.Side,
		Signals:    signals,
	})
	if err != nil {
		t.providerError("executor", log, err)
		return
	}
	if !result.Success {
		log.Warn().Str("slug", market.Slug).Str("error", result.Error).Msg("order rejected")
		return
	}

	err = t.deps.Ledger.RecordEntry(ctx, market.Slug, decision.Side, result.FilledSize, result.FilledPriceCents, result.OrderID, signals)
	switch {
	case err == nil:
		if m := t.deps.Metrics; m != nil {
			m.EntriesTotal.WithLabelValues(decision.Side).Inc()
		}
	case errors.Is(err, storage.ErrDuplicatePosition):
		log.Debug().Str("slug", market.Slug).Msg("entry raced an existing position")
	default:
		log.Error().Err(err).Str("slug", market.Slug).Msg("record entry failed")
	}
}

// positionSize is fractional Kelly scaled by edge, split across the
// configured assets and capped per position.
func (t *Trader) positionSize(bankroll, edge float64) float64 {
	perAsset := t.cfg.Trading.MaxPositionUsd / float64(len(t.cfg.Assets))
	kelly := bankroll * t.cfg.Trading.KellyFraction * edge * 10
	if kelly < perAsset {
		return kelly
	}
	return perAsset
}

// sweepSettlements closes resolved positions at the venue's payout.
func (t *Trader) sweepSettlements(ctx context.Context) {
	open := t.deps.Ledger.AllPositions()
	resolved, err := t.deps.Settler.ResolvedPositions(ctx, open)
	if err != nil {
		t.providerError("settler", t.log, err)
		return
	}

	for _, s := range resolved {
		pos, ok := open[s.Slug]
		if !ok {
			continue
		}

		exitCents := 0.0
		if s.Outcome == domain.OutcomeWin {
			exitCents = 100
		}
		pnl := s.PayoutUsd - pos.Cost()
		t.deps.Ledger.RecordExit(ctx, s.Slug, exitCents, pnl, s.Outcome)
		if m := t.deps.Metrics; m != nil {
			m.ExitsTotal.WithLabelValues(s.Outcome).Inc()
		}
	}
}

func (t *Trader) archiveEvaluation(ctx context.Context, asset string, market domain.MarketQuote, snap *domain.IndicatorSnapshot, score engine.Score, aware engine.TimeAware, edge engine.EdgeResult, timing domain.Timing, decision engine.Decision) {
	if t.deps.Evals == nil {
		return
	}

	rec := &storage.EvaluationRecord{
		Timestamp:        t.now(),
		Asset:            asset,
		Slug:             market.Slug,
		Price:            snap.Price,
		VWAP:             snap.VWAP,
		RSI:              snap.RSI,
		RawUp:            score.RawUp,
		AdjustedUp:       aware.AdjustedUp,
		MarketUp:         edge.MarketUp,
		EdgeUp:           edge.EdgeUp,
		EdgeDown:         edge.EdgeDown,
		RemainingMinutes: timing.RemainingMinutes,
		Phase:            decision.Phase,
		Action:           decision.Action,
		Side:             decision.Side,
		Reason:           decision.Reason,
	}
	if snap.MACD != nil {
		h := snap.MACD.Hist
		rec.MACDHist = &h
	}

	if err := t.deps.Evals.Archive(ctx, []*storage.EvaluationRecord{rec}); err != nil {
		t.log.Error().Err(err).Msg("evaluation archive failed")
	}
}

func (t *Trader) providerError(provider string, log zerolog.Logger, err error) {
	log.Warn().Err(err).Str("provider", provider).Msg("provider failure, skipping this cycle")
	if m := t.deps.Metrics; m != nil {
		m.ProviderErrors.WithLabelValues(provider).Inc()
	}
}
