// Package main runs the live evaluation loop: fetch candles and market
// quotes, score direction, compare against market-implied odds, and
// optionally enter positions through the paper executor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"updown-bot/internal/config"
	"updown-bot/internal/data/binance"
	"updown-bot/internal/data/polymarket"
	"updown-bot/internal/execution"
	"updown-bot/internal/ledger"
	"updown-bot/internal/observability"
	"updown-bot/internal/storage"
	chstore "updown-bot/internal/storage/clickhouse"
	filestore "updown-bot/internal/storage/file"
	"updown-bot/internal/storage/memory"
	"updown-bot/internal/storage/migrations"
	pgstore "updown-bot/internal/storage/postgres"
	"updown-bot/internal/trader"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	assets := flag.String("assets", "", "Comma-separated assets to trade (overrides config)")
	autoTrade := flag.Bool("auto-trade", false, "Enable order submission (default observes only)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of files or PostgreSQL")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the ledger (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for evaluation archiving (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides config, empty uses config)")
	wallet := flag.String("wallet", "", "Wallet address for settlement sweeps (overrides config)")
	noStream := flag.Bool("no-stream", false, "Disable the live trade price stream")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *assets, *autoTrade, *postgresDSN, *clickhouseDSN, *metricsAddr, *wallet, *logLevel)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Second signal or a stalled shutdown forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		select {
		case <-sigCh:
			logger.Warn().Msg("second signal, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("shutdown timed out, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	metrics := observability.NewMetrics("")
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	deps, cleanup, err := buildDeps(ctx, cfg, *useMemory, *noStream, metrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer cleanup()

	logger.Info().
		Strs("assets", cfg.Assets).
		Bool("auto_trade", cfg.Trading.AutoTrade).
		Dur("poll_interval", cfg.PollInterval).
		Msg("starting evaluation loop")

	err = trader.New(cfg, deps, logger).Run(ctx)
	close(done)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("trader stopped")
	}
	logger.Info().Msg("shutdown complete")
}

// applyFlagOverrides lets flags win over the config file for the
// settings that change between runs.
func applyFlagOverrides(cfg *config.Config, assets string, autoTrade bool, postgresDSN, clickhouseDSN, metricsAddr, wallet, logLevel string) {
	if assets != "" {
		cfg.Assets = cfg.Assets[:0]
		for _, a := range strings.Split(assets, ",") {
			if a = strings.TrimSpace(strings.ToLower(a)); a != "" {
				cfg.Assets = append(cfg.Assets, a)
			}
		}
	}
	if autoTrade {
		cfg.Trading.AutoTrade = true
	}
	if postgresDSN != "" {
		cfg.Storage.PostgresDSN = postgresDSN
	}
	if clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = clickhouseDSN
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if wallet != "" {
		cfg.Settlement.Wallet = wallet
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

// buildDeps wires providers, stores and the ledger. The returned
// cleanup closes connections and the trade stream.
func buildDeps(ctx context.Context, cfg *config.Config, useMemory, noStream bool, metrics *observability.Metrics, logger zerolog.Logger) (trader.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var snapshot storage.SnapshotStore
	var journal storage.JournalStore
	switch {
	case useMemory:
		snapshot = memory.NewSnapshotStore()
		journal = memory.NewJournalStore()
	case cfg.Storage.PostgresDSN != "":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return trader.Deps{}, cleanup, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return trader.Deps{}, cleanup, fmt.Errorf("postgres migrations: %w", err)
		}
		snapshot = pgstore.NewSnapshotStore(pool)
		journal = pgstore.NewJournalStore(pool)
	default:
		snapshot = filestore.NewSnapshotStore(cfg.Storage.StateFile)
		journal = filestore.NewJournalStore(cfg.Storage.JournalFile)
	}

	var evals storage.EvaluationStore
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return trader.Deps{}, cleanup, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		evals = chstore.NewEvaluationStore(conn, 50)
	}

	deps := trader.Deps{
		Candles:  binance.NewClient(),
		Quotes:   polymarket.NewClient(logger),
		Executor: execution.NewPaperExecutor(logger),
		Ledger:   ledger.New(ctx, snapshot, journal, logger),
		Evals:    evals,
		Metrics:  metrics,
	}
	if cfg.Settlement.Wallet != "" {
		deps.Settler = execution.NewPositionSettler(cfg.Settlement.Wallet, logger)
	}
	if !noStream {
		stream, err := binance.NewTradeStream(ctx, cfg.Assets, nil, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("trade stream unavailable, falling back to candle closes")
		} else {
			closers = append(closers, func() { stream.Close() })
			deps.Ticks = stream
		}
	}
	return deps, cleanup, nil
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
