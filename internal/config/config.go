// Package config loads bot configuration from YAML with defaults
// matching the reference deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration.
type Config struct {
	// Assets are the asset keys to evaluate each cycle.
	Assets []string `yaml:"assets"`
	// PollInterval is the evaluation cycle period.
	PollInterval time.Duration `yaml:"poll_interval"`
	// WindowMinutes is the market duration.
	WindowMinutes float64 `yaml:"window_minutes"`
	// CandleLimit is how many 1-minute bars to fetch per evaluation.
	CandleLimit int `yaml:"candle_limit"`

	TA         TAConfig         `yaml:"ta"`
	Trading    TradingConfig    `yaml:"trading"`
	Settlement SettlementConfig `yaml:"settlement"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`

	LogLevel string `yaml:"log_level"`
}

// TAConfig holds technical analysis periods.
type TAConfig struct {
	RSIPeriod         int `yaml:"rsi_period"`
	MACDFast          int `yaml:"macd_fast"`
	MACDSlow          int `yaml:"macd_slow"`
	MACDSignal        int `yaml:"macd_signal"`
	VWAPSlopeLookback int `yaml:"vwap_slope_lookback"`
}

// TradingConfig holds entry sizing and risk limits.
type TradingConfig struct {
	// AutoTrade gates order submission; false evaluates and logs only.
	AutoTrade bool `yaml:"auto_trade"`
	// MinEdge is the base edge threshold, scaled per phase.
	MinEdge float64 `yaml:"min_edge"`
	// MaxPositionUsd caps a single entry.
	MaxPositionUsd float64 `yaml:"max_position_usd"`
	// MaxTotalExposureUsd caps the summed cost of open positions.
	MaxTotalExposureUsd float64 `yaml:"max_total_exposure_usd"`
	// KellyFraction scales the Kelly-derived size.
	KellyFraction float64 `yaml:"kelly_fraction"`
	// BankrollUsd is the session's starting balance for sizing.
	BankrollUsd float64 `yaml:"bankroll_usd"`
}

// SettlementConfig controls the resolved-position sweep.
type SettlementConfig struct {
	// SweepEveryCycles is how many evaluation cycles pass between
	// settlement checks.
	SweepEveryCycles int `yaml:"sweep_every_cycles"`
	// Wallet is the address whose positions the settler reads.
	Wallet string `yaml:"wallet"`
}

// StorageConfig selects the persistence backends.
type StorageConfig struct {
	StateFile   string `yaml:"state_file"`
	JournalFile string `yaml:"journal_file"`
	// PostgresDSN, when set, replaces the file-backed snapshot and
	// journal stores.
	PostgresDSN string `yaml:"postgres_dsn"`
	// ClickhouseDSN, when set, enables the evaluation archive.
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// MetricsConfig configures the metrics/health HTTP server.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration matching the reference deployment.
func Default() *Config {
	return &Config{
		Assets:        []string{"btc", "eth", "sol", "xrp"},
		PollInterval:  5 * time.Second,
		WindowMinutes: 15,
		CandleLimit:   100,
		TA: TAConfig{
			RSIPeriod:         14,
			MACDFast:          12,
			MACDSlow:          26,
			MACDSignal:        9,
			VWAPSlopeLookback: 5,
		},
		Trading: TradingConfig{
			AutoTrade:           false,
			MinEdge:             0.05,
			MaxPositionUsd:      30,
			MaxTotalExposureUsd: 150,
			KellyFraction:       0.25,
			BankrollUsd:         150,
		},
		Settlement: SettlementConfig{
			SweepEveryCycles: 60,
		},
		Storage: StorageConfig{
			StateFile:   "./data/state.json",
			JournalFile: "./data/trades.jsonl",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the loop cannot run with.
func (c *Config) Validate() error {
	if len(c.Assets) == 0 {
		return fmt.Errorf("config: no assets")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive")
	}
	if c.WindowMinutes <= 0 {
		return fmt.Errorf("config: window_minutes must be positive")
	}
	if c.CandleLimit < c.TA.MACDSlow+c.TA.MACDSignal {
		return fmt.Errorf("config: candle_limit %d below macd_slow+macd_signal %d",
			c.CandleLimit, c.TA.MACDSlow+c.TA.MACDSignal)
	}
	if c.Trading.MinEdge < 0 || c.Trading.MinEdge >= 1 {
		return fmt.Errorf("config: min_edge %v outside [0,1)", c.Trading.MinEdge)
	}
	if c.Trading.MaxPositionUsd <= 0 || c.Trading.MaxTotalExposureUsd <= 0 {
		return fmt.Errorf("config: position limits must be positive")
	}
	if c.Trading.KellyFraction <= 0 || c.Trading.KellyFraction > 1 {
		return fmt.Errorf("config: kelly_fraction %v outside (0,1]", c.Trading.KellyFraction)
	}
	if c.Settlement.SweepEveryCycles <= 0 {
		return fmt.Errorf("config: sweep_every_cycles must be positive")
	}
	return nil
}
