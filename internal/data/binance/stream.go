package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"updown-bot/internal/data"
)

// DefaultStreamURL is the public combined-stream endpoint.
const DefaultStreamURL = "wss://stream.binance.com:9443/stream"

// StreamConfig configures trade stream behavior.
type StreamConfig struct {
	// URL is the combined-stream endpoint.
	URL string
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		URL:               DefaultStreamURL,
		ReconnectDelay:    time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       90 * time.Second,
	}
}

// TradeStream subscribes to the per-symbol trade streams and keeps the
// last traded price for each asset. The evaluation loop reads it as a
// fresher price source than the last candle close; a dropped stream
// reconnects with backoff and the loop degrades to candle closes
// meanwhile.
type TradeStream struct {
	config StreamConfig
	assets []string
	log    zerolog.Logger

	mu    sync.RWMutex
	last  map[string]tick
	conn  *websocket.Conn
	connM sync.Mutex

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

type tick struct {
	price float64
	at    time.Time
}

// NewTradeStream connects and starts reading trades for the given
// assets. Unknown asset keys are rejected up front.
func NewTradeStream(ctx context.Context, assets []string, config *StreamConfig, log zerolog.Logger) (*TradeStream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	for _, a := range assets {
		if _, ok := symbols[a]; !ok {
			return nil, fmt.Errorf("unknown asset: %s", a)
		}
	}

	s := &TradeStream{
		config: cfg,
		assets: assets,
		log:    log.With().Str("component", "binance_stream").Logger(),
		last:   make(map[string]tick),
		done:   make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	return s, nil
}

// Compile-time interface check.
var _ data.TickProvider = (*TradeStream)(nil)

// LastPrice returns the latest observed trade price for asset.
func (s *TradeStream) LastPrice(asset string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.last[asset]
	if !ok {
		return 0, false
	}
	return t.price, true
}

// Close stops the reader and closes the connection.
func (s *TradeStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)

	s.connM.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connM.Unlock()

	s.wg.Wait()
	return nil
}

func (s *TradeStream) connect(ctx context.Context) error {
	streams := make([]string, len(s.assets))
	for i, a := range s.assets {
		streams[i] = strings.ToLower(symbols[a]) + "@trade"
	}
	endpoint := s.config.URL + "?streams=" + strings.Join(streams, "/")

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.connM.Lock()
	s.conn = conn
	s.connM.Unlock()
	return nil
}

// streamMessage is the combined-stream envelope.
type streamMessage struct {
	Stream string `json:"stream"`
	Data   struct {
		Price     string `json:"p"`
		TradeTime int64  `json:"T"`
	} `json:"data"`
}

func (s *TradeStream) readLoop() {
	defer s.wg.Done()

	// Symbol suffix back to asset key for routing.
	byStream := make(map[string]string, len(s.assets))
	for _, a := range s.assets {
		byStream[strings.ToLower(symbols[a])+"@trade"] = a
	}

	for {
		if s.closed.Load() {
			return
		}

		s.connM.Lock()
		conn := s.conn
		s.connM.Unlock()

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.log.Warn().Err(err).Msg("read failed, reconnecting")
			if !s.reconnect() {
				return
			}
			continue
		}

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.log.Debug().Err(err).Msg("dropping unparseable message")
			continue
		}

		asset, ok := byStream[msg.Stream]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(msg.Data.Price, 64)
		if err != nil || price <= 0 {
			continue
		}

		s.mu.Lock()
		s.last[asset] = tick{price: price, at: time.UnixMilli(msg.Data.TradeTime)}
		s.mu.Unlock()
	}
}

// reconnect redials with exponential backoff until it succeeds or the
// stream is closed. Returns false when closed.
func (s *TradeStream) reconnect() bool {
	s.connM.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connM.Unlock()

	delay := s.config.ReconnectDelay
	for {
		select {
		case <-s.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.connect(ctx)
		cancel()
		if err == nil {
			s.log.Info().Msg("reconnected")
			return true
		}

		s.log.Warn().Err(err).Dur("retry_in", delay).Msg("reconnect failed")
		delay *= 2
		if delay > s.config.MaxReconnectDelay {
			delay = s.config.MaxReconnectDelay
		}
	}
}
