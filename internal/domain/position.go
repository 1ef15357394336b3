package domain

import "time"

// Side of a binary market.
const (
	SideUp   = "UP"
	SideDown = "DOWN"
)

// Trade outcome classes.
const (
	OutcomeWin  = "WIN"
	OutcomeLoss = "LOSS"
)

// Position is one open holding, at most one per slug.
type Position struct {
	Slug          string          `json:"slug"`
	Side          string          `json:"side"`
	Size          float64         `json:"size"`          // contracts
	AvgPriceCents float64         `json:"avgPrice"`      // entry price in cents
	EntryTime     time.Time       `json:"entryTime"`
	ExternalRef   string          `json:"externalRef"`   // order id / tx hash from the executor
	Signals       *SignalSnapshot `json:"signals,omitempty"`
}

// Cost is the dollar amount spent to open the position.
func (p Position) Cost() float64 {
	return p.Size * p.AvgPriceCents / 100
}

// ClosedTrade is the immutable record appended when a position exits.
type ClosedTrade struct {
	Slug            string    `json:"slug"`
	Side            string    `json:"side"`
	EntryPriceCents float64   `json:"entryPrice"`
	ExitPriceCents  float64   `json:"exitPrice"`
	Size            float64   `json:"size"`
	Pnl             float64   `json:"pnl"`
	Outcome         string    `json:"outcome"`
	Timestamp       time.Time `json:"timestamp"`
}

// LedgerState is the full persisted ledger document, rewritten after
// every mutation. Invariant: TotalPnl equals the sum of closed trade PnL.
type LedgerState struct {
	Positions    map[string]Position `json:"positions"`
	ClosedTrades []ClosedTrade       `json:"closedTrades"`
	TotalPnl     float64             `json:"totalPnl"`
	StartTime    *time.Time          `json:"startTime,omitempty"`
	LastUpdate   *time.Time          `json:"lastUpdate,omitempty"`
}

// NewLedgerState returns the empty default state.
func NewLedgerState() *LedgerState {
	return &LedgerState{Positions: make(map[string]Position)}
}

// Journal record types.
const (
	JournalEntry = "ENTRY"
	JournalExit  = "EXIT"
)

// JournalRecord is one line of the append-only trade journal. ENTRY
// records carry the signal snapshot for later analysis; EXIT records
// carry realized PnL and outcome.
type JournalRecord struct {
	Type            string          `json:"type"` // ENTRY or EXIT
	Timestamp       time.Time       `json:"timestamp"`
	Slug            string          `json:"slug"`
	Side            string          `json:"side"`
	Size            float64         `json:"size"`
	PriceCents      float64         `json:"price"`
	ExternalRef     string          `json:"externalRef,omitempty"`
	Signals         *SignalSnapshot `json:"signals,omitempty"`
	EntryPriceCents float64         `json:"entryPrice,omitempty"`
	ExitPriceCents  float64         `json:"exitPrice,omitempty"`
	Pnl             float64         `json:"pnl,omitempty"`
	Outcome         string          `json:"outcome,omitempty"`
}
