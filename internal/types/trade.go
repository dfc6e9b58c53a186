package types

import "time"

// ExitReason identifies the rule that closed a position.
type ExitReason string

const (
	// ExitReasonStopLoss means the day's low touched the stop.
	ExitReasonStopLoss ExitReason = "STOP_LOSS"
	// ExitReasonTarget means the day's high touched the target.
	ExitReasonTarget ExitReason = "TARGET"
	// ExitReasonNoTarget means the position aged out without reaching target.
	ExitReasonNoTarget ExitReason = "NO_TARGET"
	// ExitReasonMaxHold means the unconditional holding cap was reached.
	ExitReasonMaxHold ExitReason = "MAX_HOLD"
	// ExitReasonEndOfRun means the position was force-closed at the simulation horizon.
	ExitReasonEndOfRun ExitReason = "EOD_EXIT"
)

// TradeRecord is the immutable ledger entry created exactly once when a
// position transitions to CLOSED.
type TradeRecord struct {
	ID          string     `yaml:"id" json:"id" csv:"id"`
	Symbol      string     `yaml:"symbol" json:"symbol" csv:"symbol"`
	EntryDate   time.Time  `yaml:"entry_date" json:"entry_date" csv:"entry_date"`
	ExitDate    time.Time  `yaml:"exit_date" json:"exit_date" csv:"exit_date"`
	EntryPrice  float64    `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice   float64    `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	Quantity    int        `yaml:"quantity" json:"quantity" csv:"quantity"`
	ExitReason  ExitReason `yaml:"exit_reason" json:"exit_reason" csv:"exit_reason"`
	Charges     float64    `yaml:"charges" json:"charges" csv:"charges"`
	PnL         float64    `yaml:"pnl" json:"pnl" csv:"pnl"`
	HoldingDays int        `yaml:"holding_days" json:"holding_days" csv:"holding_days"`
}

// IsWinner reports whether the trade closed with positive P&L.
func (t TradeRecord) IsWinner() bool {
	return t.PnL > 0
}
