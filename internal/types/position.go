package types

import "time"

type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "OPEN"
	PositionStatusClosed PositionStatus = "CLOSED"
)

// Position is one open trade owned by the simulation driver.
// At most one OPEN position exists per symbol at any time; the invariant is
// enforced at open-time by the driver.
type Position struct {
	Symbol        string         `yaml:"symbol" json:"symbol" csv:"symbol"`
	InstrumentKey string         `yaml:"instrument_key" json:"instrument_key" csv:"instrument_key"`
	EntryDate     time.Time      `yaml:"entry_date" json:"entry_date" csv:"entry_date"`
	EntryPrice    float64        `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	StopLoss      float64        `yaml:"stop_loss" json:"stop_loss" csv:"stop_loss"`
	Target        float64        `yaml:"target" json:"target" csv:"target"`
	Quantity      int            `yaml:"quantity" json:"quantity" csv:"quantity"`
	TargetHit     bool           `yaml:"target_hit" json:"target_hit" csv:"target_hit"`
	Status        PositionStatus `yaml:"status" json:"status" csv:"status"`
}

// DaysHeld returns the whole calendar days between entry and the given date.
func (p Position) DaysHeld(today time.Time) int {
	return int(today.Sub(p.EntryDate).Hours() / 24)
}

// NewPositionFromSignal creates an OPEN position from an accepted signal.
func NewPositionFromSignal(signal Signal, quantity int) Position {
	return Position{
		Symbol:        signal.Symbol,
		InstrumentKey: signal.InstrumentKey,
		EntryDate:     signal.EntryDate,
		EntryPrice:    signal.EntryPrice,
		StopLoss:      signal.StopLoss,
		Target:        signal.Target,
		Quantity:      quantity,
		TargetHit:     false,
		Status:        PositionStatusOpen,
	}
}
