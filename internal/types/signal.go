package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

// Signal is a candidate swing-trade setup emitted by the detector.
// Signals are immutable once produced. EntryDate is the next trading day
// after SignalDate, and StopLoss < EntryPrice < Target holds by construction.
type Signal struct {
	Symbol        string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	InstrumentKey string    `yaml:"instrument_key" json:"instrument_key" csv:"instrument_key" validate:"required"`
	SignalDate    time.Time `yaml:"signal_date" json:"signal_date" csv:"signal_date" validate:"required"`
	EntryDate     time.Time `yaml:"entry_date" json:"entry_date" csv:"entry_date" validate:"required,gtfield=SignalDate"`
	EntryPrice    float64   `yaml:"entry_price" json:"entry_price" csv:"entry_price" validate:"required,gt=0,gtfield=StopLoss"`
	StopLoss      float64   `yaml:"stop_loss" json:"stop_loss" csv:"stop_loss" validate:"required,gt=0"`
	Target        float64   `yaml:"target" json:"target" csv:"target" validate:"required,gtfield=EntryPrice"`
}

// RiskPerShare returns the per-share risk between entry and stop.
func (s Signal) RiskPerShare() float64 {
	return s.EntryPrice - s.StopLoss
}

// Validate validates the Signal struct.
func (s *Signal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid signal", err)
	}

	return nil
}
