package types

import "time"

// Bar represents a single daily OHLCV candle for one instrument.
// Bars are immutable and ordered by strictly increasing time within a series.
type Bar struct {
	// InstrumentKey is the exchange-scoped instrument identifier, e.g. "NSE_EQ|INE002A01018".
	InstrumentKey string `yaml:"instrument_key" json:"instrument_key" csv:"instrument_key"`
	// Symbol is the human-readable trading symbol, e.g. "RELIANCE".
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// IsBullish reports whether the bar closed above its open.
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}
