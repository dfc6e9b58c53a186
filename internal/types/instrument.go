package types

// Instrument pairs a trading symbol with its exchange-scoped instrument key.
type Instrument struct {
	Symbol        string `yaml:"symbol" json:"symbol" csv:"symbol"`
	InstrumentKey string `yaml:"instrument_key" json:"instrument_key" csv:"instrument_key"`
}
