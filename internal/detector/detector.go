// Package detector scans daily price history for pullback-to-support
// breakout setups and emits candidate swing-trade signals.
package detector

import (
	"math"

	"github.com/rxtech-lab/swing-trading/internal/indicator"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/utils"
)

// targetRiskMultiple fixes the reward-to-risk ratio of emitted signals at 2:1.
const targetRiskMultiple = 2.0

// Detector walks a chronologically sorted bar series and produces signals in
// ascending date order. It is a pure function of its inputs: identical bar
// sequences always yield identical signal sequences.
type Detector struct {
	config Config
}

// NewDetector creates a detector with a validated configuration.
func NewDetector(config Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Detector{config: config}, nil
}

// Detect scans bars for qualifying setups. bars must be sorted by ascending
// time with no duplicate dates. The scan stops one bar short of the series
// end because every signal needs the next bar's breakout confirmation.
func (d *Detector) Detect(symbol string, instrumentKey string, bars []types.Bar) ([]types.Signal, error) {
	cfg := d.config

	slowMA, err := indicator.SMASeries(bars, cfg.MAPeriod)
	if err != nil {
		return nil, err
	}

	var fastMA []float64

	if cfg.FastMAPeriod.IsSome() {
		fastMA, err = indicator.SMASeries(bars, cfg.FastMAPeriod.Unwrap())
		if err != nil {
			return nil, err
		}
	}

	start := cfg.MAPeriod - 1 + cfg.TouchWindow
	if cfg.TrendLookback > cfg.TouchWindow {
		start = cfg.MAPeriod - 1 + cfg.TrendLookback
	}

	var signals []types.Signal

	for i := start; i < len(bars)-1; i++ {
		today := bars[i]
		prev := bars[i-1]
		next := bars[i+1]

		if !d.trendRising(slowMA, fastMA, i) {
			continue
		}

		if !d.touchedSupport(bars, slowMA, i) {
			continue
		}

		// The candle itself must resume the uptrend: positive body closing
		// above the moving average.
		if !today.IsBullish() || today.Close <= slowMA[i] {
			continue
		}

		// Breakout confirmation: the next bar must trade through today's
		// high by the configured margin before the signal is emitted.
		if next.High <= today.High*(1+cfg.BreakoutMargin) {
			continue
		}

		entryPrice := utils.RoundTo2(today.High * (1 + cfg.BreakoutMargin))
		stopLoss := utils.RoundTo2(math.Min(prev.Low, today.Low))

		risk := entryPrice - stopLoss
		if risk <= 0 {
			continue
		}

		signals = append(signals, types.Signal{
			Symbol:        symbol,
			InstrumentKey: instrumentKey,
			SignalDate:    today.Time,
			EntryDate:     next.Time,
			EntryPrice:    entryPrice,
			StopLoss:      stopLoss,
			Target:        utils.RoundTo2(entryPrice + targetRiskMultiple*risk),
		})
	}

	return signals, nil
}

// trendRising applies the configured trend filter at index i.
func (d *Detector) trendRising(slowMA, fastMA []float64, i int) bool {
	cfg := d.config

	if cfg.FastMAPeriod.IsNone() {
		return indicator.Rising(slowMA, i, cfg.TrendLookback)
	}

	if math.IsNaN(fastMA[i]) || math.IsNaN(slowMA[i]) || fastMA[i] <= slowMA[i] {
		return false
	}

	return indicator.Rising(fastMA, i, cfg.TrendLookback) &&
		indicator.Rising(slowMA, i, cfg.TrendLookback)
}

// touchedSupport scans the trailing touch window for a bar whose intraday
// range brackets its own moving-average value within the tolerance band.
// This anchors the setup to a pullback-to-support pattern rather than a
// random breakout.
func (d *Detector) touchedSupport(bars []types.Bar, slowMA []float64, i int) bool {
	cfg := d.config

	for j := i - cfg.TouchWindow; j < i; j++ {
		if math.IsNaN(slowMA[j]) {
			continue
		}

		if bars[j].Low <= slowMA[j]*(1+cfg.SupportTolerance) &&
			bars[j].High >= slowMA[j]*(1-cfg.SupportTolerance) {
			return true
		}
	}

	return false
}
