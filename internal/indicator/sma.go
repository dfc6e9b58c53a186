// Package indicator provides the moving-average calculations used by the
// swing detector.
package indicator

import (
	"math"

	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

// SMASeries computes a rolling simple moving average of closing prices.
// The returned slice is aligned with bars: index i holds the mean of the
// closes in [i-period+1, i]. Indexes before period-1 hold NaN since the
// window has not filled yet.
func SMASeries(bars []types.Bar, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(bars) < period {
		symbol := ""
		if len(bars) > 0 {
			symbol = bars[0].Symbol
		}

		return nil, errors.NewInsufficientBarsError(period, len(bars), symbol,
			"not enough bars to compute moving average")
	}

	values := make([]float64, len(bars))

	var sum float64

	for i, bar := range bars {
		sum += bar.Close
		if i >= period {
			sum -= bars[i-period].Close
		}

		if i >= period-1 {
			values[i] = sum / float64(period)
		} else {
			values[i] = math.NaN()
		}
	}

	return values, nil
}

// Rising reports whether the series value at index i is strictly above the
// value lookback positions earlier. Returns false when either value is NaN
// or the reference index is out of range.
func Rising(series []float64, i, lookback int) bool {
	ref := i - lookback
	if ref < 0 || i >= len(series) {
		return false
	}

	if math.IsNaN(series[i]) || math.IsNaN(series[ref]) {
		return false
	}

	return series[i] > series[ref]
}
