// Package pricestore fetches daily candles from the Upstox historical API
// and caches them in DuckDB so repeated runs never refetch a range.
package pricestore

import (
	"context"
	"time"

	"github.com/rxtech-lab/swing-trading/internal/types"
)

// Provider fetches the daily bars of one instrument over a date range,
// oldest first.
type Provider interface {
	FetchDailyBars(ctx context.Context, instrumentKey string, start time.Time, end time.Time) ([]types.Bar, error)
}
