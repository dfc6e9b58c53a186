package pricestore

import (
	"context"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

const upstoxBaseURL = "https://api.upstox.com"

// upstoxResponse is the historical-candle payload. Each candle is a
// positional array: timestamp, open, high, low, close, volume, open
// interest.
type upstoxResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]any `json:"candles"`
	} `json:"data"`
}

// UpstoxProvider fetches daily candles from the Upstox v3 historical API.
// The endpoint serves candles newest first; bars are returned oldest first.
type UpstoxProvider struct {
	client *resty.Client
	logger *logger.Logger
}

// NewUpstoxProvider builds a provider against the public Upstox API. The
// access token is optional; historical candles are served without one.
func NewUpstoxProvider(accessToken string, log *logger.Logger) *UpstoxProvider {
	client := resty.New().
		SetBaseURL(upstoxBaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}

	return &UpstoxProvider{
		client: client,
		logger: log,
	}
}

// newUpstoxProviderWithBaseURL is used by tests to point at a local server.
func newUpstoxProviderWithBaseURL(baseURL string, log *logger.Logger) *UpstoxProvider {
	provider := NewUpstoxProvider("", log)
	provider.client.SetBaseURL(baseURL)

	return provider
}

// FetchDailyBars implements Provider.
func (p *UpstoxProvider) FetchDailyBars(ctx context.Context, instrumentKey string, start time.Time, end time.Time) ([]types.Bar, error) {
	if end.Before(start) {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var result upstoxResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"instrumentKey": instrumentKey,
			"to":            end.Format("2006-01-02"),
			"from":          start.Format("2006-01-02"),
		}).
		SetResult(&result).
		Get("/v3/historical-candle/{instrumentKey}/days/1/{to}/{from}")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFetchFailed, err, "request failed for %s", instrumentKey)
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeFetchFailed, "upstox returned %s for %s",
			resp.Status(), instrumentKey)
	}

	if result.Status != "success" {
		return nil, errors.Newf(errors.ErrCodeFetchFailed, "upstox status %q for %s",
			result.Status, instrumentKey)
	}

	bars := make([]types.Bar, 0, len(result.Data.Candles))

	for _, candle := range result.Data.Candles {
		bar, err := parseCandle(instrumentKey, candle)
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	p.logger.Debug("Fetched daily bars",
		zap.String("instrument_key", instrumentKey),
		zap.Int("bars", len(bars)),
	)

	return bars, nil
}

// parseCandle decodes one positional candle array.
func parseCandle(instrumentKey string, candle []any) (types.Bar, error) {
	if len(candle) < 6 {
		return types.Bar{}, errors.Newf(errors.ErrCodeParseFailed,
			"candle for %s has %d fields, want at least 6", instrumentKey, len(candle))
	}

	timestamp, ok := candle[0].(string)
	if !ok {
		return types.Bar{}, errors.Newf(errors.ErrCodeParseFailed,
			"candle timestamp for %s is not a string", instrumentKey)
	}

	barTime, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return types.Bar{}, errors.Wrapf(errors.ErrCodeParseFailed, err,
			"invalid candle timestamp %q for %s", timestamp, instrumentKey)
	}

	values := make([]float64, 5)

	for i := 0; i < 5; i++ {
		value, ok := candle[i+1].(float64)
		if !ok {
			return types.Bar{}, errors.Newf(errors.ErrCodeParseFailed,
				"candle field %d for %s is not a number", i+1, instrumentKey)
		}

		values[i] = value
	}

	return types.Bar{
		InstrumentKey: instrumentKey,
		Time:          barTime,
		Open:          values[0],
		High:          values[1],
		Low:           values[2],
		Close:         values[3],
		Volume:        values[4],
	}, nil
}
