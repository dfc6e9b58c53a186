package detector

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

type DetectorTestSuite struct {
	suite.Suite
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorTestSuite))
}

// smallConfig keeps the lookback short so test series stay hand-checkable.
func smallConfig() Config {
	return Config{
		MAPeriod:         3,
		FastMAPeriod:     optional.None[int](),
		TrendLookback:    1,
		SupportTolerance: 0.005,
		TouchWindow:      2,
		BreakoutMargin:   0.005,
	}
}

func testBars(ohlc [][4]float64) []types.Bar {
	bars := make([]types.Bar, len(ohlc))
	start := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)

	for i, v := range ohlc {
		bars[i] = types.Bar{
			InstrumentKey: "NSE_EQ|TEST",
			Symbol:        "TEST",
			Time:          start.AddDate(0, 0, i),
			Open:          v[0],
			High:          v[1],
			Low:           v[2],
			Close:         v[3],
		}
	}

	return bars
}

// pullbackBreakoutSeries holds exactly one qualifying setup at index 4:
// rising 3-bar MA, a support touch at index 2, a bullish close above the
// average, and breakout follow-through on index 5.
func pullbackBreakoutSeries() []types.Bar {
	return testBars([][4]float64{
		{100, 100.5, 99.5, 100},
		{100.8, 101.2, 100.2, 101},
		{101, 102.2, 100.8, 102},
		{102, 103.2, 101.8, 103},
		{104, 106.5, 103.8, 106},
		{107.9, 108, 107, 107.5},
		{107, 107.4, 106, 107.2},
	})
}

func (suite *DetectorTestSuite) TestSinglePatternEmitsOneSignal() {
	detector, err := NewDetector(smallConfig())
	suite.Require().NoError(err)

	signals, err := detector.Detect("TEST", "NSE_EQ|TEST", pullbackBreakoutSeries())
	suite.Require().NoError(err)
	suite.Require().Len(signals, 1)

	signal := signals[0]
	suite.Equal("TEST", signal.Symbol)
	suite.Equal("NSE_EQ|TEST", signal.InstrumentKey)
	suite.Equal(time.Date(2023, 6, 9, 0, 0, 0, 0, time.UTC), signal.SignalDate)
	suite.Equal(time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), signal.EntryDate)

	// entry = round(106.5 * 1.005), stop = round(min(101.8, 103.8)),
	// target = entry + 2 * (entry - stop)
	suite.Equal(107.03, signal.EntryPrice)
	suite.Equal(101.80, signal.StopLoss)
	suite.Equal(117.49, signal.Target)

	suite.NoError(signal.Validate())
}

func (suite *DetectorTestSuite) TestNoSupportTouchRejectsDay() {
	bars := testBars([][4]float64{
		{100, 100.5, 99.5, 100},
		{100.8, 101.2, 100.2, 101},
		{102.1, 102.5, 102, 102},
		{103.8, 104, 103.52, 103.9},
		{104, 106.5, 103.8, 106},
		{107.9, 108, 107, 107.5},
		{107, 107.4, 106, 107.2},
	})

	detector, err := NewDetector(smallConfig())
	suite.Require().NoError(err)

	signals, err := detector.Detect("TEST", "NSE_EQ|TEST", bars)
	suite.NoError(err)
	suite.Empty(signals)
}

func (suite *DetectorTestSuite) TestNoBreakoutRejectsDay() {
	bars := pullbackBreakoutSeries()
	// next bar stays below today's high plus margin, so no follow-through
	bars[5].High = 106.9

	detector, err := NewDetector(smallConfig())
	suite.Require().NoError(err)

	signals, err := detector.Detect("TEST", "NSE_EQ|TEST", bars)
	suite.NoError(err)
	suite.Empty(signals)
}

func (suite *DetectorTestSuite) TestBearishSignalDayRejected() {
	bars := pullbackBreakoutSeries()
	// turn the setup candle bearish
	bars[4].Open = 106.4
	bars[4].Close = 106.2

	detector, err := NewDetector(smallConfig())
	suite.Require().NoError(err)

	signals, err := detector.Detect("TEST", "NSE_EQ|TEST", bars)
	suite.NoError(err)
	suite.Empty(signals)
}

func (suite *DetectorTestSuite) TestDualMAVariant() {
	config := smallConfig()
	config.FastMAPeriod = optional.Some(2)

	detector, err := NewDetector(config)
	suite.Require().NoError(err)

	signals, err := detector.Detect("TEST", "NSE_EQ|TEST", pullbackBreakoutSeries())
	suite.Require().NoError(err)
	suite.Len(signals, 1)
}

func (suite *DetectorTestSuite) TestIdempotence() {
	detector, err := NewDetector(smallConfig())
	suite.Require().NoError(err)

	bars := pullbackBreakoutSeries()

	first, err := detector.Detect("TEST", "NSE_EQ|TEST", bars)
	suite.Require().NoError(err)

	second, err := detector.Detect("TEST", "NSE_EQ|TEST", bars)
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

func (suite *DetectorTestSuite) TestInsufficientBars() {
	detector, err := NewDetector(smallConfig())
	suite.Require().NoError(err)

	_, err = detector.Detect("TEST", "NSE_EQ|TEST", pullbackBreakoutSeries()[:2])
	suite.Error(err)
	suite.True(errors.IsInsufficientBarsError(err))
}

func (suite *DetectorTestSuite) TestConfigValidation() {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero ma period", func(c *Config) { c.MAPeriod = 0 }},
		{"zero touch window", func(c *Config) { c.TouchWindow = 0 }},
		{"zero tolerance", func(c *Config) { c.SupportTolerance = 0 }},
		{"fast period not shorter", func(c *Config) { c.FastMAPeriod = optional.Some(44) }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.mutate(&config)
			_, err := NewDetector(config)
			suite.Error(err)
		})
	}
}

func (suite *DetectorTestSuite) TestDefaultConfigs() {
	defaultConfig := DefaultConfig()
	suite.NoError(defaultConfig.Validate())

	dualConfig := DualMAConfig()
	suite.NoError(dualConfig.Validate())

	schema, err := defaultConfig.GenerateSchemaJSON()
	suite.NoError(err)
	suite.NotEmpty(schema)
}
