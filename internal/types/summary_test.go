package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type SummaryTestSuite struct {
	suite.Suite
}

func TestSummarySuite(t *testing.T) {
	suite.Run(t, new(SummaryTestSuite))
}

func (suite *SummaryTestSuite) TestReconciles() {
	tests := []struct {
		name     string
		summary  SimulationSummary
		expected bool
	}{
		{
			name: "balanced",
			summary: SimulationSummary{
				TotalSignals:  10,
				TradesEntered: 7,
				TradesExited:  7,
				Skips:         SkipCounters{AlreadyHolding: 2, RiskOrCapital: 1},
			},
			expected: true,
		},
		{
			name: "leaked position",
			summary: SimulationSummary{
				TotalSignals:  10,
				TradesEntered: 7,
				TradesExited:  6,
				Skips:         SkipCounters{AlreadyHolding: 2, RiskOrCapital: 1},
			},
			expected: false,
		},
		{
			name: "missing skip",
			summary: SimulationSummary{
				TotalSignals:  10,
				TradesEntered: 7,
				TradesExited:  7,
				Skips:         SkipCounters{AlreadyHolding: 2, RiskOrCapital: 0},
			},
			expected: false,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, tc.summary.Reconciles())
		})
	}
}

func (suite *SummaryTestSuite) TestWriteSimulationSummary() {
	dir := suite.T().TempDir()
	path := filepath.Join(dir, "summary.yaml")

	summary := SimulationSummary{
		ID:             "run-1",
		Timestamp:      time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		InitialCapital: 200000,
		FinalCapital:   215430.50,
		TotalSignals:   12,
		TradesEntered:  9,
		TradesExited:   9,
		Skips:          SkipCounters{AlreadyHolding: 2, RiskOrCapital: 1},
		Winners:        5,
		Losers:         4,
		WinRatePct:     55.6,
		TotalPnL:       15430.50,
		YearlyReturns: []YearlyReturn{
			{Year: 2024, PnL: 15430.50, ReturnPct: 7.72},
		},
	}

	suite.NoError(WriteSimulationSummary(path, summary))

	data, err := os.ReadFile(path)
	suite.NoError(err)

	var loaded SimulationSummary
	suite.NoError(yaml.Unmarshal(data, &loaded))
	suite.Equal(summary.ID, loaded.ID)
	suite.Equal(summary.TradesEntered, loaded.TradesEntered)
	suite.Len(loaded.YearlyReturns, 1)
	suite.Equal(2024, loaded.YearlyReturns[0].Year)
}
