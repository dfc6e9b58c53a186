package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/types"
)

type SimulationStateTestSuite struct {
	suite.Suite
	state *SimulationState
}

func TestSimulationStateSuite(t *testing.T) {
	suite.Run(t, new(SimulationStateTestSuite))
}

func (suite *SimulationStateTestSuite) SetupTest() {
	state, err := NewSimulationState(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(state.Initialize())
	suite.state = state
}

func (suite *SimulationStateTestSuite) TearDownTest() {
	suite.Require().NoError(suite.state.Close())
}

func ledgerTrade(symbol string, exitDate time.Time, pnl float64, holdingDays int) types.TradeRecord {
	return types.TradeRecord{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		EntryDate:   exitDate.AddDate(0, 0, -holdingDays),
		ExitDate:    exitDate,
		EntryPrice:  100,
		ExitPrice:   100 + pnl/10,
		Quantity:    10,
		ExitReason:  types.ExitReasonTarget,
		Charges:     25.5,
		PnL:         pnl,
		HoldingDays: holdingDays,
	}
}

func (suite *SimulationStateTestSuite) TestRecordAndGetAllTradesOrdered() {
	later := ledgerTrade("BBB", time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), 500, 12)
	earlier := ledgerTrade("AAA", time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), -200, 5)

	suite.Require().NoError(suite.state.RecordTrade(later))
	suite.Require().NoError(suite.state.RecordTrade(earlier))

	trades, err := suite.state.GetAllTrades()
	suite.Require().NoError(err)
	suite.Require().Len(trades, 2)

	suite.Equal("AAA", trades[0].Symbol)
	suite.Equal("BBB", trades[1].Symbol)
	suite.Equal(types.ExitReasonTarget, trades[0].ExitReason)
	suite.Equal(-200.0, trades[0].PnL)
	suite.Equal(5, trades[0].HoldingDays)
}

func (suite *SimulationStateTestSuite) TestAggregates() {
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("AAA", time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), 1000, 10)))
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("BBB", time.Date(2023, 7, 5, 0, 0, 0, 0, time.UTC), -400, 20)))
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("CCC", time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC), 300, 30)))

	agg, err := suite.state.Aggregates()
	suite.Require().NoError(err)

	suite.Equal(3, agg.TotalTrades)
	suite.Equal(2, agg.Winners)
	suite.Equal(1, agg.Losers)
	suite.InDelta(900.0, agg.TotalPnL, 1e-9)
	suite.InDelta(300.0, agg.AvgPnL, 1e-9)
	suite.InDelta(1000.0, agg.BestPnL, 1e-9)
	suite.InDelta(-400.0, agg.WorstPnL, 1e-9)
	suite.InDelta(76.5, agg.TotalCharges, 1e-9)
	suite.InDelta(20.0, agg.AvgHoldingDays, 1e-9)
}

func (suite *SimulationStateTestSuite) TestAggregatesEmptyLedger() {
	agg, err := suite.state.Aggregates()
	suite.Require().NoError(err)

	suite.Equal(0, agg.TotalTrades)
	suite.Equal(0.0, agg.TotalPnL)
	suite.Equal(0.0, agg.AvgHoldingDays)
}

func (suite *SimulationStateTestSuite) TestYearlyPnL() {
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("AAA", time.Date(2022, 12, 20, 0, 0, 0, 0, time.UTC), 700, 10)))
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("BBB", time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), -100, 10)))
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("CCC", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), 400, 10)))

	yearly, err := suite.state.YearlyPnL()
	suite.Require().NoError(err)
	suite.Require().Len(yearly, 2)

	suite.Equal(2022, yearly[0].Year)
	suite.InDelta(700.0, yearly[0].PnL, 1e-9)
	suite.Equal(2023, yearly[1].Year)
	suite.InDelta(300.0, yearly[1].PnL, 1e-9)
}

func (suite *SimulationStateTestSuite) TestWriteExportsParquet() {
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("AAA", time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), 100, 3)))

	dir := suite.T().TempDir()
	suite.Require().NoError(suite.state.Write(dir))

	info, err := os.Stat(filepath.Join(dir, "trades.parquet"))
	suite.Require().NoError(err)
	suite.Greater(info.Size(), int64(0))
}

func (suite *SimulationStateTestSuite) TestCleanupResetsLedger() {
	suite.Require().NoError(suite.state.RecordTrade(
		ledgerTrade("AAA", time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), 100, 3)))
	suite.Require().NoError(suite.state.Cleanup())

	trades, err := suite.state.GetAllTrades()
	suite.Require().NoError(err)
	suite.Empty(trades)
}
