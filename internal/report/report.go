// Package report persists and logs the outcome of one simulation run.
package report

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/internal/writer"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

const (
	tradesFileName  = "final_trades.csv"
	summaryFileName = "summary.yaml"
)

// Reporter writes the run artifacts and logs the headline numbers.
type Reporter struct {
	logger *logger.Logger
}

// NewReporter creates a Reporter.
func NewReporter(log *logger.Logger) *Reporter {
	return &Reporter{logger: log}
}

// WriteArtifacts writes the closed-trade ledger and the summary into dir,
// creating it if needed.
func (r *Reporter) WriteArtifacts(dir string, trades []types.TradeRecord, summary types.SimulationSummary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to create output directory", err)
	}

	tradesPath := filepath.Join(dir, tradesFileName)
	if err := writer.WriteTrades(tradesPath, trades); err != nil {
		return err
	}

	summaryPath := filepath.Join(dir, summaryFileName)
	if err := types.WriteSimulationSummary(summaryPath, summary); err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to write summary", err)
	}

	r.logger.Info("Wrote run artifacts",
		zap.String("trades", tradesPath),
		zap.String("summary", summaryPath),
	)

	return nil
}

// Log prints the summary of a finished run.
func (r *Reporter) Log(summary types.SimulationSummary) {
	r.logger.Info("Simulation finished",
		zap.String("run_id", summary.ID),
		zap.Int("total_signals", summary.TotalSignals),
		zap.Int("trades_entered", summary.TradesEntered),
		zap.Int("trades_exited", summary.TradesExited),
		zap.Int("skipped_already_holding", summary.Skips.AlreadyHolding),
		zap.Int("skipped_risk_or_capital", summary.Skips.RiskOrCapital),
		zap.Int("winners", summary.Winners),
		zap.Int("losers", summary.Losers),
		zap.Float64("win_rate_pct", summary.WinRatePct),
		zap.Float64("total_pnl", summary.TotalPnL),
		zap.Float64("avg_pnl", summary.AvgPnL),
		zap.Float64("best_trade_pnl", summary.BestTradePnL),
		zap.Float64("worst_trade_pnl", summary.WorstTradePnL),
		zap.Float64("total_charges", summary.TotalCharges),
		zap.Float64("avg_holding_days", summary.AvgHoldingDays),
		zap.Float64("initial_capital", summary.InitialCapital),
		zap.Float64("final_capital", summary.FinalCapital),
		zap.Float64("overall_return_pct", summary.OverallReturnPct),
	)

	for _, yearly := range summary.YearlyReturns {
		r.logger.Info("Yearly return",
			zap.Int("year", yearly.Year),
			zap.Float64("pnl", yearly.PnL),
			zap.Float64("return_pct", yearly.ReturnPct),
		)
	}
}
