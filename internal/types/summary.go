package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SkipCounters tracks signals that were rejected during the entry pass.
// The counters are mutually exclusive and exhaustive:
// entered + skipped == total signals whose entry date fell in the calendar.
type SkipCounters struct {
	// AlreadyHolding counts signals rejected because a position was open for the symbol.
	AlreadyHolding int `yaml:"already_holding"`
	// RiskOrCapital counts signals rejected for degenerate risk, quantity below
	// one share, or a cost above the available capital.
	RiskOrCapital int `yaml:"risk_or_capital"`
}

// Total returns the sum of all skip counters.
func (s SkipCounters) Total() int {
	return s.AlreadyHolding + s.RiskOrCapital
}

// YearlyReturn is the realized P&L of one calendar year of exits.
type YearlyReturn struct {
	Year int `yaml:"year"`
	// PnL is the sum of trade pnl for exits in this year.
	PnL float64 `yaml:"pnl"`
	// ReturnPct is PnL as a percentage of initial capital.
	ReturnPct float64 `yaml:"return_pct"`
}

// SimulationSummary aggregates the trade ledger of one simulation run.
type SimulationSummary struct {
	// ID is the unique identifier for this simulation run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// InitialCapital is the starting capital of the run.
	InitialCapital float64 `yaml:"initial_capital"`
	// FinalCapital is the capital after all exits settled.
	FinalCapital float64 `yaml:"final_capital"`
	// TotalSignals is the number of signals whose entry date fell in the calendar.
	TotalSignals int `yaml:"total_signals"`
	// TradesEntered is the number of accepted entries.
	TradesEntered int `yaml:"trades_entered"`
	// TradesExited is the number of ledger records; always equals TradesEntered.
	TradesExited int          `yaml:"trades_exited"`
	Skips        SkipCounters `yaml:"skips"`

	Winners        int     `yaml:"winners"`
	Losers         int     `yaml:"losers"`
	WinRatePct     float64 `yaml:"win_rate_pct"`
	TotalPnL       float64 `yaml:"total_pnl"`
	AvgPnL         float64 `yaml:"avg_pnl"`
	BestTradePnL   float64 `yaml:"best_trade_pnl"`
	WorstTradePnL  float64 `yaml:"worst_trade_pnl"`
	TotalCharges   float64 `yaml:"total_charges"`
	AvgHoldingDays float64 `yaml:"avg_holding_days"`
	// OverallReturnPct is TotalPnL as a percentage of initial capital.
	OverallReturnPct float64        `yaml:"overall_return_pct"`
	YearlyReturns    []YearlyReturn `yaml:"yearly_returns"`
}

// Reconciles reports whether the entry/exit/skip counters balance:
// every accepted entry produced exactly one ledger record, and every
// signal in range was either entered or counted as a skip.
func (s SimulationSummary) Reconciles() bool {
	return s.TradesExited == s.TradesEntered &&
		s.TradesEntered+s.Skips.Total() == s.TotalSignals
}

// WriteSimulationSummary writes the summary to a YAML file.
func WriteSimulationSummary(path string, summary SimulationSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal simulation summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write simulation summary to file: %w", err)
	}

	return nil
}
