// Package backtest simulates a portfolio trading detected swing signals day
// by day under fixed per-trade risk and a capital ceiling.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/swing-trading/internal/backtest/charges"
	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

// PriceSeries supplies the chronologically ordered daily bars of one
// instrument over the simulation's configured date range.
type PriceSeries interface {
	DailyBars(ctx context.Context, instrumentKey string) ([]types.Bar, error)
}

// openPosition binds an OPEN position to its instrument's future bar
// sequence, so per-day lookups never need full history again.
type openPosition struct {
	position   types.Position
	barsByDate map[time.Time]types.Bar
	lastBar    types.Bar
}

// Simulation is the day-by-day driver. It is the sole owner and mutator of
// the capital account, the open-position set, and the trade ledger; within
// a day exits settle before entries, and both passes run in listed order.
type Simulation struct {
	config      Config
	logger      *logger.Logger
	prices      PriceSeries
	state       *SimulationState
	machine     *PositionMachine
	chargeModel charges.ChargeModel

	capital float64
	open    []openPosition
	skips   types.SkipCounters
	entered int
	exited  int
}

// NewSimulation validates the config and prepares the ledger state.
func NewSimulation(config Config, prices PriceSeries, log *logger.Logger) (*Simulation, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	state, err := NewSimulationState(log)
	if err != nil {
		return nil, err
	}

	if err := state.Initialize(); err != nil {
		return nil, err
	}

	return &Simulation{
		config:      config,
		logger:      log,
		prices:      prices,
		state:       state,
		machine:     NewPositionMachine(config),
		chargeModel: charges.GetChargeModel(config.ChargeModel),
		capital:     config.InitialCapital,
		open:        nil,
		skips:       types.SkipCounters{},
		entered:     0,
		exited:      0,
	}, nil
}

// State exposes the ledger state for reporting.
func (s *Simulation) State() *SimulationState {
	return s.state
}

// Capital returns the current cash balance.
func (s *Simulation) Capital() float64 {
	return s.capital
}

// Close releases the ledger database.
func (s *Simulation) Close() error {
	return s.state.Close()
}

// Run walks the trading calendar from the earliest signal entry date
// through the latest plus the configured lookahead, then force-closes
// whatever is still open. The calendar is the weekday grid unioned with
// every entry date, so signals from weekend special sessions are visited
// too. Every accepted entry yields exactly one ledger record by the time
// Run returns.
func (s *Simulation) Run(ctx context.Context, signals []types.Signal) (types.SimulationSummary, error) {
	if len(signals) == 0 {
		return types.SimulationSummary{}, errors.New(errors.ErrCodeSimulationNoSignals, "no signals to simulate")
	}

	signalsByDate := make(map[time.Time][]types.Signal)
	entryDates := make([]time.Time, 0, len(signals))
	first := normalizeDate(signals[0].EntryDate)
	last := first

	for _, signal := range signals {
		date := normalizeDate(signal.EntryDate)
		if _, ok := signalsByDate[date]; !ok {
			entryDates = append(entryDates, date)
		}

		signalsByDate[date] = append(signalsByDate[date], signal)

		if date.Before(first) {
			first = date
		}

		if date.After(last) {
			last = date
		}
	}

	// never empty: every entry date is in the calendar
	calendar := MergeDates(
		BusinessDays(first, last.AddDate(0, 0, s.config.LookaheadDays)),
		entryDates,
	)

	s.logger.Info("Simulation started",
		zap.Int("signals", len(signals)),
		zap.Time("first_entry", first),
		zap.Time("last_entry", last),
		zap.Int("calendar_days", len(calendar)),
	)

	for _, today := range calendar {
		if err := ctx.Err(); err != nil {
			return types.SimulationSummary{}, err
		}

		if err := s.exitPass(today); err != nil {
			return types.SimulationSummary{}, err
		}

		if err := s.entryPass(ctx, today, signalsByDate[today]); err != nil {
			return types.SimulationSummary{}, err
		}
	}

	if err := s.forceCloseAll(calendar[len(calendar)-1]); err != nil {
		return types.SimulationSummary{}, err
	}

	return s.buildSummary(len(signals))
}

// exitPass evaluates every open position against today's bar. The next
// open set is rebuilt from scratch each day instead of removing entries
// mid-scan.
func (s *Simulation) exitPass(today time.Time) error {
	kept := make([]openPosition, 0, len(s.open))

	for _, op := range s.open {
		bar, ok := op.barsByDate[today]
		if !ok {
			// non-trading day for this instrument
			kept = append(kept, op)

			continue
		}

		updated, decision := s.machine.EvaluateExit(op.position, bar, today)
		op.position = updated

		if decision.IsNone() {
			kept = append(kept, op)

			continue
		}

		exit := decision.Unwrap()
		if err := s.closePosition(op.position, exit.Price, today, exit.Reason); err != nil {
			return err
		}
	}

	s.open = kept

	return nil
}

// entryPass opens positions for the signals due today, in listed order,
// subject to the one-position-per-symbol rule, risk-based sizing, and the
// capital ceiling. Rejections are counted, never raised.
func (s *Simulation) entryPass(ctx context.Context, today time.Time, due []types.Signal) error {
	for _, signal := range due {
		if s.isHolding(signal.Symbol) {
			s.skips.AlreadyHolding++
			s.logger.Info("Skipped signal: already holding",
				zap.String("symbol", signal.Symbol),
				zap.Time("entry_date", today),
			)

			continue
		}

		quantity := 0
		if risk := signal.RiskPerShare(); risk > 0 {
			quantity = int(s.config.MaxRiskPerTrade / risk)
		}

		cost := signal.EntryPrice * float64(quantity)

		if quantity < 1 || cost > s.capital {
			s.skips.RiskOrCapital++
			s.logger.Info("Skipped signal: risk or capital",
				zap.String("symbol", signal.Symbol),
				zap.Int("quantity", quantity),
				zap.Float64("cost", cost),
				zap.Float64("capital", s.capital),
			)

			continue
		}

		futureBars, lastBar, err := s.futureBars(ctx, signal.InstrumentKey, today)
		if err != nil {
			return err
		}

		s.capital -= cost
		s.open = append(s.open, openPosition{
			position:   types.NewPositionFromSignal(signal, quantity),
			barsByDate: futureBars,
			lastBar:    lastBar,
		})
		s.entered++

		s.logger.Info("Entered position",
			zap.String("symbol", signal.Symbol),
			zap.Int("quantity", quantity),
			zap.Float64("entry_price", signal.EntryPrice),
			zap.Float64("capital", s.capital),
		)
	}

	return nil
}

// futureBars fetches the instrument's bars and keeps those from today
// onward. A fetch failure is fatal: the run is already committed to the
// signal and cannot proceed without its price history.
func (s *Simulation) futureBars(ctx context.Context, instrumentKey string, today time.Time) (map[time.Time]types.Bar, types.Bar, error) {
	bars, err := s.prices.DailyBars(ctx, instrumentKey)
	if err != nil {
		return nil, types.Bar{}, errors.Wrapf(errors.ErrCodeFetchFailed, err,
			"cannot load price history for %s", instrumentKey)
	}

	byDate := make(map[time.Time]types.Bar)

	var lastBar types.Bar

	for _, bar := range bars {
		date := normalizeDate(bar.Time)
		if date.Before(today) {
			continue
		}

		byDate[date] = bar

		if lastBar.Time.IsZero() || bar.Time.After(lastBar.Time) {
			lastBar = bar
		}
	}

	if len(byDate) == 0 {
		return nil, types.Bar{}, errors.Newf(errors.ErrCodeDataNotFound,
			"no bars on or after %s for %s", today.Format("2006-01-02"), instrumentKey)
	}

	return byDate, lastBar, nil
}

// forceCloseAll closes every remaining position against its final bar:
// the bar of the last calendar day when the instrument traded that day,
// otherwise the last bar it has. No position survives the run.
func (s *Simulation) forceCloseAll(finalDate time.Time) error {
	for _, op := range s.open {
		bar, ok := op.barsByDate[finalDate]
		if !ok {
			bar = op.lastBar
		}

		price := bar.Open
		if s.config.ForcedExitPrice == PriceSourceClose {
			price = bar.Close
		}

		if err := s.closePosition(op.position, price, finalDate, types.ExitReasonEndOfRun); err != nil {
			return err
		}
	}

	s.open = nil

	return nil
}

// closePosition settles the trade, appends the ledger record, and credits
// the sale proceeds net of charges back to capital. This is the only place
// a position transitions to CLOSED.
func (s *Simulation) closePosition(position types.Position, exitPrice float64, exitDate time.Time, reason types.ExitReason) error {
	position.Status = types.PositionStatusClosed

	record, netProceeds := settleTrade(position, exitPrice, exitDate, reason, s.chargeModel)
	if err := s.state.RecordTrade(record); err != nil {
		return err
	}

	s.capital += netProceeds
	s.exited++

	s.logger.Info("Exited position",
		zap.String("symbol", record.Symbol),
		zap.String("reason", string(record.ExitReason)),
		zap.Float64("pnl", record.PnL),
		zap.Int("holding_days", record.HoldingDays),
	)

	return nil
}

func (s *Simulation) isHolding(symbol string) bool {
	for _, op := range s.open {
		if op.position.Symbol == symbol {
			return true
		}
	}

	return false
}

// buildSummary aggregates the ledger and verifies the run reconciles:
// entered + skipped == total signals and exited == entered.
func (s *Simulation) buildSummary(totalSignals int) (types.SimulationSummary, error) {
	agg, err := s.state.Aggregates()
	if err != nil {
		return types.SimulationSummary{}, err
	}

	yearly, err := s.state.YearlyPnL()
	if err != nil {
		return types.SimulationSummary{}, err
	}

	for i := range yearly {
		yearly[i].ReturnPct = yearly[i].PnL / s.config.InitialCapital * 100
	}

	winRate := 0.0
	if agg.TotalTrades > 0 {
		winRate = float64(agg.Winners) / float64(agg.TotalTrades) * 100
	}

	summary := types.SimulationSummary{
		ID:               uuid.New().String(),
		Timestamp:        time.Now().UTC(),
		InitialCapital:   s.config.InitialCapital,
		FinalCapital:     s.capital,
		TotalSignals:     totalSignals,
		TradesEntered:    s.entered,
		TradesExited:     s.exited,
		Skips:            s.skips,
		Winners:          agg.Winners,
		Losers:           agg.Losers,
		WinRatePct:       winRate,
		TotalPnL:         agg.TotalPnL,
		AvgPnL:           agg.AvgPnL,
		BestTradePnL:     agg.BestPnL,
		WorstTradePnL:    agg.WorstPnL,
		TotalCharges:     agg.TotalCharges,
		AvgHoldingDays:   agg.AvgHoldingDays,
		OverallReturnPct: agg.TotalPnL / s.config.InitialCapital * 100,
		YearlyReturns:    yearly,
	}

	if !summary.Reconciles() {
		return summary, errors.Newf(errors.ErrCodeReconciliationFailed,
			"entered=%d exited=%d skipped=%d total=%d do not reconcile",
			s.entered, s.exited, s.skips.Total(), totalSignals)
	}

	return summary, nil
}
