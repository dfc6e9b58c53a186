package backtest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

// SimulationState stores the trade ledger of one run in an in-memory DuckDB
// database and answers the aggregate queries reporting needs.
type SimulationState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// LedgerAggregates holds the SQL-side aggregation of the ledger.
type LedgerAggregates struct {
	TotalTrades    int
	Winners        int
	Losers         int
	TotalPnL       float64
	AvgPnL         float64
	BestPnL        float64
	WorstPnL       float64
	TotalCharges   float64
	AvgHoldingDays float64
}

// NewSimulationState opens an in-memory DuckDB database for the ledger.
func NewSimulationState(log *logger.Logger) (*SimulationState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSimulationInitFailed, "failed to open ledger database", err)
	}

	return &SimulationState{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the trades table.
func (s *SimulationState) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			entry_date TIMESTAMP,
			exit_date TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity INTEGER,
			exit_reason TEXT,
			charges DOUBLE,
			pnl DOUBLE,
			holding_days INTEGER
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSimulationInitFailed, "failed to create trades table", err)
	}

	return nil
}

// RecordTrade appends one ledger record. Called exactly once per closed
// position.
func (s *SimulationState) RecordTrade(trade types.TradeRecord) error {
	insertQuery := s.sq.
		Insert("trades").
		Columns(
			"id", "symbol", "entry_date", "exit_date", "entry_price", "exit_price",
			"quantity", "exit_reason", "charges", "pnl", "holding_days",
		).
		Values(
			trade.ID, trade.Symbol, trade.EntryDate, trade.ExitDate, trade.EntryPrice,
			trade.ExitPrice, trade.Quantity, string(trade.ExitReason), trade.Charges,
			trade.PnL, trade.HoldingDays,
		).
		RunWith(s.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to insert trade", err)
	}

	return nil
}

// GetAllTrades returns the ledger ordered by exit date then symbol.
func (s *SimulationState) GetAllTrades() ([]types.TradeRecord, error) {
	selectQuery := s.sq.
		Select(
			"id", "symbol", "entry_date", "exit_date", "entry_price", "exit_price",
			"quantity", "exit_reason", "charges", "pnl", "holding_days",
		).
		From("trades").
		OrderBy("exit_date ASC", "symbol ASC").
		RunWith(s.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.TradeRecord

	for rows.Next() {
		var trade types.TradeRecord

		var reason string

		err := rows.Scan(
			&trade.ID,
			&trade.Symbol,
			&trade.EntryDate,
			&trade.ExitDate,
			&trade.EntryPrice,
			&trade.ExitPrice,
			&trade.Quantity,
			&reason,
			&trade.Charges,
			&trade.PnL,
			&trade.HoldingDays,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trade.ExitReason = types.ExitReason(reason)
		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating trades", err)
	}

	return trades, nil
}

// Aggregates computes the ledger-wide statistics in SQL.
func (s *SimulationState) Aggregates() (LedgerAggregates, error) {
	query := `
		SELECT
			COUNT(*) AS total_trades,
			COALESCE(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END), 0) AS winners,
			COALESCE(SUM(CASE WHEN pnl <= 0 THEN 1 ELSE 0 END), 0) AS losers,
			COALESCE(SUM(pnl), 0) AS total_pnl,
			COALESCE(AVG(pnl), 0) AS avg_pnl,
			COALESCE(MAX(pnl), 0) AS best_pnl,
			COALESCE(MIN(pnl), 0) AS worst_pnl,
			COALESCE(SUM(charges), 0) AS total_charges,
			COALESCE(AVG(holding_days), 0) AS avg_holding_days
		FROM trades
	`

	var agg LedgerAggregates

	err := s.db.QueryRow(query).Scan(
		&agg.TotalTrades,
		&agg.Winners,
		&agg.Losers,
		&agg.TotalPnL,
		&agg.AvgPnL,
		&agg.BestPnL,
		&agg.WorstPnL,
		&agg.TotalCharges,
		&agg.AvgHoldingDays,
	)
	if err != nil {
		return LedgerAggregates{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to aggregate ledger", err)
	}

	return agg, nil
}

// YearlyPnL sums realized pnl per calendar year of exit, ordered by year.
func (s *SimulationState) YearlyPnL() ([]types.YearlyReturn, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM exit_date) AS year,
			SUM(pnl) AS pnl
		FROM trades
		GROUP BY year
		ORDER BY year
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query yearly pnl", err)
	}
	defer rows.Close()

	var returns []types.YearlyReturn

	for rows.Next() {
		var yearly types.YearlyReturn
		if err := rows.Scan(&yearly.Year, &yearly.PnL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan yearly pnl", err)
		}

		returns = append(returns, yearly)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating yearly pnl", err)
	}

	return returns, nil
}

// Write exports the ledger to a Parquet file in the given directory.
func (s *SimulationState) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to create directory", err)
	}

	tradesPath := filepath.Join(path, "trades.parquet")

	_, err := s.db.Exec(fmt.Sprintf(`COPY trades TO '%s' (FORMAT PARQUET)`, tradesPath))
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to export trades to Parquet", err)
	}

	s.logger.Info("Exported trade ledger",
		zap.String("trades", tradesPath),
	)

	return nil
}

// Cleanup drops the ledger and reinitializes the schema.
func (s *SimulationState) Cleanup() error {
	if _, err := s.db.Exec(`DROP TABLE IF EXISTS trades;`); err != nil {
		return errors.Wrap(errors.ErrCodeSimulationInitFailed, "failed to drop trades table", err)
	}

	return s.Initialize()
}

// Close closes the underlying database.
func (s *SimulationState) Close() error {
	return s.db.Close()
}
