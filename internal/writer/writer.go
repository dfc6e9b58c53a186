// Package writer persists detector signals and the simulation's trade
// ledger as CSV files, and reads signals back for a later run.
package writer

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

const dateLayout = "2006-01-02"

var signalHeader = []string{
	"symbol", "instrument_key", "signal_date", "entry_date",
	"entry_price", "stop_loss", "target",
}

var tradeHeader = []string{
	"symbol", "entry_date", "exit_date", "entry_price", "exit_price",
	"quantity", "exit_reason", "charges", "pnl", "holding_days",
}

// WriteSignals writes signals to path sorted by symbol then entry date.
// The input slice is not modified.
func WriteSignals(path string, signals []types.Signal) error {
	sorted := make([]types.Signal, len(signals))
	copy(sorted, signals)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}

		return sorted[i].EntryDate.Before(sorted[j].EntryDate)
	})

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to create signals file", err)
	}
	defer file.Close()

	csvWriter := csv.NewWriter(file)

	if err := csvWriter.Write(signalHeader); err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to write signals header", err)
	}

	for _, signal := range sorted {
		record := []string{
			signal.Symbol,
			signal.InstrumentKey,
			signal.SignalDate.Format(dateLayout),
			signal.EntryDate.Format(dateLayout),
			formatPrice(signal.EntryPrice),
			formatPrice(signal.StopLoss),
			formatPrice(signal.Target),
		}

		if err := csvWriter.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to write signal", err)
		}
	}

	csvWriter.Flush()

	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to flush signals file", err)
	}

	return nil
}

// ReadSignals reads a signals file written by WriteSignals. Every row is
// validated; one bad row fails the whole read.
func ReadSignals(path string) ([]types.Signal, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCSVReadFailed, "failed to open signals file", err)
	}
	defer file.Close()

	csvReader := csv.NewReader(file)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCSVReadFailed, "failed to read signals file", err)
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeCSVReadFailed, "signals file is empty")
	}

	signals := make([]types.Signal, 0, len(rows)-1)

	for i, row := range rows[1:] {
		signal, err := parseSignalRow(row)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeCSVReadFailed, err, "signals row %d", i+2)
		}

		if err := signal.Validate(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeCSVReadFailed, err, "signals row %d", i+2)
		}

		signals = append(signals, signal)
	}

	return signals, nil
}

func parseSignalRow(row []string) (types.Signal, error) {
	if len(row) != len(signalHeader) {
		return types.Signal{}, errors.Newf(errors.ErrCodeParseFailed,
			"want %d fields, got %d", len(signalHeader), len(row))
	}

	signalDate, err := time.Parse(dateLayout, row[2])
	if err != nil {
		return types.Signal{}, errors.Wrap(errors.ErrCodeParseFailed, "invalid signal date", err)
	}

	entryDate, err := time.Parse(dateLayout, row[3])
	if err != nil {
		return types.Signal{}, errors.Wrap(errors.ErrCodeParseFailed, "invalid entry date", err)
	}

	prices := make([]float64, 3)

	for i, field := range row[4:7] {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return types.Signal{}, errors.Wrapf(errors.ErrCodeParseFailed, err, "invalid price %q", field)
		}

		prices[i] = value
	}

	return types.Signal{
		Symbol:        row[0],
		InstrumentKey: row[1],
		SignalDate:    signalDate,
		EntryDate:     entryDate,
		EntryPrice:    prices[0],
		StopLoss:      prices[1],
		Target:        prices[2],
	}, nil
}

// ReadInstruments reads a symbol universe file of `symbol,instrument_key`
// rows with a header line.
func ReadInstruments(path string) ([]types.Instrument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCSVReadFailed, "failed to open instruments file", err)
	}
	defer file.Close()

	csvReader := csv.NewReader(file)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCSVReadFailed, "failed to read instruments file", err)
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeCSVReadFailed, "instruments file is empty")
	}

	instruments := make([]types.Instrument, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != 2 || row[0] == "" || row[1] == "" {
			return nil, errors.Newf(errors.ErrCodeCSVReadFailed,
				"instruments row %d: want non-empty symbol and instrument key", i+2)
		}

		instruments = append(instruments, types.Instrument{
			Symbol:        row[0],
			InstrumentKey: row[1],
		})
	}

	return instruments, nil
}

// WriteTrades writes the closed-trade ledger to path in its given order.
func WriteTrades(path string, trades []types.TradeRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to create trades file", err)
	}
	defer file.Close()

	csvWriter := csv.NewWriter(file)

	if err := csvWriter.Write(tradeHeader); err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to write trades header", err)
	}

	for _, trade := range trades {
		record := []string{
			trade.Symbol,
			trade.EntryDate.Format(dateLayout),
			trade.ExitDate.Format(dateLayout),
			formatPrice(trade.EntryPrice),
			formatPrice(trade.ExitPrice),
			strconv.Itoa(trade.Quantity),
			string(trade.ExitReason),
			formatPrice(trade.Charges),
			formatPrice(trade.PnL),
			strconv.Itoa(trade.HoldingDays),
		}

		if err := csvWriter.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to write trade", err)
		}
	}

	csvWriter.Flush()

	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeCSVWriteFailed, "failed to flush trades file", err)
	}

	return nil
}

func formatPrice(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
