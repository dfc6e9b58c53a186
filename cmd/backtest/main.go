package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/swing-trading/internal/backtest"
	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/pricestore"
	"github.com/rxtech-lab/swing-trading/internal/report"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/internal/writer"
)

// backtestAction loads the signals file, replays them through the
// simulation, and writes the trade ledger and summary into the results
// folder.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	signalsPath := cmd.String("signals")
	configPath := cmd.String("config")
	resultsDir := cmd.String("results")
	cachePath := cmd.String("cache")
	exportParquet := cmd.Bool("parquet")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	config, err := loadSimulationConfig(configPath)
	if err != nil {
		return err
	}

	signals, err := writer.ReadSignals(signalsPath)
	if err != nil {
		return err
	}

	if len(signals) == 0 {
		return fmt.Errorf("no signals in %s", signalsPath)
	}

	rangeStart, rangeEnd := storeRange(signals, cmd.Timestamp("start"), cmd.Timestamp("end"), config.LookaheadDays)

	provider := pricestore.NewUpstoxProvider(os.Getenv("UPSTOX_ACCESS_TOKEN"), appLogger)

	store, err := pricestore.NewStore(provider, rangeStart, rangeEnd, cachePath, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	sim, err := backtest.NewSimulation(config, store, appLogger)
	if err != nil {
		return err
	}
	defer sim.Close()

	summary, err := sim.Run(ctx, signals)
	if err != nil {
		return err
	}

	trades, err := sim.State().GetAllTrades()
	if err != nil {
		return err
	}

	reporter := report.NewReporter(appLogger)
	if err := reporter.WriteArtifacts(resultsDir, trades, summary); err != nil {
		return err
	}

	if exportParquet {
		if err := sim.State().Write(resultsDir); err != nil {
			return err
		}
	}

	reporter.Log(summary)

	return nil
}

// storeRange picks the bar range for the run. Explicit start/end dates win,
// so a run pointed at the cache scan built (with the same dates) reuses it
// without refetching. Without them the range is implied by the signals plus
// the lookahead.
func storeRange(signals []types.Signal, start time.Time, end time.Time, lookaheadDays int) (time.Time, time.Time) {
	first := signals[0].EntryDate
	last := first

	for _, signal := range signals {
		if signal.EntryDate.Before(first) {
			first = signal.EntryDate
		}

		if signal.EntryDate.After(last) {
			last = signal.EntryDate
		}
	}

	rangeStart := first
	if !start.IsZero() {
		rangeStart = start
	}

	rangeEnd := last.AddDate(0, 0, lookaheadDays)
	if !end.IsZero() {
		rangeEnd = end
	}

	return rangeStart, rangeEnd
}

// loadSimulationConfig reads the simulation config file, or returns the
// default config when no path is given.
func loadSimulationConfig(path string) (backtest.Config, error) {
	config := backtest.DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return backtest.Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return backtest.Config{}, err
	}

	return config, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay detected signals through the portfolio simulation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "signals",
				Aliases:  []string{"i"},
				Usage:    "Path of the signals CSV produced by scan",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the simulation config YAML",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "results",
				Aliases:  []string{"r"},
				Usage:    "Directory for the trade ledger and summary",
				Value:    "results",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "cache",
				Usage:    "Path of the DuckDB bar cache. Empty keeps the cache in memory.",
				Value:    "bars.duckdb",
				Required: false,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Bar range start in `YYYY-MM-DD` format. Use the scan's start date to reuse its cache. Defaults to the earliest signal entry date.",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: false,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "Bar range end in `YYYY-MM-DD` format. Use the scan's end date to reuse its cache. Defaults to the latest signal entry date plus the lookahead.",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: false,
			},
			&cli.BoolFlag{
				Name:     "parquet",
				Usage:    "Also export the ledger as Parquet",
				Required: false,
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
