package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/swing-trading/internal/detector"
	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/pricestore"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/internal/writer"
	pkgerrors "github.com/rxtech-lab/swing-trading/pkg/errors"
)

// scanAction fetches daily bars for every instrument in the universe file,
// runs the detector over each series, and writes the combined signals CSV.
func scanAction(ctx context.Context, cmd *cli.Command) error {
	symbolsPath := cmd.String("symbols")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	configPath := cmd.String("config")
	outputPath := cmd.String("output")
	cachePath := cmd.String("cache")
	delay := cmd.Duration("delay")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	config, err := loadDetectorConfig(configPath)
	if err != nil {
		return err
	}

	instruments, err := writer.ReadInstruments(symbolsPath)
	if err != nil {
		return err
	}

	det, err := detector.NewDetector(config)
	if err != nil {
		return err
	}

	provider := pricestore.NewUpstoxProvider(os.Getenv("UPSTOX_ACCESS_TOKEN"), appLogger)

	store, err := pricestore.NewStore(provider, startDate, endDate, cachePath, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	bar := progressbar.NewOptions(len(instruments),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowCount(),
	)

	var signals []types.Signal

	for i, instrument := range instruments {
		bars, err := store.DailyBars(ctx, instrument.InstrumentKey)
		if err != nil {
			return err
		}

		if len(bars) == 0 {
			appLogger.Warn("No bars for instrument",
				zap.String("symbol", instrument.Symbol),
				zap.String("instrument_key", instrument.InstrumentKey),
			)
			bar.Add(1)

			continue
		}

		detected, err := det.Detect(instrument.Symbol, instrument.InstrumentKey, bars)
		if err != nil {
			if pkgerrors.IsInsufficientBarsError(err) {
				appLogger.Warn("Not enough history for instrument",
					zap.String("symbol", instrument.Symbol),
					zap.Error(err),
				)
				bar.Add(1)

				continue
			}

			return err
		}

		signals = append(signals, detected...)
		bar.Add(1)

		// stay polite to the upstream API between fetches
		if delay > 0 && i < len(instruments)-1 {
			time.Sleep(delay)
		}
	}

	if err := writer.WriteSignals(outputPath, signals); err != nil {
		return err
	}

	appLogger.Info("Scan finished",
		zap.Int("instruments", len(instruments)),
		zap.Int("signals", len(signals)),
		zap.String("output", outputPath),
	)

	return nil
}

// loadDetectorConfig reads the detector config file, or returns the default
// config when no path is given.
func loadDetectorConfig(path string) (detector.Config, error) {
	config := detector.DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return detector.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return detector.Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return detector.Config{}, err
	}

	return config, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "scan",
		Usage: "Detect swing trade signals across a symbol universe",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbols",
				Aliases:  []string{"y"},
				Usage:    "Path to the symbol universe CSV (symbol,instrument_key)",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: false,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the detector config YAML",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the signals CSV to write",
				Value:    "signals.csv",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "cache",
				Usage:    "Path of the DuckDB bar cache. Empty keeps the cache in memory.",
				Value:    "bars.duckdb",
				Required: false,
			},
			&cli.DurationFlag{
				Name:     "delay",
				Usage:    "Pause between instrument fetches",
				Value:    200 * time.Millisecond,
				Required: false,
			},
		},
		Action: scanAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
