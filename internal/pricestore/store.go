package pricestore

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/swing-trading/internal/logger"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
)

// Store serves daily bars for a fixed date range. Lookups go memory first,
// then the DuckDB cache, then the provider; every provider fetch is written
// through to the cache so later runs over the same range stay offline.
type Store struct {
	provider Provider
	logger   *logger.Logger
	db       *sql.DB
	sq       squirrel.StatementBuilderType
	start    time.Time
	end      time.Time

	mu     sync.RWMutex
	memory map[string][]types.Bar
}

// NewStore opens (or creates) the cache database at cachePath. An empty
// cachePath keeps the cache in memory only, which means it dies with the
// process.
func NewStore(provider Provider, start time.Time, end time.Time, cachePath string, log *logger.Logger) (*Store, error) {
	if end.Before(start) {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	dsn := cachePath
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to open bar cache", err)
	}

	store := &Store{
		provider: provider,
		logger:   log,
		db:       db,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		start:    start,
		end:      end,
		memory:   make(map[string][]types.Bar),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_bars (
			instrument_key TEXT,
			range_start TIMESTAMP,
			range_end TIMESTAMP,
			bar_time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to create bar cache table", err)
	}

	return nil
}

// DailyBars returns the instrument's bars over the store's range, oldest
// first. The result may be empty when the instrument never traded in the
// range; that is not an error here.
func (s *Store) DailyBars(ctx context.Context, instrumentKey string) ([]types.Bar, error) {
	s.mu.RLock()
	bars, ok := s.memory[instrumentKey]
	s.mu.RUnlock()

	if ok {
		return bars, nil
	}

	bars, hit, err := s.loadCached(instrumentKey)
	if err != nil {
		return nil, err
	}

	if !hit {
		bars, err = s.provider.FetchDailyBars(ctx, instrumentKey, s.start, s.end)
		if err != nil {
			return nil, err
		}

		if err := s.saveCached(instrumentKey, bars); err != nil {
			return nil, err
		}

		s.logger.Debug("Cached daily bars",
			zap.String("instrument_key", instrumentKey),
			zap.Int("bars", len(bars)),
		)
	}

	s.mu.Lock()
	s.memory[instrumentKey] = bars
	s.mu.Unlock()

	return bars, nil
}

// loadCached reads the cached bars of one instrument for the store's exact
// range. A range mismatch is a miss, never a partial answer.
func (s *Store) loadCached(instrumentKey string) ([]types.Bar, bool, error) {
	selectQuery := s.sq.
		Select("bar_time", "open", "high", "low", "close", "volume").
		From("daily_bars").
		Where(squirrel.Eq{
			"instrument_key": instrumentKey,
			"range_start":    s.start,
			"range_end":      s.end,
		}).
		OrderBy("bar_time ASC").
		RunWith(s.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCacheReadFailed, "failed to query bar cache", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		bar := types.Bar{InstrumentKey: instrumentKey}

		err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeCacheReadFailed, "failed to scan cached bar", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err = rows.Err(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCacheReadFailed, "error iterating bar cache", err)
	}

	if len(bars) == 0 {
		return nil, false, nil
	}

	return bars, true, nil
}

// saveCached writes one instrument's bars for the store's range in a single
// transaction.
func (s *Store) saveCached(instrumentKey string, bars []types.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to begin cache transaction", err)
	}

	insertQuery := s.sq.
		Insert("daily_bars").
		Columns("instrument_key", "range_start", "range_end", "bar_time", "open", "high", "low", "close", "volume")

	for _, bar := range bars {
		insertQuery = insertQuery.Values(
			instrumentKey, s.start, s.end, bar.Time,
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		)
	}

	if _, err := insertQuery.RunWith(tx).Exec(); err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to insert cached bars", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeCacheUnavailable, "failed to commit bar cache", err)
	}

	return nil
}

// Close closes the cache database.
func (s *Store) Close() error {
	return s.db.Close()
}
