package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rxtech-lab/swing-trading/internal/types"
)

func TestStoreRange(t *testing.T) {
	earliest := time.Date(2023, 6, 16, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	signals := []types.Signal{
		{Symbol: "AAA", EntryDate: latest},
		{Symbol: "BBB", EntryDate: earliest},
	}

	t.Run("derived from signals plus lookahead", func(t *testing.T) {
		start, end := storeRange(signals, time.Time{}, time.Time{}, 80)
		assert.Equal(t, earliest, start)
		assert.Equal(t, latest.AddDate(0, 0, 80), end)
	})

	t.Run("explicit dates win so the scan cache is reused", func(t *testing.T) {
		scanStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		scanEnd := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

		start, end := storeRange(signals, scanStart, scanEnd, 80)
		assert.Equal(t, scanStart, start)
		assert.Equal(t, scanEnd, end)
	})

	t.Run("explicit start only", func(t *testing.T) {
		scanStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

		start, end := storeRange(signals, scanStart, time.Time{}, 10)
		assert.Equal(t, scanStart, start)
		assert.Equal(t, latest.AddDate(0, 0, 10), end)
	})
}
