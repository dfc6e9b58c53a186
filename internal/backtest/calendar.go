package backtest

import (
	"sort"
	"time"
)

// BusinessDays returns every weekday from start through end inclusive,
// normalized to midnight UTC. Exchange holidays are not modeled; a holiday
// simply has no bar and the day becomes a no-op for that instrument.
func BusinessDays(start time.Time, end time.Time) []time.Time {
	var days []time.Time

	for day := normalizeDate(start); !day.After(normalizeDate(end)); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		days = append(days, day)
	}

	return days
}

// MergeDates returns the sorted union of days and extra, normalized to
// midnight UTC. Exchanges hold occasional weekend special sessions, so an
// entry date is not necessarily a weekday; folding the entry dates into the
// weekday grid guarantees every signal's entry date is visited.
func MergeDates(days []time.Time, extra []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(days)+len(extra))
	merged := make([]time.Time, 0, len(days)+len(extra))

	for _, group := range [][]time.Time{days, extra} {
		for _, day := range group {
			day = normalizeDate(day)
			if _, ok := seen[day]; ok {
				continue
			}

			seen[day] = struct{}{}
			merged = append(merged, day)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Before(merged[j])
	})

	return merged
}

// normalizeDate truncates a timestamp to its UTC calendar date.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
