package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) Date {
	return Date{Year: y, Month: m, Day: d}
}

func TestStreakCount(t *testing.T) {
	today := day(2026, time.March, 10)

	t.Run("no history", func(t *testing.T) {
		assert.Equal(t, 0, StreakCount(nil, today))
	})

	t.Run("done today only", func(t *testing.T) {
		assert.Equal(t, 1, StreakCount([]Date{today}, today))
	})

	t.Run("run ending today", func(t *testing.T) {
		dates := []Date{
			day(2026, time.March, 7),
			day(2026, time.March, 8),
			day(2026, time.March, 9),
			today,
		}
		assert.Equal(t, 4, StreakCount(dates, today))
	})

	t.Run("run ending yesterday still counts", func(t *testing.T) {
		dates := []Date{
			day(2026, time.March, 8),
			day(2026, time.March, 9),
		}
		assert.Equal(t, 2, StreakCount(dates, today))
	})

	t.Run("gap limits the run", func(t *testing.T) {
		dates := []Date{
			day(2026, time.March, 5),
			day(2026, time.March, 6),
			// March 7 missed.
			day(2026, time.March, 8),
			day(2026, time.March, 9),
			today,
		}
		assert.Equal(t, 3, StreakCount(dates, today))
	})

	t.Run("missed days go negative", func(t *testing.T) {
		// Last done March 7; the 8th and 9th were missed, today is still open.
		dates := []Date{day(2026, time.March, 7)}
		assert.Equal(t, -2, StreakCount(dates, today))
	})

	t.Run("missed single day", func(t *testing.T) {
		dates := []Date{day(2026, time.March, 8)}
		assert.Equal(t, -1, StreakCount(dates, today))
	})

	t.Run("future entries do not rescue a lapse", func(t *testing.T) {
		dates := []Date{
			day(2026, time.March, 6),
			day(2026, time.March, 14),
		}
		assert.Equal(t, -3, StreakCount(dates, today))
	})
}
