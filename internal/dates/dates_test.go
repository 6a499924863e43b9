package dates_test

import (
	"planboard/internal/dates"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay_StripsTimeOfDay(t *testing.T) {
	in := time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)
	got := dates.Day(in)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), got)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local), time.Date(2024, 1, 5, 20, 0, 0, 0, time.Local), 0},
		{"forward", dates.MustDay("2024-01-02"), dates.MustDay("2024-01-19"), 17},
		{"backward", dates.MustDay("2024-01-19"), dates.MustDay("2024-01-02"), -17},
		{"across month", dates.MustDay("2024-01-30"), dates.MustDay("2024-02-02"), 3},
		{"across leap day", dates.MustDay("2024-02-28"), dates.MustDay("2024-03-01"), 2},
		{"late evening vs early morning", time.Date(2024, 1, 1, 23, 30, 0, 0, time.Local), time.Date(2024, 1, 2, 0, 15, 0, 0, time.Local), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dates.DaysBetween(tt.a, tt.b))
		})
	}
}

func TestAddDays(t *testing.T) {
	got := dates.AddDays(time.Date(2024, 1, 31, 15, 0, 0, 0, time.Local), 1)
	assert.Equal(t, "2024-02-01", dates.FormatDay(got))
	assert.Equal(t, 0, got.Hour())
}

func TestParseDay(t *testing.T) {
	d, err := dates.ParseDay("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = dates.ParseDay("01/02/2024")
	assert.Error(t, err)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, dates.IsWeekend(dates.MustDay("2024-01-06")))
	assert.True(t, dates.IsWeekend(dates.MustDay("2024-01-07")))
	assert.False(t, dates.IsWeekend(dates.MustDay("2024-01-08")))
}
