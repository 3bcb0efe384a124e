package paper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextWeekStart(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)

	testCases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "sunday rolls to tomorrow",
			now:  time.Date(2026, 8, 23, 6, 0, 0, 0, loc),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, loc),
		},
		{
			name: "monday rolls a full week",
			now:  time.Date(2026, 8, 24, 0, 0, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 0, 0, 0, loc),
		},
		{
			name: "midweek rolls to next monday",
			now:  time.Date(2026, 8, 26, 18, 30, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 0, 0, 0, loc),
		},
		{
			name: "saturday night rolls past sunday",
			now:  time.Date(2026, 8, 29, 23, 59, 59, 0, loc),
			want: time.Date(2026, 8, 31, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextWeekStart(tc.now)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
			assert.True(t, got.After(tc.now), "week start must be strictly in the future")
		})
	}

	t.Run("always a future monday midnight", func(t *testing.T) {
		base := time.Date(2026, 1, 1, 15, 4, 5, 0, loc)
		for day := 0; day < 14; day++ {
			now := base.AddDate(0, 0, day)
			got := NextWeekStart(now)
			assert.Equal(t, time.Monday, got.Weekday())
			assert.Equal(t, 0, got.Hour())
			assert.Equal(t, 0, got.Minute())
			assert.True(t, got.After(now))
			assert.LessOrEqual(t, got.Sub(now), 7*24*time.Hour)
		}
	})
}

func TestStartOfWeek(t *testing.T) {
	loc := time.UTC

	testCases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "monday is its own week start",
			now:  time.Date(2026, 8, 24, 10, 0, 0, 0, loc),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, loc),
		},
		{
			name: "friday backs up to monday",
			now:  time.Date(2026, 8, 28, 10, 0, 0, 0, loc),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, loc),
		},
		{
			name: "sunday belongs to the week behind it",
			now:  time.Date(2026, 8, 30, 23, 0, 0, 0, loc),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfWeek(tc.now)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}
