package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return parsed
}

func TestCalculateStreaksEmpty(t *testing.T) {
	result := CalculateStreaks(nil, time.Now())

	assert.Equal(t, 0, result.CurrentStreakDays)
	assert.Equal(t, 0, result.LongestStreakDays)
}

func TestCalculateStreaksSingleToday(t *testing.T) {
	now := day(t, "2026-03-10T15:00:00Z")

	result := CalculateStreaks([]time.Time{now.Add(-2 * time.Hour)}, now)

	assert.Equal(t, 1, result.CurrentStreakDays)
	assert.Equal(t, 1, result.LongestStreakDays)
}

func TestCalculateStreaksGapBreaksCurrent(t *testing.T) {
	// Completions on days 1,2,3 then a gap, then day 6 (today).
	now := day(t, "2026-03-06T20:00:00Z")
	completions := []time.Time{
		day(t, "2026-03-01T09:00:00Z"),
		day(t, "2026-03-02T09:30:00Z"),
		day(t, "2026-03-03T22:00:00Z"),
		day(t, "2026-03-06T08:00:00Z"),
	}

	result := CalculateStreaks(completions, now)

	assert.Equal(t, 1, result.CurrentStreakDays)
	assert.Equal(t, 3, result.LongestStreakDays)
}

func TestCalculateStreaksBrokenStreakReportsZero(t *testing.T) {
	// Last activity three days ago: the run does not count as current.
	now := day(t, "2026-03-10T12:00:00Z")
	completions := []time.Time{
		day(t, "2026-03-05T10:00:00Z"),
		day(t, "2026-03-06T10:00:00Z"),
		day(t, "2026-03-07T10:00:00Z"),
	}

	result := CalculateStreaks(completions, now)

	assert.Equal(t, 0, result.CurrentStreakDays)
	assert.Equal(t, 3, result.LongestStreakDays)
}

func TestCalculateStreaksYesterdayAnchorsCurrent(t *testing.T) {
	now := day(t, "2026-03-10T07:00:00Z")
	completions := []time.Time{
		day(t, "2026-03-08T23:00:00Z"),
		day(t, "2026-03-09T06:00:00Z"),
	}

	result := CalculateStreaks(completions, now)

	assert.Equal(t, 2, result.CurrentStreakDays)
	assert.Equal(t, 2, result.LongestStreakDays)
}

func TestCalculateStreaksSameDayDeduplicated(t *testing.T) {
	now := day(t, "2026-03-10T18:00:00Z")
	completions := []time.Time{
		day(t, "2026-03-10T08:00:00Z"),
		day(t, "2026-03-10T09:00:00Z"),
		day(t, "2026-03-10T17:00:00Z"),
		day(t, "2026-03-09T12:00:00Z"),
	}

	result := CalculateStreaks(completions, now)

	assert.Equal(t, 2, result.CurrentStreakDays)
	assert.Equal(t, 2, result.LongestStreakDays)
}

func TestCalculateStreaksOrderIndependent(t *testing.T) {
	now := day(t, "2026-03-10T18:00:00Z")
	ordered := []time.Time{
		day(t, "2026-03-01T10:00:00Z"),
		day(t, "2026-03-02T10:00:00Z"),
		day(t, "2026-03-03T10:00:00Z"),
		day(t, "2026-03-09T10:00:00Z"),
		day(t, "2026-03-10T10:00:00Z"),
	}
	shuffled := []time.Time{
		day(t, "2026-03-09T10:00:00Z"),
		day(t, "2026-03-03T10:00:00Z"),
		day(t, "2026-03-10T10:00:00Z"),
		day(t, "2026-03-01T10:00:00Z"),
		day(t, "2026-03-02T10:00:00Z"),
	}

	first := CalculateStreaks(ordered, now)
	second := CalculateStreaks(shuffled, now)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.CurrentStreakDays)
	assert.Equal(t, 3, first.LongestStreakDays)
}

func TestCalculateStreaksLongestNeverBelowCurrent(t *testing.T) {
	now := day(t, "2026-03-10T18:00:00Z")
	cases := [][]time.Time{
		{day(t, "2026-03-10T10:00:00Z")},
		{day(t, "2026-03-09T10:00:00Z"), day(t, "2026-03-10T10:00:00Z")},
		{day(t, "2026-03-01T10:00:00Z"), day(t, "2026-03-05T10:00:00Z"), day(t, "2026-03-10T10:00:00Z")},
		{day(t, "2026-02-01T10:00:00Z"), day(t, "2026-02-02T10:00:00Z"), day(t, "2026-02-03T10:00:00Z"), day(t, "2026-02-04T10:00:00Z")},
	}

	for _, completions := range cases {
		result := CalculateStreaks(completions, now)
		assert.GreaterOrEqual(t, result.LongestStreakDays, result.CurrentStreakDays)
	}
}

func TestCalculateStreaksIgnoresFutureDays(t *testing.T) {
	now := day(t, "2026-03-20T12:00:00Z")

	// A clock-skewed completion two days out must not anchor a streak
	result := CalculateStreaks([]time.Time{
		day(t, "2026-03-20T09:00:00Z"),
		day(t, "2026-03-22T09:00:00Z"),
	}, now)

	assert.Equal(t, 1, result.CurrentStreakDays)
	assert.Equal(t, 1, result.LongestStreakDays)

	onlyFuture := CalculateStreaks([]time.Time{day(t, "2026-03-25T09:00:00Z")}, now)

	assert.Equal(t, 0, onlyFuture.CurrentStreakDays)
	assert.Equal(t, 0, onlyFuture.LongestStreakDays)
}
