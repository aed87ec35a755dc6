package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePacingAheadOfSchedule(t *testing.T) {
	// Enrolled 10 days ago in a 20 day course, 6 of 10 lessons done.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   6,
		TotalLessons:       10,
		EnrollmentDate:     now.AddDate(0, 0, -10),
		CourseDurationDays: 20,
	}, now)

	assert.Equal(t, 60.0, result.ActualProgressPercent)
	assert.Equal(t, 50.0, result.ExpectedProgressPercent)
	assert.Equal(t, 10.0, result.Deviation)
	assert.Equal(t, PacingAhead, result.Label)
}

func TestCalculatePacingFreshEnrollmentOnTrack(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   0,
		TotalLessons:       10,
		EnrollmentDate:     now,
		CourseDurationDays: 20,
	}, now)

	assert.Equal(t, 0.0, result.ActualProgressPercent)
	assert.Equal(t, 0.0, result.ExpectedProgressPercent)
	assert.Equal(t, PacingOnTrack, result.Label)
}

func TestCalculatePacingBehindSchedule(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   1,
		TotalLessons:       10,
		EnrollmentDate:     now.AddDate(0, 0, -10),
		CourseDurationDays: 20,
	}, now)

	assert.Equal(t, 10.0, result.ActualProgressPercent)
	assert.Equal(t, 50.0, result.ExpectedProgressPercent)
	assert.Equal(t, -40.0, result.Deviation)
	assert.Equal(t, PacingBehind, result.Label)
}

func TestCalculatePacingZeroTotalLessons(t *testing.T) {
	// Misconfigured course: no divide by zero, actual stays 0.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   3,
		TotalLessons:       0,
		EnrollmentDate:     now.AddDate(0, 0, -1),
		CourseDurationDays: 0,
	}, now)

	assert.Equal(t, 0.0, result.ActualProgressPercent)
	assert.LessOrEqual(t, result.ExpectedProgressPercent, 100.0)
}

func TestCalculatePacingProgressClampedAtHundred(t *testing.T) {
	// Stale catalog: more completions than the course reports lessons.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   12,
		TotalLessons:       10,
		EnrollmentDate:     now.AddDate(0, 0, -5),
		CourseDurationDays: 20,
	}, now)

	assert.Equal(t, 100.0, result.ActualProgressPercent)
}

func TestCalculatePacingFutureEnrollmentClamped(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   0,
		TotalLessons:       10,
		EnrollmentDate:     now.AddDate(0, 0, 2),
		CourseDurationDays: 20,
	}, now)

	assert.Equal(t, 0.0, result.ExpectedProgressPercent)
	assert.Equal(t, PacingOnTrack, result.Label)
}

func TestCalculatePacingExpectedCappedAtHundred(t *testing.T) {
	// Enrolled far past the course duration.
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	result := CalculatePacing(PacingInput{
		CompletedLessons:   2,
		TotalLessons:       10,
		EnrollmentDate:     now.AddDate(0, 0, -60),
		CourseDurationDays: 20,
	}, now)

	assert.Equal(t, 100.0, result.ExpectedProgressPercent)
	assert.Equal(t, PacingBehind, result.Label)
}

func TestCalculatePacingBandEdges(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	enrolled := now.AddDate(0, 0, -10)

	cases := []struct {
		name      string
		completed int
		total     int
		label     string
	}{
		// 10 days into a 20 day course: expected is 50%.
		{"exactly on band edge ahead", 11, 20, PacingOnTrack},  // 55 - 50 = +5
		{"exactly on band edge behind", 9, 20, PacingOnTrack},  // 45 - 50 = -5
		{"just outside band ahead", 12, 20, PacingAhead},       // 60 - 50 = +10
		{"just outside band behind", 8, 20, PacingBehind},      // 40 - 50 = -10
		{"dead on expected", 10, 20, PacingOnTrack},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := CalculatePacing(PacingInput{
				CompletedLessons:   tc.completed,
				TotalLessons:       tc.total,
				EnrollmentDate:     enrolled,
				CourseDurationDays: 20,
				BandPercent:        5,
			}, now)

			assert.Equal(t, tc.label, result.Label)
		})
	}
}

func TestCalculatePacingCustomBand(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	in := PacingInput{
		CompletedLessons:   12,
		TotalLessons:       20,
		EnrollmentDate:     now.AddDate(0, 0, -10),
		CourseDurationDays: 20,
	}

	// Deviation is +10: outside the default band, inside a wider one.
	in.BandPercent = 0
	assert.Equal(t, PacingAhead, CalculatePacing(in, now).Label)

	in.BandPercent = 15
	assert.Equal(t, PacingOnTrack, CalculatePacing(in, now).Label)
}

func TestCalculatePacingDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	in := PacingInput{
		CompletedLessons:   7,
		TotalLessons:       15,
		EnrollmentDate:     now.AddDate(0, 0, -4),
		CourseDurationDays: 30,
	}

	first := CalculatePacing(in, now)
	second := CalculatePacing(in, now)

	assert.Equal(t, first, second)
}
