package services

import (
	"math"
	"time"
)

// Pacing labels comparing actual progress against time-expected progress.
const (
	PacingOnTrack = "ON_TRACK"
	PacingBehind  = "BEHIND"
	PacingAhead   = "AHEAD"
)

// DefaultPacingBand is the band in percentage points within which a
// student counts as on track. Deployments tune it via PACING_BAND_PERCENT.
const DefaultPacingBand = 5.0

// PacingInput describes one enrollment for the deviation calculation.
type PacingInput struct {
	CompletedLessons   int
	TotalLessons       int
	EnrollmentDate     time.Time
	CourseDurationDays int
	BandPercent        float64 // <= 0 uses DefaultPacingBand
}

// PacingResult is the deviation outcome for one enrollment.
type PacingResult struct {
	ActualProgressPercent   float64 `json:"actual_progress_percent"`
	ExpectedProgressPercent float64 `json:"expected_progress_percent"`
	Deviation               float64 `json:"deviation"`
	Label                   string  `json:"label"`
}

// CalculatePacing compares actual progress against the progress a
// student should have made given how long they have been enrolled.
//
// Denominators are clamped to at least 1 lesson / 1 day, so a
// misconfigured course never divides by zero. Actual progress is
// clamped to [0,100] even if more lessons were completed than the
// catalog currently reports (the catalog may be stale).
//
// Pure function: nowTime is injected, no clock reads inside.
func CalculatePacing(in PacingInput, nowTime time.Time) PacingResult {
	totalLessons := in.TotalLessons
	if totalLessons < 1 {
		totalLessons = 1
	}
	durationDays := in.CourseDurationDays
	if durationDays < 1 {
		durationDays = 1
	}

	var actual float64
	if in.TotalLessons >= 1 && in.CompletedLessons > 0 {
		actual = float64(in.CompletedLessons) / float64(totalLessons) * 100
	}
	if actual > 100 {
		actual = 100
	}

	daysElapsed := int(math.Floor(nowTime.Sub(in.EnrollmentDate).Hours() / 24))
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	expected := float64(daysElapsed) / float64(durationDays) * 100
	if expected > 100 {
		expected = 100
	}

	deviation := actual - expected

	band := in.BandPercent
	if band <= 0 {
		band = DefaultPacingBand
	}

	label := PacingOnTrack
	if deviation < -band {
		label = PacingBehind
	} else if deviation > band {
		label = PacingAhead
	}

	return PacingResult{
		ActualProgressPercent:   actual,
		ExpectedProgressPercent: expected,
		Deviation:               deviation,
		Label:                   label,
	}
}
