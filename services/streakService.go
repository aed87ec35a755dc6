package services

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
)

// StreakResult holds the derived streak values for one student.
type StreakResult struct {
	CurrentStreakDays int `json:"current_streak_days"`
	LongestStreakDays int `json:"longest_streak_days"`
}

// CalculateStreaks derives the current and longest consecutive-day
// streaks from a set of completion timestamps. Day boundaries are UTC
// calendar days; multiple completions on the same day count once.
//
// The current streak only counts if the most recent active day is
// today or yesterday relative to nowTime. A streak that ended earlier
// is already broken and reports 0.
//
// Pure function: the caller injects nowTime, input order does not
// matter, and zero timestamps yield zero streaks.
func CalculateStreaks(completedAt []time.Time, nowTime time.Time) StreakResult {
	if len(completedAt) == 0 {
		return StreakResult{}
	}

	today := now.With(nowTime.UTC()).BeginningOfDay()

	// Normalize every timestamp to the start of its UTC day and
	// deduplicate. Days after today are skipped: a clock-skewed event
	// must not anchor a streak before its day arrives.
	seen := make(map[int64]bool, len(completedAt))
	days := make([]time.Time, 0, len(completedAt))
	for _, t := range completedAt {
		day := now.With(t.UTC()).BeginningOfDay()
		if day.After(today) {
			continue
		}
		if !seen[day.Unix()] {
			seen[day.Unix()] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return StreakResult{}
	}

	// Most recent day first
	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	longest := 1
	current := 0

	// The run anchored at the most recent active day counts as the
	// current streak only while that day is today or yesterday
	headGap := int(today.Sub(days[0]).Hours() / 24)
	counting := headGap <= 1

	run := 1
	if counting {
		current = 1
	}

	for i := 1; i < len(days); i++ {
		gap := int(days[i-1].Sub(days[i]).Hours() / 24)
		if gap == 1 {
			run++
			if counting {
				current = run
			}
		} else {
			run = 1
			counting = false
		}
		if run > longest {
			longest = run
		}
	}

	return StreakResult{
		CurrentStreakDays: current,
		LongestStreakDays: longest,
	}
}
