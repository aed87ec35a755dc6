package services

import (
	"context"
	"encoding/json"
	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
	"log"
	"math"
	"sort"
	"strconv"
	"time"
)

// CourseDashboard is the per-enrollment slice of the dashboard
type CourseDashboard struct {
	CourseID                uint       `json:"course_id"`
	CourseTitle             string     `json:"course_title"`
	Status                  string     `json:"status"`
	ActualProgressPercent   float64    `json:"actual_progress_percent"`
	ExpectedProgressPercent float64    `json:"expected_progress_percent"`
	Deviation               float64    `json:"deviation"`
	PacingLabel             string     `json:"pacing_label"`
	CurrentStreakDays       int        `json:"current_streak_days"`
	LongestStreakDays       int        `json:"longest_streak_days"`
	TotalPoints             int        `json:"total_points"`
	TimeSpentMinutes        int        `json:"time_spent_minutes"`
	LastActivityAt          *time.Time `json:"last_activity_at"`
	EstimatedDaysToFinish   int        `json:"estimated_days_to_finish"`
}

// DashboardSummary is the student-wide progress document
type DashboardSummary struct {
	UserID                uint              `json:"user_id"`
	TotalCourses          int               `json:"total_courses"`
	ActiveCourses         int               `json:"active_courses"`
	CompletedCourses      int               `json:"completed_courses"`
	AverageProgress       float64           `json:"average_progress"`
	TotalTimeSpentMinutes int               `json:"total_time_spent_minutes"`
	TotalPoints           int               `json:"total_points"`
	BestCurrentStreakDays int               `json:"best_current_streak_days"`
	BestLongestStreakDays int               `json:"best_longest_streak_days"`
	Courses               []CourseDashboard `json:"courses"`
}

// CourseProgress is the single-course progress view
type CourseProgress struct {
	PacingResult
	Streak           StreakResult `json:"streak"`
	Status           string       `json:"status"`
	CompletedLessons int          `json:"completed_lessons"`
	TotalLessons     int          `json:"total_lessons"`
	TotalPoints      int          `json:"total_points"`
}

func dashboardCacheKey(userID uint) string {
	return "dashboard:" + strconv.FormatUint(uint64(userID), 10)
}

// GetDashboard returns the student dashboard, served from Redis when a
// fresh copy exists. The cached document is identical to a rebuilt one
// as long as no write invalidated it.
func GetDashboard(userID uint, nowTime time.Time) (*DashboardSummary, error) {
	ttl := time.Duration(config.AppConfig.DashboardCacheTTLMin) * time.Minute

	if database.Cache != nil && ttl > 0 {
		cached, err := database.Cache.Get(context.Background(), dashboardCacheKey(userID)).Bytes()
		if err == nil {
			var summary DashboardSummary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary, err := BuildDashboard(userID, nowTime)
	if err != nil {
		return nil, err
	}

	if database.Cache != nil && ttl > 0 {
		if encoded, err := json.Marshal(summary); err == nil {
			if err := database.Cache.Set(context.Background(), dashboardCacheKey(userID), encoded, ttl).Err(); err != nil {
				log.Printf("Failed to cache dashboard for user %d: %v", userID, err)
			}
		}
	}

	return summary, nil
}

// InvalidateDashboard drops the cached dashboard after a write.
// Cache failures are ignored, a stale entry ages out via TTL.
func InvalidateDashboard(userID uint) {
	if database.Cache == nil {
		return
	}
	if err := database.Cache.Del(context.Background(), dashboardCacheKey(userID)).Err(); err != nil {
		log.Printf("Failed to invalidate dashboard cache for user %d: %v", userID, err)
	}
}

// BuildDashboard recomputes the full dashboard from the enrollment
// summaries and the completion event log. Course entries are ordered
// by last activity (newest first, course id as tie break) so repeated
// builds over unchanged data produce identical output.
func BuildDashboard(userID uint, nowTime time.Time) (*DashboardSummary, error) {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).Find(&enrollments).Error; err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		UserID:  userID,
		Courses: make([]CourseDashboard, 0, len(enrollments)),
	}

	progressSum := 0.0
	for i := range enrollments {
		entry := buildCourseEntry(&enrollments[i], nowTime)
		summary.Courses = append(summary.Courses, entry)

		summary.TotalCourses++
		switch entry.Status {
		case courseModels.StatusActive:
			summary.ActiveCourses++
		case courseModels.StatusCompleted:
			summary.CompletedCourses++
		}
		progressSum += entry.ActualProgressPercent
		summary.TotalTimeSpentMinutes += entry.TimeSpentMinutes
		summary.TotalPoints += entry.TotalPoints
		if entry.CurrentStreakDays > summary.BestCurrentStreakDays {
			summary.BestCurrentStreakDays = entry.CurrentStreakDays
		}
		if entry.LongestStreakDays > summary.BestLongestStreakDays {
			summary.BestLongestStreakDays = entry.LongestStreakDays
		}
	}

	if summary.TotalCourses > 0 {
		// Simple mean across enrollments, not weighted by course size
		summary.AverageProgress = progressSum / float64(summary.TotalCourses)
	}

	sort.SliceStable(summary.Courses, func(i, j int) bool {
		a, b := summary.Courses[i].LastActivityAt, summary.Courses[j].LastActivityAt
		if a == nil && b == nil {
			return summary.Courses[i].CourseID > summary.Courses[j].CourseID
		}
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if !a.Equal(*b) {
			return a.After(*b)
		}
		return summary.Courses[i].CourseID > summary.Courses[j].CourseID
	})

	return summary, nil
}

// buildCourseEntry derives the dashboard slice for one enrollment
func buildCourseEntry(enrollment *courseModels.Enrollment, nowTime time.Time) CourseDashboard {
	db := database.Database.Db

	// The catalog row may lag or be gone; treat it as stale metadata,
	// never as a reason to drop the enrollment from the dashboard
	var course courseModels.Course
	courseTitle := ""
	durationDays := 0
	if err := db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err == nil {
		courseTitle = course.Title
		durationDays = course.DurationDays
	}

	var completions []courseModels.LessonCompletion
	db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", enrollment.UserID, enrollment.CourseID, false).
		Find(&completions)

	timestamps := make([]time.Time, len(completions))
	recentCount := 0
	weekAgo := nowTime.Add(-7 * 24 * time.Hour)
	for i := range completions {
		timestamps[i] = completions[i].CompletedAt
		if completions[i].CompletedAt.After(weekAgo) {
			recentCount++
		}
	}

	streak := CalculateStreaks(timestamps, nowTime)

	pacing := CalculatePacing(PacingInput{
		CompletedLessons:   enrollment.CompletedLessons,
		TotalLessons:       enrollment.TotalLessons,
		EnrollmentDate:     enrollment.CreatedAt,
		CourseDurationDays: durationDays,
		BandPercent:        config.AppConfig.PacingBandPercent,
	}, nowTime)

	return CourseDashboard{
		CourseID:                enrollment.CourseID,
		CourseTitle:             courseTitle,
		Status:                  enrollment.Status,
		ActualProgressPercent:   pacing.ActualProgressPercent,
		ExpectedProgressPercent: pacing.ExpectedProgressPercent,
		Deviation:               pacing.Deviation,
		PacingLabel:             pacing.Label,
		CurrentStreakDays:       streak.CurrentStreakDays,
		LongestStreakDays:       streak.LongestStreakDays,
		TotalPoints:             enrollment.TotalPoints,
		TimeSpentMinutes:        enrollment.TimeSpentMinutes,
		LastActivityAt:          enrollment.LastActivityAt,
		EstimatedDaysToFinish:   estimateDaysToFinish(pacing.ActualProgressPercent, enrollment.TotalLessons, recentCount, durationDays),
	}
}

// estimateDaysToFinish projects remaining work over the last week's
// completion velocity. With no recent activity it falls back to a
// duration-based estimate instead of dividing by zero.
func estimateDaysToFinish(actualPercent float64, totalLessons, completionsLastWeek, durationDays int) int {
	remainingPercent := 100 - actualPercent
	if remainingPercent <= 0 {
		return 0
	}

	if totalLessons < 1 {
		totalLessons = 1
	}
	percentPerLesson := 100.0 / float64(totalLessons)
	velocityPercentPerDay := float64(completionsLastWeek) / 7.0 * percentPerLesson

	if velocityPercentPerDay > 0 {
		return int(math.Ceil(remainingPercent / velocityPercentPerDay))
	}

	if durationDays < 1 {
		durationDays = 1
	}
	return int(math.Ceil(remainingPercent / 100 * float64(durationDays)))
}

// GetCourseProgress returns the single-course progress view. If the
// summary row drifted from the event log it is reconciled first, so
// reads never serve counts the events cannot back.
func GetCourseProgress(userID, courseID uint, nowTime time.Time) (*CourseProgress, error) {
	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return nil, ErrEnrollmentNotFound
	}

	var eventCount int64
	db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Count(&eventCount)
	if int(eventCount) != enrollment.CompletedLessons {
		if err := ReconcileEnrollment(db, enrollment.ID, nowTime); err != nil {
			return nil, err
		}
		if err := db.Where("id = ?", enrollment.ID).First(&enrollment).Error; err != nil {
			return nil, err
		}
	}

	var course courseModels.Course
	durationDays := 0
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err == nil {
		durationDays = course.DurationDays
	}

	var completions []courseModels.LessonCompletion
	db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).Find(&completions)
	timestamps := make([]time.Time, len(completions))
	for i := range completions {
		timestamps[i] = completions[i].CompletedAt
	}

	pacing := CalculatePacing(PacingInput{
		CompletedLessons:   enrollment.CompletedLessons,
		TotalLessons:       enrollment.TotalLessons,
		EnrollmentDate:     enrollment.CreatedAt,
		CourseDurationDays: durationDays,
		BandPercent:        config.AppConfig.PacingBandPercent,
	}, nowTime)

	return &CourseProgress{
		PacingResult:     pacing,
		Streak:           CalculateStreaks(timestamps, nowTime),
		Status:           enrollment.Status,
		CompletedLessons: enrollment.CompletedLessons,
		TotalLessons:     enrollment.TotalLessons,
		TotalPoints:      enrollment.TotalPoints,
	}, nil
}
