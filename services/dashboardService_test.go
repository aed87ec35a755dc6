package services

import (
	"testing"
	"time"

	"lms/config"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDashboardEmpty(t *testing.T) {
	setupTestDB(t)

	summary, err := BuildDashboard(1, testNow)
	require.NoError(t, err)

	assert.Equal(t, uint(1), summary.UserID)
	assert.Equal(t, 0, summary.TotalCourses)
	assert.Equal(t, 0.0, summary.AverageProgress)
	assert.Empty(t, summary.Courses)
}

func TestBuildDashboardRollUps(t *testing.T) {
	db := setupTestDB(t)
	first, firstLessons := seedCourse(t, db, 20, 2)
	second, _ := seedCourse(t, db, 30, 10)

	_, err := EnrollUser(1, first.ID, testNow)
	require.NoError(t, err)
	_, err = EnrollUser(1, second.ID, testNow)
	require.NoError(t, err)

	// Finish the first course entirely
	_, err = MarkLessonComplete(1, first.ID, firstLessons[0].ID, 20, testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	_, err = MarkLessonComplete(1, first.ID, firstLessons[1].ID, 20, testNow)
	require.NoError(t, err)

	summary, err := BuildDashboard(1, testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalCourses)
	assert.Equal(t, 1, summary.CompletedCourses)
	assert.Equal(t, 0, summary.ActiveCourses) // second course untouched, still ENROLLED
	assert.InDelta(t, 50.0, summary.AverageProgress, 0.001)
	assert.Equal(t, 40, summary.TotalTimeSpentMinutes)

	expectedPoints := 2*config.AppConfig.PointsEnrollment + 2*config.AppConfig.PointsLesson + config.AppConfig.PointsCourseBonus
	assert.Equal(t, expectedPoints, summary.TotalPoints)

	// Two consecutive days of activity on the first course
	assert.Equal(t, 2, summary.BestCurrentStreakDays)
	assert.Equal(t, 2, summary.BestLongestStreakDays)
}

func TestBuildDashboardOrdering(t *testing.T) {
	db := setupTestDB(t)
	first, firstLessons := seedCourse(t, db, 20, 5)
	second, secondLessons := seedCourse(t, db, 20, 5)
	third, _ := seedCourse(t, db, 20, 5)

	for _, c := range []uint{first.ID, second.ID, third.ID} {
		_, err := EnrollUser(1, c, testNow)
		require.NoError(t, err)
	}

	// Older activity on the first course, newer on the second, none on
	// the third
	_, err := MarkLessonComplete(1, first.ID, firstLessons[0].ID, 10, testNow.Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = MarkLessonComplete(1, second.ID, secondLessons[0].ID, 10, testNow)
	require.NoError(t, err)

	summary, err := BuildDashboard(1, testNow)
	require.NoError(t, err)
	require.Len(t, summary.Courses, 3)

	assert.Equal(t, second.ID, summary.Courses[0].CourseID)
	assert.Equal(t, first.ID, summary.Courses[1].CourseID)
	// No activity sorts last
	assert.Equal(t, third.ID, summary.Courses[2].CourseID)
	assert.Nil(t, summary.Courses[2].LastActivityAt)
}

func TestBuildDashboardSurvivesMissingCourseRow(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	// Catalog row soft-deleted after enrollment
	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", course.ID).Update("is_deleted", true).Error)

	summary, err := BuildDashboard(1, testNow)
	require.NoError(t, err)
	require.Len(t, summary.Courses, 1)
	assert.Equal(t, course.ID, summary.Courses[0].CourseID)
	assert.Equal(t, "", summary.Courses[0].CourseTitle)
}

func TestEstimateDaysToFinish(t *testing.T) {
	setupTestDB(t)

	// 50% remaining, 7 completions last week on a 10-lesson course:
	// velocity is 10%/day, so 5 days
	assert.Equal(t, 5, estimateDaysToFinish(50, 10, 7, 30))

	// Done already
	assert.Equal(t, 0, estimateDaysToFinish(100, 10, 7, 30))

	// No recent activity: fall back to the duration-based estimate
	assert.Equal(t, 15, estimateDaysToFinish(50, 10, 0, 30))

	// No duration either: at least a day
	assert.Equal(t, 1, estimateDaysToFinish(50, 10, 0, 0))
}

func TestGetDashboardWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	// With Redis disconnected the dashboard is rebuilt on every read
	summary, err := GetDashboard(1, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCourses)

	again, err := GetDashboard(1, testNow)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

func TestGetCourseProgress(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	_, err = MarkLessonComplete(1, course.ID, lessons[0].ID, 10, testNow)
	require.NoError(t, err)
	_, err = MarkLessonComplete(1, course.ID, lessons[1].ID, 10, testNow)
	require.NoError(t, err)

	progress, err := GetCourseProgress(1, course.ID, testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, progress.CompletedLessons)
	assert.Equal(t, 10, progress.TotalLessons)
	assert.InDelta(t, 20.0, progress.ActualProgressPercent, 0.001)
	assert.Equal(t, courseModels.StatusActive, progress.Status)
	assert.Equal(t, 1, progress.Streak.CurrentStreakDays)
	assert.Equal(t, config.AppConfig.PointsEnrollment+2*config.AppConfig.PointsLesson, progress.TotalPoints)
}

func TestGetCourseProgressReconcilesOnRead(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := MarkLessonComplete(1, course.ID, lessons[i].ID, 10, testNow)
		require.NoError(t, err)
	}

	// Summary drifts from the event log
	require.NoError(t, db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", 1, course.ID).
		Update("completed_lessons", 1).Error)

	progress, err := GetCourseProgress(1, course.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.CompletedLessons)
	assert.InDelta(t, 30.0, progress.ActualProgressPercent, 0.001)
}

func TestGetCourseProgressNotEnrolled(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)

	_, err := GetCourseProgress(1, course.ID, testNow)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}
