package services

import (
	"testing"

	"lms/config"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAwardFirstApplication(t *testing.T) {
	db := setupTestDB(t)

	applied, total, err := ApplyAward(db, 1, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)

	assert.True(t, applied)
	assert.Equal(t, 10, total)
}

func TestApplyAwardReplayedEventIsNoOp(t *testing.T) {
	db := setupTestDB(t)

	applied, total, err := ApplyAward(db, 1, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, 10, total)

	// Same event again: nothing inserted, total unchanged
	applied, total, err = ApplyAward(db, 1, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 10, total)

	var count int64
	db.Model(&courseModels.PointAward{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApplyAwardDistinctEventsAccumulate(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := ApplyAward(db, 1, 1, "enroll:1", courseModels.AwardEnrollment, 50)
	require.NoError(t, err)
	_, _, err = ApplyAward(db, 1, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)
	applied, total, err := ApplyAward(db, 1, 1, "lesson:11", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)

	assert.True(t, applied)
	assert.Equal(t, 70, total)
}

func TestApplyAwardScopedPerUser(t *testing.T) {
	db := setupTestDB(t)

	// The same event id for two users is two separate ledger rows
	applied, total, err := ApplyAward(db, 1, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 10, total)

	applied, total, err = ApplyAward(db, 2, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 10, total)
}

func TestCoursePointsScopedPerCourse(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := ApplyAward(db, 1, 1, "enroll:1", courseModels.AwardEnrollment, 50)
	require.NoError(t, err)
	_, _, err = ApplyAward(db, 1, 1, "lesson:10", courseModels.AwardLessonCompletion, 10)
	require.NoError(t, err)
	_, _, err = ApplyAward(db, 1, 2, "enroll:2", courseModels.AwardEnrollment, 50)
	require.NoError(t, err)

	points, err := CoursePoints(db, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, points)

	points, err = CoursePoints(db, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 50, points)

	points, err = CoursePoints(db, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, 0, points)
}

func TestQuizPassPoints(t *testing.T) {
	setupTestDB(t)

	assert.Equal(t, 10, QuizPassPoints(100))
	assert.Equal(t, 8, QuizPassPoints(85))
	assert.Equal(t, 7, QuizPassPoints(70))

	// Low percentages are floored at the configured minimum
	assert.Equal(t, config.AppConfig.PointsQuizPassMin, QuizPassPoints(10))
	assert.Equal(t, config.AppConfig.PointsQuizPassMin, QuizPassPoints(0))
}
