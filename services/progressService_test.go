package services

import (
	"testing"
	"time"

	"lms/config"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var testNow = time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

func TestEnrollUser(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 10)

	enrollment, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	assert.Equal(t, courseModels.StatusEnrolled, enrollment.Status)
	assert.Equal(t, 10, enrollment.TotalLessons)
	assert.Equal(t, 0, enrollment.CompletedLessons)
	assert.Equal(t, config.AppConfig.PointsEnrollment, enrollment.TotalPoints)

	points, err := CoursePoints(db, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, config.AppConfig.PointsEnrollment, points)
}

func TestEnrollUserCountsOnlyPublishedLessons(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 3)

	draft := courseModels.Lesson{
		CourseID:    course.ID,
		ModuleID:    1,
		Day:         4,
		Title:       "Draft lesson",
		ContentType: "TEXT",
		IsPublished: false,
	}
	require.NoError(t, db.Create(&draft).Error)

	enrollment, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, enrollment.TotalLessons)
}

func TestEnrollUserDuplicate(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)

	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	_, err = EnrollUser(1, course.ID, testNow)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	// No extra points land on the second attempt
	points, err := CoursePoints(db, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, config.AppConfig.PointsEnrollment, points)
}

func TestEnrollUserInactiveCourse(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)
	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", course.ID).Update("status", "DRAFT").Error)

	_, err := EnrollUser(1, course.ID, testNow)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestMarkLessonComplete(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	result, err := MarkLessonComplete(1, course.ID, lessons[0].ID, 25, testNow)
	require.NoError(t, err)

	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, config.AppConfig.PointsLesson, result.PointsAwarded)
	assert.InDelta(t, 10.0, result.Progress, 0.001)
	assert.Equal(t, courseModels.StatusActive, result.Status)
	assert.False(t, result.CourseCompleted)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)
	assert.Equal(t, 1, enrollment.CompletedLessons)
	assert.Equal(t, 25, enrollment.TimeSpentMinutes)
	assert.Equal(t, config.AppConfig.PointsEnrollment+config.AppConfig.PointsLesson, enrollment.TotalPoints)
	require.NotNil(t, enrollment.LastActivityAt)
	assert.True(t, enrollment.CompletedSet()[lessons[0].ID])
}

func TestMarkLessonCompleteReplayed(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	first, err := MarkLessonComplete(1, course.ID, lessons[0].ID, 25, testNow)
	require.NoError(t, err)
	require.False(t, first.AlreadyCompleted)

	// Replay of the same completion: absorbed, not rejected
	replay, err := MarkLessonComplete(1, course.ID, lessons[0].ID, 25, testNow.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, replay.AlreadyCompleted)
	assert.Equal(t, 0, replay.PointsAwarded)
	assert.Equal(t, first.Progress, replay.Progress)
	assert.Equal(t, first.Completion.ID, replay.Completion.ID)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)
	assert.Equal(t, 1, enrollment.CompletedLessons)
	assert.Equal(t, 25, enrollment.TimeSpentMinutes)
	assert.Equal(t, config.AppConfig.PointsEnrollment+config.AppConfig.PointsLesson, enrollment.TotalPoints)

	var events int64
	db.Model(&courseModels.LessonCompletion{}).Where("user_id = ?", 1).Count(&events)
	assert.Equal(t, int64(1), events)
}

func TestMarkLessonCompleteUnionAcrossLessons(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := MarkLessonComplete(1, course.ID, lessons[i].ID, 10, testNow.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)
	assert.Equal(t, 3, enrollment.CompletedLessons)
	assert.InDelta(t, 30.0, enrollment.Progress, 0.001)
	assert.Equal(t, 30, enrollment.TimeSpentMinutes)

	set := enrollment.CompletedSet()
	for i := 0; i < 3; i++ {
		assert.True(t, set[lessons[i].ID])
	}
}

func TestMarkLessonCompleteCourseCompletion(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 5, 2)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	_, err = MarkLessonComplete(1, course.ID, lessons[0].ID, 15, testNow)
	require.NoError(t, err)

	result, err := MarkLessonComplete(1, course.ID, lessons[1].ID, 15, testNow.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, result.CourseCompleted)
	assert.Equal(t, courseModels.StatusCompleted, result.Status)
	assert.InDelta(t, 100.0, result.Progress, 0.001)
	assert.Equal(t, config.AppConfig.PointsLesson+config.AppConfig.PointsCourseBonus, result.PointsAwarded)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)
	require.NotNil(t, enrollment.CompletedAt)
	expectedTotal := config.AppConfig.PointsEnrollment + 2*config.AppConfig.PointsLesson + config.AppConfig.PointsCourseBonus
	assert.Equal(t, expectedTotal, enrollment.TotalPoints)
}

func TestMarkLessonCompleteUnknownLesson(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 3)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	_, err = MarkLessonComplete(1, course.ID, 9999, 0, testNow)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestMarkLessonCompleteWithoutEnrollment(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 3)

	_, err := MarkLessonComplete(1, course.ID, lessons[0].ID, 0, testNow)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestSubmitQuizPass(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 2)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	result, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[0].ID, options[1].ID}, testNow)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.InDelta(t, 100.0, result.Percentage, 0.001)
	assert.Equal(t, 1, result.Attempt.AttemptNumber)
	assert.True(t, result.LessonCompleted)
	// Quiz pass award plus the lesson completion it triggers
	assert.Equal(t, QuizPassPoints(100)+config.AppConfig.PointsLesson, result.PointsAwarded)
}

func TestSubmitQuizWrongSelectionFails(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 2)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	// Both correct options plus one wrong one: percentage alone would
	// pass, the wrong selection must not
	result, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[0].ID, options[1].ID, options[2].ID}, testNow)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 0, result.PointsAwarded)
	assert.False(t, result.LessonCompleted)
}

func TestSubmitQuizBelowThresholdFails(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 0)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	result, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[0].ID}, testNow)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.InDelta(t, 50.0, result.Percentage, 0.001)
	assert.Equal(t, 0, result.PointsAwarded)
}

func TestSubmitQuizAttemptNumbersIncrement(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 1)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	first, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[2].ID}, testNow)
	require.NoError(t, err)
	require.False(t, first.Passed)
	assert.Equal(t, 1, first.Attempt.AttemptNumber)

	second, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[0].ID, options[1].ID}, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, second.Passed)
	assert.Equal(t, 2, second.Attempt.AttemptNumber)
}

func TestSubmitQuizRepeatedPassNoReaward(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 0)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	answers := []uint{options[0].ID, options[1].ID}
	first, err := SubmitQuiz(1, course.ID, quiz.ID, answers, testNow)
	require.NoError(t, err)
	require.True(t, first.Passed)
	require.Greater(t, first.PointsAwarded, 0)

	second, err := SubmitQuiz(1, course.ID, quiz.ID, answers, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, second.Passed)
	assert.Equal(t, 0, second.PointsAwarded)
	assert.Equal(t, 2, second.Attempt.AttemptNumber)

	points, err := CoursePoints(db, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, config.AppConfig.PointsEnrollment+first.PointsAwarded, points)
}

func TestSubmitQuizOnNonQuizLesson(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 1)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	_, err = SubmitQuiz(1, course.ID, lessons[0].ID, nil, testNow)
	assert.ErrorIs(t, err, ErrNotQuiz)
}

func TestSetEnrollmentStatusPauseResume(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 5)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	paused, err := SetEnrollmentStatus(1, course.ID, courseModels.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusPaused, paused.Status)

	// Activity while paused resumes the enrollment
	result, err := MarkLessonComplete(1, course.ID, lessons[0].ID, 10, testNow)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusActive, result.Status)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)
	assert.Equal(t, courseModels.StatusActive, enrollment.Status)
}

func TestSetEnrollmentStatusNotEnrolled(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)

	_, err := SetEnrollmentStatus(1, course.ID, courseModels.StatusPaused)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestSetEnrollmentStatusBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)
	initial, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	updated, err := SetEnrollmentStatus(1, course.ID, courseModels.StatusPaused)
	require.NoError(t, err)
	assert.Greater(t, updated.Version, initial.Version)
}

func TestReconcileEnrollmentRepairsDrift(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := MarkLessonComplete(1, course.ID, lessons[i].ID, 10, testNow.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)

	// Corrupt the summary; the event log stays intact
	require.NoError(t, db.Model(&enrollment).Updates(map[string]interface{}{
		"completed_lessons": 1,
		"progress":          10.0,
		"total_points":      0,
	}).Error)

	require.NoError(t, ReconcileEnrollment(db, enrollment.ID, testNow))

	var repaired courseModels.Enrollment
	require.NoError(t, db.First(&repaired, enrollment.ID).Error)
	assert.Equal(t, 4, repaired.CompletedLessons)
	assert.InDelta(t, 40.0, repaired.Progress, 0.001)
	assert.Equal(t, 40, repaired.TimeSpentMinutes)
	assert.Equal(t, courseModels.StatusActive, repaired.Status)
	assert.Equal(t, config.AppConfig.PointsEnrollment+4*config.AppConfig.PointsLesson, repaired.TotalPoints)
}

func TestReconcileAllEnrollments(t *testing.T) {
	db := setupTestDB(t)
	course, lessons := seedCourse(t, db, 20, 10)

	for userID := uint(1); userID <= 3; userID++ {
		_, err := EnrollUser(userID, course.ID, testNow)
		require.NoError(t, err)
		_, err = MarkLessonComplete(userID, course.ID, lessons[0].ID, 10, testNow)
		require.NoError(t, err)
	}

	// Drift one of the three summaries
	require.NoError(t, db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", 2, course.ID).
		Update("completed_lessons", 0).Error)

	reconciled, err := ReconcileAllEnrollments(testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, reconciled)

	var repaired courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 2, course.ID).First(&repaired).Error)
	assert.Equal(t, 1, repaired.CompletedLessons)

	// Everything consistent now: nothing left to reconcile
	reconciled, err = ReconcileAllEnrollments(testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, reconciled)
}

func TestEnrollUserDuplicateRowBehindExistenceCheck(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 5)

	// A soft-deleted enrollment passes the existence check but still
	// occupies the unique user+course index, the same window a
	// concurrent enroll slips through
	stale := courseModels.Enrollment{
		UserID:             1,
		CourseID:           course.ID,
		Status:             courseModels.StatusEnrolled,
		CompletedLessonIDs: datatypes.JSON([]byte("[]")),
		IsDeleted:          true,
	}
	require.NoError(t, db.Create(&stale).Error)

	_, err := EnrollUser(1, course.ID, testNow)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestSubmitQuizReportedPointsMatchLedger(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 0)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	before, err := CoursePoints(db, 1, course.ID)
	require.NoError(t, err)

	result, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[0].ID, options[1].ID}, testNow)
	require.NoError(t, err)
	require.True(t, result.Passed)

	// The reported award equals exactly what landed in the ledger
	after, err := CoursePoints(db, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, after-before, result.PointsAwarded)
	assert.Equal(t, QuizPassPoints(100)+config.AppConfig.PointsLesson, result.PointsAwarded)
}

func TestSubmitQuizPassAfterManualCompletion(t *testing.T) {
	db := setupTestDB(t)
	course, _ := seedCourse(t, db, 20, 1)
	quiz, options := seedQuizLesson(t, db, course.ID, 2, 0)
	_, err := EnrollUser(1, course.ID, testNow)
	require.NoError(t, err)

	// Quiz lesson already completed directly; a later pass reports
	// only the quiz award
	_, err = MarkLessonComplete(1, course.ID, quiz.ID, 5, testNow)
	require.NoError(t, err)

	result, err := SubmitQuiz(1, course.ID, quiz.ID, []uint{options[0].ID, options[1].ID}, testNow.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.False(t, result.LessonCompleted)
	assert.Equal(t, QuizPassPoints(100), result.PointsAwarded)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&enrollment).Error)
	expected := config.AppConfig.PointsEnrollment + config.AppConfig.PointsLesson + QuizPassPoints(100)
	assert.Equal(t, expected, enrollment.TotalPoints)
}
