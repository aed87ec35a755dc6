package services

import (
	"encoding/json"
	"errors"
	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Errors surfaced to controllers. Validation failures and missing rows
// are returned to the caller; version conflicts are retried here and
// only surface once the retry budget is spent.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("user already enrolled in this course")
	ErrNotQuiz            = errors.New("lesson is not a quiz")
	ErrConcurrentUpdate   = errors.New("enrollment was modified concurrently")
)

// errVersionConflict aborts a transaction so the outer loop retries on
// fresh state. Never escapes this package.
var errVersionConflict = errors.New("enrollment version conflict")

const maxUpdateRetries = 3

// CompletionResult reports what one completion call changed
type CompletionResult struct {
	Completion       courseModels.LessonCompletion `json:"completion"`
	AlreadyCompleted bool                          `json:"already_completed"`
	PointsAwarded    int                           `json:"points_awarded"`
	Progress         float64                       `json:"progress"`
	Status           string                        `json:"status"`
	CourseCompleted  bool                          `json:"course_completed"`
}

// QuizResult reports the outcome of one quiz submission
type QuizResult struct {
	Attempt         courseModels.QuizAttempt `json:"attempt"`
	Passed          bool                     `json:"passed"`
	Percentage      float64                  `json:"percentage"`
	PointsAwarded   int                      `json:"points_awarded"`
	LessonCompleted bool                     `json:"lesson_completed"`
	Progress        float64                  `json:"progress"`
}

// EnrollUser creates the enrollment summary row and applies the
// enrollment award as one atomic unit.
func EnrollUser(userID, courseID uint, nowTime time.Time) (*courseModels.Enrollment, error) {
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, "ACTIVE").First(&course).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	var existing courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error; err == nil {
		return nil, ErrAlreadyEnrolled
	}

	var totalLessons int64
	db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&totalLessons)

	enrollment := courseModels.Enrollment{
		UserID:             userID,
		CourseID:           courseID,
		Status:             courseModels.StatusEnrolled,
		CompletedLessonIDs: datatypes.JSON([]byte("[]")),
		TotalLessons:       int(totalLessons),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// The existence check above is a plain read; a concurrent enroll
		// can still slip past it and land on the unique user+course index
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return err
		}

		eventID := "enroll:" + strconv.FormatUint(uint64(courseID), 10)
		applied, _, err := ApplyAward(tx, userID, courseID, eventID, courseModels.AwardEnrollment, config.AppConfig.PointsEnrollment)
		if err != nil {
			return err
		}
		if applied {
			enrollment.TotalPoints = config.AppConfig.PointsEnrollment
			if err := tx.Model(&enrollment).Update("total_points", enrollment.TotalPoints).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	InvalidateDashboard(userID)
	return &enrollment, nil
}

// MarkLessonComplete records a completion event and folds it into the
// enrollment summary: set union of completed lessons, progress
// recompute, status transition and point award as one atomic unit.
//
// A replayed completion (network retry, double click) is absorbed: the
// event row is not duplicated, no points are re-awarded and the prior
// state is returned without error.
func MarkLessonComplete(userID, courseID, lessonID uint, timeSpentMinutes int, nowTime time.Time) (*CompletionResult, error) {
	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", lessonID, courseID, false, true).First(&lesson).Error; err != nil {
		return nil, ErrLessonNotFound
	}

	result := &CompletionResult{}
	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			var enrollment courseModels.Enrollment
			if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEnrollmentNotFound
				}
				return err
			}
			*result = CompletionResult{}
			return applyLessonCompletion(tx, &enrollment, &lesson, timeSpentMinutes, 0, nowTime, result)
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, errVersionConflict) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, ErrConcurrentUpdate
	}

	InvalidateDashboard(userID)
	return result, nil
}

// SubmitQuiz scores a quiz submission, records the attempt with the
// next attempt number and, on the first pass, routes through the same
// completion path as MarkLessonComplete. Repeated passes of the same
// quiz score and record attempts but never re-award points.
func SubmitQuiz(userID, courseID, lessonID uint, selectedOptionIDs []uint, nowTime time.Time) (*QuizResult, error) {
	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", lessonID, courseID, false, true).First(&lesson).Error; err != nil {
		return nil, ErrLessonNotFound
	}
	if lesson.ContentType != "QUIZ" {
		return nil, ErrNotQuiz
	}

	var correctOptions []courseModels.QuizOption
	db.Where("lesson_id = ? AND is_correct = ? AND is_deleted = ?", lessonID, true, false).Find(&correctOptions)

	correctIDs := make(map[uint]bool, len(correctOptions))
	for _, opt := range correctOptions {
		correctIDs[opt.ID] = true
	}

	score := 0
	wrongSelections := 0
	for _, selectedID := range selectedOptionIDs {
		if correctIDs[selectedID] {
			score++
		} else {
			wrongSelections++
		}
	}

	maxScore := len(correctOptions)
	denominator := maxScore
	if denominator < 1 {
		denominator = 1
	}
	percentage := float64(score) / float64(denominator) * 100

	threshold := lesson.PassThreshold
	if threshold <= 0 {
		threshold = config.AppConfig.QuizPassPercent
	}
	passed := percentage >= threshold && wrongSelections == 0

	selectedJSON, err := json.Marshal(selectedOptionIDs)
	if err != nil {
		return nil, err
	}

	result := &QuizResult{}
	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			var enrollment courseModels.Enrollment
			if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEnrollmentNotFound
				}
				return err
			}

			// Next attempt number for this (user, lesson)
			var maxAttempt int64
			if err := tx.Model(&courseModels.QuizAttempt{}).
				Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", userID, lessonID, false).
				Select("COALESCE(MAX(attempt_number), 0)").Scan(&maxAttempt).Error; err != nil {
				return err
			}

			quizAttempt := courseModels.QuizAttempt{
				UserID:          userID,
				CourseID:        courseID,
				LessonID:        lessonID,
				SelectedOptions: datatypes.JSON(selectedJSON),
				Score:           score,
				MaxScore:        maxScore,
				Percentage:      percentage,
				Passed:          passed,
				AttemptNumber:   int(maxAttempt) + 1,
			}

			// A concurrent submission may have claimed the same number;
			// the unique index catches it and the loop retries
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}, {Name: "attempt_number"}},
				DoNothing: true,
			}).Create(&quizAttempt)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}

			*result = QuizResult{
				Attempt:    quizAttempt,
				Passed:     passed,
				Percentage: percentage,
				Progress:   enrollment.Progress,
			}

			if !passed {
				return nil
			}

			quizPoints := QuizPassPoints(percentage)
			applied, _, err := ApplyAward(tx, userID, courseID, quizAttempt.EventID(), courseModels.AwardQuizPass, quizPoints)
			if err != nil {
				return err
			}
			extraPoints := 0
			if applied {
				extraPoints = quizPoints
			}

			completion := &CompletionResult{}
			if err := applyLessonCompletion(tx, &enrollment, &lesson, 0, extraPoints, nowTime, completion); err != nil {
				return err
			}
			result.LessonCompleted = !completion.AlreadyCompleted
			result.PointsAwarded += completion.PointsAwarded
			result.Progress = completion.Progress
			return nil
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, errVersionConflict) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, ErrConcurrentUpdate
	}

	InvalidateDashboard(userID)
	return result, nil
}

// applyLessonCompletion folds one completion event into the enrollment
// summary inside the caller's transaction. extraPoints carries points
// already ledgered in this transaction (quiz pass) that must land on
// the summary row even when the completion itself is a replay.
//
// The final write is guarded by the version the row was read at. A
// mismatch returns errVersionConflict which rolls back everything,
// including the event insert, so the caller can retry cleanly.
func applyLessonCompletion(tx *gorm.DB, enrollment *courseModels.Enrollment, lesson *courseModels.Lesson, timeSpentMinutes, extraPoints int, nowTime time.Time, out *CompletionResult) error {
	completion := courseModels.LessonCompletion{
		UserID:           enrollment.UserID,
		CourseID:         enrollment.CourseID,
		LessonID:         lesson.ID,
		CompletedAt:      nowTime.UTC(),
		TimeSpentMinutes: timeSpentMinutes,
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&completion)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		// Replayed event. Return the original record, change nothing
		// except points that were ledgered earlier in this transaction.
		var existing courseModels.LessonCompletion
		if err := tx.Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", enrollment.UserID, lesson.ID, false).First(&existing).Error; err == nil {
			out.Completion = existing
		}
		out.AlreadyCompleted = true
		out.PointsAwarded = extraPoints
		out.Progress = enrollment.Progress
		out.Status = enrollment.Status

		if extraPoints > 0 {
			guarded := tx.Model(&courseModels.Enrollment{}).
				Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
				Updates(map[string]interface{}{
					"total_points":     enrollment.TotalPoints + extraPoints,
					"last_activity_at": nowTime.UTC(),
					"version":          enrollment.Version + 1,
				})
			if guarded.Error != nil {
				return guarded.Error
			}
			if guarded.RowsAffected == 0 {
				return errVersionConflict
			}
		}
		return nil
	}

	out.Completion = completion

	// Union, never overwrite: a concurrent completion of another
	// lesson must survive the retry
	set := enrollment.CompletedSet()
	set[lesson.ID] = true
	enrollment.SetCompletedSet(set)

	var totalLessons int64
	if err := tx.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
		Count(&totalLessons).Error; err != nil {
		return err
	}
	enrollment.TotalLessons = int(totalLessons)

	denominator := int(totalLessons)
	if denominator < 1 {
		denominator = 1
	}
	progress := float64(enrollment.CompletedLessons) / float64(denominator) * 100
	if progress > 100 {
		progress = 100
	}
	enrollment.Progress = progress

	pointsEarned := extraPoints
	applied, _, err := ApplyAward(tx, enrollment.UserID, enrollment.CourseID, completion.EventID(), courseModels.AwardLessonCompletion, config.AppConfig.PointsLesson)
	if err != nil {
		return err
	}
	if applied {
		pointsEarned += config.AppConfig.PointsLesson
	}

	prevStatus := enrollment.Status
	if enrollment.Status == courseModels.StatusEnrolled || enrollment.Status == courseModels.StatusPaused {
		enrollment.Status = courseModels.StatusActive
	}

	courseCompleted := false
	if enrollment.Progress >= 100 && int(totalLessons) > 0 {
		enrollment.Status = courseModels.StatusCompleted
		if enrollment.CompletedAt == nil {
			completedAt := nowTime.UTC()
			enrollment.CompletedAt = &completedAt
		}
		courseCompleted = prevStatus != courseModels.StatusCompleted

		bonusEvent := "course:" + strconv.FormatUint(uint64(enrollment.CourseID), 10)
		bonusApplied, _, err := ApplyAward(tx, enrollment.UserID, enrollment.CourseID, bonusEvent, courseModels.AwardCourseCompletion, config.AppConfig.PointsCourseBonus)
		if err != nil {
			return err
		}
		if bonusApplied {
			pointsEarned += config.AppConfig.PointsCourseBonus
		}
	}

	lastActivity := nowTime.UTC()
	enrollment.LastActivityAt = &lastActivity
	enrollment.TimeSpentMinutes += timeSpentMinutes
	enrollment.TotalPoints += pointsEarned

	guarded := tx.Model(&courseModels.Enrollment{}).
		Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
		Updates(map[string]interface{}{
			"status":               enrollment.Status,
			"progress":             enrollment.Progress,
			"completed_lesson_ids": enrollment.CompletedLessonIDs,
			"completed_lessons":    enrollment.CompletedLessons,
			"total_lessons":        enrollment.TotalLessons,
			"time_spent_minutes":   enrollment.TimeSpentMinutes,
			"total_points":         enrollment.TotalPoints,
			"last_activity_at":     enrollment.LastActivityAt,
			"completed_at":         enrollment.CompletedAt,
			"version":              enrollment.Version + 1,
		})
	if guarded.Error != nil {
		return guarded.Error
	}
	if guarded.RowsAffected == 0 {
		return errVersionConflict
	}

	out.PointsAwarded = pointsEarned
	out.Progress = enrollment.Progress
	out.Status = enrollment.Status
	out.CourseCompleted = courseCompleted
	return nil
}

// SetEnrollmentStatus applies an explicit status change (pause/resume).
// PAUSED and its reversal are the only transitions callers set
// directly; everything else is derived from events.
func SetEnrollmentStatus(userID, courseID uint, status string) (*courseModels.Enrollment, error) {
	db := database.Database.Db

	var lastErr error
	var enrollment courseModels.Enrollment
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
			return nil, ErrEnrollmentNotFound
		}

		guarded := db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
			Updates(map[string]interface{}{
				"status":  status,
				"version": enrollment.Version + 1,
			})
		if guarded.Error != nil {
			return nil, guarded.Error
		}
		if guarded.RowsAffected > 0 {
			enrollment.Status = status
			enrollment.Version++
			InvalidateDashboard(userID)
			return &enrollment, nil
		}
		lastErr = errVersionConflict
	}
	if lastErr != nil {
		return nil, ErrConcurrentUpdate
	}
	return &enrollment, nil
}

// ReconcileEnrollment rebuilds one summary row from the completion
// event log and the award ledger. The events are the source of truth;
// a drifted summary is always recoverable from them.
func ReconcileEnrollment(db *gorm.DB, enrollmentID uint, nowTime time.Time) error {
	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			var enrollment courseModels.Enrollment
			if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEnrollmentNotFound
				}
				return err
			}

			var completions []courseModels.LessonCompletion
			if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", enrollment.UserID, enrollment.CourseID, false).
				Find(&completions).Error; err != nil {
				return err
			}

			set := make(map[uint]bool, len(completions))
			timeSpent := 0
			var lastActivity *time.Time
			for i := range completions {
				set[completions[i].LessonID] = true
				timeSpent += completions[i].TimeSpentMinutes
				if lastActivity == nil || completions[i].CompletedAt.After(*lastActivity) {
					lastActivity = &completions[i].CompletedAt
				}
			}
			enrollment.SetCompletedSet(set)

			var totalLessons int64
			if err := tx.Model(&courseModels.Lesson{}).
				Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
				Count(&totalLessons).Error; err != nil {
				return err
			}

			denominator := int(totalLessons)
			if denominator < 1 {
				denominator = 1
			}
			progress := float64(enrollment.CompletedLessons) / float64(denominator) * 100
			if progress > 100 {
				progress = 100
			}

			status := enrollment.Status
			if progress >= 100 && int(totalLessons) > 0 {
				status = courseModels.StatusCompleted
			} else if len(set) > 0 && status != courseModels.StatusPaused {
				status = courseModels.StatusActive
			}

			points, err := CoursePoints(tx, enrollment.UserID, enrollment.CourseID)
			if err != nil {
				return err
			}

			guarded := tx.Model(&courseModels.Enrollment{}).
				Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
				Updates(map[string]interface{}{
					"status":               status,
					"progress":             progress,
					"completed_lesson_ids": enrollment.CompletedLessonIDs,
					"completed_lessons":    enrollment.CompletedLessons,
					"total_lessons":        int(totalLessons),
					"time_spent_minutes":   timeSpent,
					"total_points":         points,
					"last_activity_at":     lastActivity,
					"version":              enrollment.Version + 1,
				})
			if guarded.Error != nil {
				return guarded.Error
			}
			if guarded.RowsAffected == 0 {
				return errVersionConflict
			}
			return nil
		})
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errVersionConflict) {
			return lastErr
		}
	}
	return ErrConcurrentUpdate
}

// ReconcileAllEnrollments finds summary rows whose completed-lesson
// count disagrees with the event log and rebuilds them. Returns how
// many rows were reconciled.
func ReconcileAllEnrollments(nowTime time.Time) (int, error) {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("is_deleted = ?", false).Find(&enrollments).Error; err != nil {
		return 0, err
	}

	reconciled := 0
	for i := range enrollments {
		var eventCount int64
		if err := db.Model(&courseModels.LessonCompletion{}).
			Where("user_id = ? AND course_id = ? AND is_deleted = ?", enrollments[i].UserID, enrollments[i].CourseID, false).
			Count(&eventCount).Error; err != nil {
			return reconciled, err
		}
		if int(eventCount) == enrollments[i].CompletedLessons {
			continue
		}
		if err := ReconcileEnrollment(db, enrollments[i].ID, nowTime); err != nil {
			return reconciled, err
		}
		InvalidateDashboard(enrollments[i].UserID)
		reconciled++
	}
	return reconciled, nil
}
