package services

import (
	"lms/config"
	courseModels "lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyAward grants points for one triggering event, exactly once per
// (user, event). The award is a ledger insert guarded by a unique
// index: a replayed event hits the conflict clause, inserts nothing
// and reports applied=false with totals unchanged. Duplicates are a
// normal outcome under at-least-once delivery, not an error.
//
// Runs inside the caller's transaction so the award commits or rolls
// back together with the summary update that triggered it.
func ApplyAward(tx *gorm.DB, userID, courseID uint, eventID, eventType string, points int) (applied bool, totalPoints int, err error) {
	award := courseModels.PointAward{
		UserID:    userID,
		CourseID:  courseID,
		EventID:   eventID,
		EventType: eventType,
		Points:    points,
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(&award)
	if res.Error != nil {
		return false, 0, res.Error
	}

	applied = res.RowsAffected > 0

	var total int64
	if err := tx.Model(&courseModels.PointAward{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Select("COALESCE(SUM(points), 0)").Scan(&total).Error; err != nil {
		return applied, 0, err
	}

	return applied, int(total), nil
}

// CoursePoints sums the points a user earned within one course
func CoursePoints(db *gorm.DB, userID, courseID uint) (int, error) {
	var total int64
	err := db.Model(&courseModels.PointAward{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Select("COALESCE(SUM(points), 0)").Scan(&total).Error
	return int(total), err
}

// QuizPassPoints converts a quiz percentage into the pass award.
// Percentage-based: one point per 10%, never below the configured floor.
func QuizPassPoints(percentage float64) int {
	points := int(percentage / 10)
	if points < config.AppConfig.PointsQuizPassMin {
		points = config.AppConfig.PointsQuizPassMin
	}
	return points
}
