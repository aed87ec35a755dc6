package course

import "gorm.io/gorm"

// Award event types
const (
	AwardEnrollment       = "ENROLLMENT"
	AwardLessonCompletion = "LESSON_COMPLETION"
	AwardQuizPass         = "QUIZ_PASS"
	AwardCourseCompletion = "COURSE_COMPLETION"
)

// PointAward is the idempotency ledger for gamification points. One
// row per (user, event); the unique index is what makes a replayed
// event a no-op instead of a double award.
type PointAward struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_user_event"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	EventID   string `json:"event_id" gorm:"size:64;not null;uniqueIndex:idx_user_event"`
	EventType string `json:"event_type" gorm:"size:32;not null"` // ENROLLMENT, LESSON_COMPLETION, QUIZ_PASS, COURSE_COMPLETION
	Points    int    `json:"points" gorm:"not null"`
	IsDeleted bool   `gorm:"default:false"`
}
