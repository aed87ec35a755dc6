package course

import (
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizOption represents an option for a quiz lesson
type QuizOption struct {
	gorm.Model
	LessonID   uint   `json:"lesson_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}

// QuizAttempt is the immutable record of one quiz submission.
// AttemptNumber is monotonically increasing per (user, lesson); the
// unique index guarantees no two attempts share the same number.
type QuizAttempt struct {
	gorm.Model
	UserID          uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_lesson_attempt"`
	CourseID        uint           `json:"course_id" gorm:"index;not null"`
	LessonID        uint           `json:"lesson_id" gorm:"not null;uniqueIndex:idx_user_lesson_attempt"`
	SelectedOptions datatypes.JSON `json:"selected_options"` // JSON array of selected option IDs
	Score           int            `json:"score"`            // Score achieved
	MaxScore        int            `json:"max_score"`        // Maximum possible score
	Percentage      float64        `json:"percentage"`
	Passed          bool           `json:"passed" gorm:"default:false"`
	AttemptNumber   int            `json:"attempt_number" gorm:"default:1;uniqueIndex:idx_user_lesson_attempt"`
	IsDeleted       bool           `gorm:"default:false"`
}

// EventID returns the award ledger key for this attempt's pass award.
// Keyed by lesson, not attempt, so passing the same quiz again never
// awards twice.
func (qa *QuizAttempt) EventID() string {
	return "quiz:" + strconv.FormatUint(uint64(qa.LessonID), 10)
}
