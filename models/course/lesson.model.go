package course

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Lesson represents content within a module, organized by day
type Lesson struct {
	gorm.Model
	CourseID      uint    `json:"course_id" gorm:"index;not null"`
	ModuleID      uint    `json:"module_id" gorm:"index;not null"`
	Day           int     `json:"day" gorm:"default:1"` // Day number within module
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	ContentType   string  `json:"content_type" gorm:"default:'TEXT'"` // TEXT, QUIZ, VIDEO, IMAGE
	TextContent   string  `json:"text_content" gorm:"type:text"`      // For TEXT type
	VideoURL      string  `json:"video_url"`                          // For VIDEO type
	ImageURL      string  `json:"image_url"`                          // For IMAGE type
	OrderIndex    int     `json:"order_index" gorm:"default:0"`       // Order within day
	PassThreshold float64 `json:"pass_threshold" gorm:"default:0"`    // For QUIZ type, 0 uses the configured default
	IsPublished   bool    `json:"is_published" gorm:"default:false"`
	IsDeleted     bool    `gorm:"default:false"`
}

// LessonCompletion is the immutable record that a user finished a lesson.
// The unique index makes a replayed completion a no-op insert, which is
// how duplicate submissions are absorbed instead of rejected.
type LessonCompletion struct {
	gorm.Model
	UserID           uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	CourseID         uint      `json:"course_id" gorm:"index;not null"`
	LessonID         uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	CompletedAt      time.Time `json:"completed_at" gorm:"index;not null"`
	TimeSpentMinutes int       `json:"time_spent_minutes" gorm:"default:0"`
	IsDeleted        bool      `gorm:"default:false"`
}

// EventID returns the award ledger key for this completion
func (lc *LessonCompletion) EventID() string {
	return "lesson:" + strconv.FormatUint(uint64(lc.LessonID), 10)
}
