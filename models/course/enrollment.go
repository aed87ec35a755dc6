package course

import (
	"encoding/json"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment statuses. PAUSED is only ever set by an explicit user
// action, never derived from progress.
const (
	StatusEnrolled  = "ENROLLED"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusPaused    = "PAUSED"
)

// Enrollment is the mutable per-user-per-course summary row. It is
// derived from the completion events and can always be rebuilt from
// them. Version backs the optimistic-concurrency loop: every update
// must match the version it read or retry.
type Enrollment struct {
	gorm.Model
	UserID             uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID           uint           `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`
	Status             string         `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, ACTIVE, COMPLETED, PAUSED
	Progress           float64        `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	CompletedLessonIDs datatypes.JSON `json:"completed_lesson_ids"`             // JSON array of lesson IDs
	CompletedLessons   int            `json:"completed_lessons" gorm:"default:0"`
	TotalLessons       int            `json:"total_lessons" gorm:"default:0"`
	TimeSpentMinutes   int            `json:"time_spent_minutes" gorm:"default:0"`
	TotalPoints        int            `json:"total_points" gorm:"default:0"`
	LastActivityAt     *time.Time     `json:"last_activity_at"`
	CompletedAt        *time.Time     `json:"completed_at"`
	Version            int            `json:"-" gorm:"default:0"`
	IsDeleted          bool           `gorm:"default:false"`
}

// CompletedSet decodes CompletedLessonIDs into a set
func (e *Enrollment) CompletedSet() map[uint]bool {
	set := make(map[uint]bool)
	if len(e.CompletedLessonIDs) == 0 {
		return set
	}
	var ids []uint
	if err := json.Unmarshal(e.CompletedLessonIDs, &ids); err != nil {
		return set
	}
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// SetCompletedSet encodes the set back into CompletedLessonIDs.
// IDs are stored sorted so two equal sets encode byte-identically.
func (e *Enrollment) SetCompletedSet(set map[uint]bool) {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	encoded, err := json.Marshal(ids)
	if err != nil {
		return
	}
	e.CompletedLessonIDs = datatypes.JSON(encoded)
	e.CompletedLessons = len(ids)
}
