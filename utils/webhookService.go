package utils

import (
	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// CourseCompletedPayload is the webhook body posted when a user finishes a course
type CourseCompletedPayload struct {
	Event       string    `json:"event"`
	UserID      uint      `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	CourseID    uint      `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Progress    float64   `json:"progress"`
	CompletedAt time.Time `json:"completed_at"`
}

// NotifyCourseCompleted posts a completion event to the configured webhook
// and emails the student. Safe to call in a goroutine; failures are logged
// and never surfaced to the request.
func NotifyCourseCompleted(user models.User, course courseModels.Course, progress float64) {
	totalPoints, err := services.CoursePoints(database.Database.Db, user.ID, course.ID)
	if err != nil {
		log.Printf("Error loading course points for completion notice: %v", err)
	}
	SendCourseCompletionEmail(user, course, totalPoints)

	webhookURL := config.AppConfig.WebhookURL
	if webhookURL == "" {
		return
	}

	payload := CourseCompletedPayload{
		Event:       "course.completed",
		UserID:      user.ID,
		UserEmail:   user.Email,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Progress:    progress,
		CompletedAt: time.Now(),
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(webhookURL)
	if err != nil {
		log.Printf("Error posting completion webhook: %v", err)
		return
	}

	if resp.StatusCode() >= 300 {
		log.Printf("Completion webhook returned status %d: %s", resp.StatusCode(), resp.String())
		return
	}

	log.Printf("Completion webhook delivered for user %d, course %d", user.ID, course.ID)
}
