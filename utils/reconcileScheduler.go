package utils

import (
	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeReconcileScheduler sets up the nightly progress maintenance jobs
func InitializeReconcileScheduler() {
	log.Println("[RECONCILE-SCHEDULER] Initializing progress scheduler...")

	c := cron.New()

	// Run daily at 3 AM to rebuild drifted enrollment summaries
	c.AddFunc("0 3 * * *", func() {
		log.Println("[RECONCILE-SCHEDULER] Running nightly reconciliation...")
		RunReconciliation()
	})

	// Run daily at 9 AM to nudge learners who fell behind schedule
	c.AddFunc("0 9 * * *", func() {
		log.Println("[RECONCILE-SCHEDULER] Running daily pacing check...")
		ProcessBehindLearners()
	})

	c.Start()
	log.Println("[RECONCILE-SCHEDULER] Progress scheduler started - reconciles at 3 AM, pacing check at 9 AM")
}

// RunReconciliation rebuilds enrollment summaries that disagree with the event log
func RunReconciliation() {
	reconciled, err := services.ReconcileAllEnrollments(time.Now())
	if err != nil {
		log.Printf("[RECONCILE-SCHEDULER] Reconciliation error: %v", err)
		return
	}
	log.Printf("[RECONCILE-SCHEDULER] Reconciled %d enrollments", reconciled)
}

// ProcessBehindLearners emails active learners whose progress is behind the expected pace
func ProcessBehindLearners() {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.
		Where("status IN ? AND is_deleted = ?", []string{courseModels.StatusEnrolled, courseModels.StatusActive}, false).
		Find(&enrollments).Error; err != nil {
		log.Printf("[RECONCILE-SCHEDULER] Error fetching active enrollments: %v", err)
		return
	}

	nowTime := time.Now()
	notified := 0

	for _, e := range enrollments {
		var course courseModels.Course
		if err := db.Where("id = ?", e.CourseID).First(&course).Error; err != nil {
			log.Printf("[RECONCILE-SCHEDULER] Error fetching course %d: %v", e.CourseID, err)
			continue
		}

		pacing := services.CalculatePacing(services.PacingInput{
			CompletedLessons:   e.CompletedLessons,
			TotalLessons:       e.TotalLessons,
			EnrollmentDate:     e.CreatedAt,
			CourseDurationDays: course.DurationDays,
			BandPercent:        config.AppConfig.PacingBandPercent,
		}, nowTime)

		if pacing.Label != services.PacingBehind {
			continue
		}

		var user models.User
		if err := db.Where("id = ? AND is_deleted = ?", e.UserID, false).First(&user).Error; err != nil {
			log.Printf("[RECONCILE-SCHEDULER] Error fetching user %d: %v", e.UserID, err)
			continue
		}

		SendPacingReminderEmail(user.Email, user.Name, course.Title, pacing.Deviation)
		notified++
	}

	log.Printf("[RECONCILE-SCHEDULER] Sent %d pacing reminders", notified)
}
