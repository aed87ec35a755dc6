package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Course listing and details (public published courses)
	userGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)
	userGroup.Post("/:id/pause", middleware.JWTMiddleware, validators.PauseResumeEnrollment(), controllers.PauseEnrollment)
	userGroup.Post("/:id/resume", middleware.JWTMiddleware, validators.PauseResumeEnrollment(), controllers.ResumeEnrollment)

	// Lesson viewing (for enrolled users)
	userGroup.Get("/:id/lessons", middleware.JWTMiddleware, validators.LessonList(), controllers.GetCourseLessons)
	userGroup.Get("/:course_id/module/:module_id/day/:day", middleware.JWTMiddleware, validators.GetDayLessons(), controllers.GetDayLessons)

	// Lesson completion
	userGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.MarkLessonCompleteValidator(), controllers.MarkLessonComplete)
	userGroup.Get("/:course_id/completions", middleware.JWTMiddleware, validators.GetLessonCompletions(), controllers.GetLessonCompletions)

	// Quiz submission
	userGroup.Post("/:course_id/lesson/:lesson_id/quiz/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuizAnswer)

	// Progress tracking
	userGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.GetCourseProgress(), controllers.GetUserProgress)

	// Certificate request
	userGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, validators.RequestCertificateValidator(), controllers.RequestCertificate)

	// User enrollments, certificates and dashboard
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userEnrollGroup.Get("/enrollments/list", middleware.JWTMiddleware, validators.GetUserEnrollments(), controllers.GetEnrollments)
	userEnrollGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
	userEnrollGroup.Get("/dashboard", middleware.JWTMiddleware, controllers.GetUserDashboard)
}
