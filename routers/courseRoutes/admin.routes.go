package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Course CRUD
	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Put("/:id", middleware.JWTMiddleware, validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", middleware.JWTMiddleware, validators.DeleteCourse(), controllers.AdminDeleteCourse)
	adminGroup.Get("/list", middleware.JWTMiddleware, validators.AdminList(), controllers.AdminGetAllCourses)
	adminGroup.Get("/:id", middleware.JWTMiddleware, validators.DeleteCourse(), controllers.AdminGetCourseDetails)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, validators.PublishCourse(), controllers.AdminPublishCourse)
	adminGroup.Post("/:id/thumbnail", middleware.JWTMiddleware, validators.UploadThumbnail(), controllers.AdminUploadCourseThumbnail)

	// Module Management
	adminGroup.Post("/:id/module", middleware.JWTMiddleware, validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Put("/:course_id/module/:module_id", middleware.JWTMiddleware, validators.UpdateModule(), controllers.AdminUpdateModule)
	adminGroup.Delete("/:course_id/module/:module_id", middleware.JWTMiddleware, validators.DeleteModule(), controllers.AdminDeleteModule)
	adminGroup.Get("/:id/modules", middleware.JWTMiddleware, validators.ListModules(), controllers.AdminListModules)

	// Lesson Management
	adminGroup.Post("/:course_id/module/:module_id/lesson", middleware.JWTMiddleware, validators.CreateLessonAdmin(), controllers.AdminCreateLesson)
	adminGroup.Get("/:course_id/module/:module_id/lessons", middleware.JWTMiddleware, validators.ListModuleLessons(), controllers.AdminGetModuleLessons)

	// Lesson endpoints (separate from course group for easier access)
	lessonGroup := app.Group("/admin/lesson")
	lessonGroup.Put("/:lesson_id", middleware.JWTMiddleware, validators.UpdateLessonAdmin(), controllers.AdminUpdateLesson)
	lessonGroup.Delete("/:lesson_id", middleware.JWTMiddleware, validators.DeleteLessonAdmin(), controllers.AdminDeleteLesson)
	lessonGroup.Post("/:lesson_id/publish", middleware.JWTMiddleware, validators.PublishLessonAdmin(), controllers.AdminPublishLesson)

	// Quiz Option Management
	lessonGroup.Post("/:lesson_id/option", middleware.JWTMiddleware, validators.AddQuizOption(), controllers.AdminAddQuizOption)

	optionGroup := app.Group("/admin/option")
	optionGroup.Put("/:option_id", middleware.JWTMiddleware, validators.UpdateQuizOption(), controllers.AdminUpdateQuizOption)
	optionGroup.Delete("/:option_id", middleware.JWTMiddleware, validators.DeleteQuizOption(), controllers.AdminDeleteQuizOption)

	// Enrollment & Progress Tracking
	adminGroup.Get("/:id/enrollments", middleware.JWTMiddleware, validators.GetCourseEnrollments(), controllers.AdminGetCourseEnrollments)
	adminGroup.Get("/:id/completed", middleware.JWTMiddleware, validators.GetCourseEnrollments(), controllers.AdminGetCompletedStudents)

	studentGroup := app.Group("/admin/student")
	studentGroup.Get("/:user_id/progress", middleware.JWTMiddleware, validators.GetStudentProgress(), controllers.AdminGetStudentProgress)

	// Certificate Management
	certGroup := app.Group("/admin/certificates")
	certGroup.Get("/pending", middleware.JWTMiddleware, validators.GetCertificateRequests(), controllers.AdminGetPendingCertificates)
	certGroup.Get("/issued", middleware.JWTMiddleware, validators.GetCertificateRequests(), controllers.AdminGetIssuedCertificates)

	certRequestGroup := app.Group("/admin/certificate")
	certRequestGroup.Post("/:request_id/approve", middleware.JWTMiddleware, validators.ApproveCertificate(), controllers.AdminApproveCertificate)
	certRequestGroup.Post("/:request_id/reject", middleware.JWTMiddleware, validators.RejectCertificate(), controllers.AdminRejectCertificate)

	// Dashboard & Maintenance
	dashGroup := app.Group("/admin/dashboard")
	dashGroup.Get("/stats", middleware.JWTMiddleware, controllers.AdminDashboardStats)

	maintGroup := app.Group("/admin/maintenance")
	maintGroup.Post("/reconcile", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), controllers.AdminReconcileEnrollments)
}
