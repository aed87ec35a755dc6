package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetUserProgress gets the user's progress in a course: actual vs
// expected progress, pacing label and streaks, plus module roll-ups
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	progress, err := services.GetCourseProgress(userID, uint(courseID), time.Now())
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	// Get module-wise progress
	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules)

	type ModuleProgress struct {
		ModuleID         uint    `json:"module_id"`
		ModuleName       string  `json:"module_name"`
		TotalLessons     int64   `json:"total_lessons"`
		CompletedLessons int64   `json:"completed_lessons"`
		Progress         float64 `json:"progress"`
	}

	moduleProgress := make([]ModuleProgress, len(modules))
	for i, mod := range modules {
		var totalLessons int64
		var completedLessons int64

		database.Database.Db.Model(&courseModels.Lesson{}).Where("module_id = ? AND is_deleted = ? AND is_published = ?", mod.ID, false, true).Count(&totalLessons)
		database.Database.Db.Model(&courseModels.LessonCompletion{}).
			Joins("JOIN lessons ON lesson_completions.lesson_id = lessons.id").
			Where("lesson_completions.user_id = ? AND lessons.module_id = ? AND lesson_completions.is_deleted = ?", userID, mod.ID, false).
			Count(&completedLessons)

		modProgress := float64(0)
		if totalLessons > 0 {
			modProgress = float64(completedLessons) / float64(totalLessons) * 100
		}

		moduleProgress[i] = ModuleProgress{
			ModuleID:         mod.ID,
			ModuleName:       mod.Title,
			TotalLessons:     totalLessons,
			CompletedLessons: completedLessons,
			Progress:         modProgress,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"progress":        progress,
		"module_progress": moduleProgress,
	})
}

// GetUserDashboard gets the student-wide progress dashboard across all
// enrolled courses
func GetUserDashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	dashboard, err := services.GetDashboard(userID, time.Now())
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build dashboard!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", dashboard)
}
