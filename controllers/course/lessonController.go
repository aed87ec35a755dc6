package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LessonWithOptions represents a lesson with quiz options and completion status
type LessonWithOptions struct {
	courseModels.Lesson
	QuizOptions []courseModels.QuizOption `json:"quiz_options,omitempty"`
	IsCompleted bool                      `json:"is_completed"`
}

// enrichLesson attaches completion status and quiz options to a lesson
func enrichLesson(userID uint, lesson courseModels.Lesson) LessonWithOptions {
	enriched := LessonWithOptions{
		Lesson: lesson,
	}

	// Check if completed by user
	var completion courseModels.LessonCompletion
	if err := database.Database.Db.Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", userID, lesson.ID, false).First(&completion).Error; err == nil {
		enriched.IsCompleted = true
	}

	// Get quiz options if lesson is QUIZ type
	if lesson.ContentType == "QUIZ" {
		var options []courseModels.QuizOption
		database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).Order("order_index asc").Find(&options)
		// Remove IsCorrect from options for users (don't show answers)
		for j := range options {
			options[j].IsCorrect = false
		}
		enriched.QuizOptions = options
	}

	return enriched
}

func GetCourseLessons(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated course ID
	courseID, _ := strconv.Atoi(c.Locals("courseID").(string))

	// Get optional filters from query params
	moduleIDStr := c.Query("module_id")
	dayStr := c.Query("day")
	contentType := c.Query("content_type")

	// Retrieve validated pagination request
	reqData, _ := c.Locals("validatedLessonList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	// Set default pagination
	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	// Build query with filters
	db := database.Database.Db.Model(&courseModels.Lesson{}).Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true)

	// Apply optional filters
	if moduleIDStr != "" {
		if moduleID, err := strconv.Atoi(moduleIDStr); err == nil && moduleID > 0 {
			db = db.Where("module_id = ?", moduleID)
		}
	}
	if dayStr != "" {
		if day, err := strconv.Atoi(dayStr); err == nil && day > 0 {
			db = db.Where("day = ?", day)
		}
	}
	if contentType != "" {
		db = db.Where("content_type = ?", contentType)
	}

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var lessons []courseModels.Lesson
	if err := db.Offset(offset).Limit(limit).Order("module_id asc, day asc, order_index asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	// Enrich lessons with quiz options and completion status
	result := make([]LessonWithOptions, len(lessons))
	for i, lesson := range lessons {
		result[i] = enrichLesson(userId, lesson)
	}

	// Prepare response
	response := map[string]interface{}{
		"lessons": result,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", response)
}

func MarkLessonComplete(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated IDs
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)
	timeSpent, _ := c.Locals("timeSpentMinutes").(int)

	// Check if course exists and is published
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	result, err := services.MarkLessonComplete(userID, uint(courseID), uint(lessonID), timeSpent, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLessonNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
		case errors.Is(err, services.ErrConcurrentUpdate):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Progress update conflicted, please retry!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
		}
	}

	// A replayed completion is absorbed, not rejected
	if result.AlreadyCompleted {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson was already completed!", result)
	}

	if result.CourseCompleted {
		go utils.NotifyCourseCompleted(user, course, result.Progress)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", result)
}

func GetLessonCompletions(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Retrieve validated course ID
	courseID := c.Locals("courseID").(int)

	// Check if course exists and is published
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	// Check if user is enrolled
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	// Retrieve validated pagination request
	reqData, ok := c.Locals("validatedCompletionList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		// Fetch all completions without pagination
		var completions []courseModels.LessonCompletion
		if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).Find(&completions).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch completions!", nil)
		}

		response := map[string]interface{}{
			"completions": completions,
			"pagination": map[string]interface{}{
				"total": int64(len(completions)),
				"page":  1,
				"limit": len(completions),
			},
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Completions fetched successfully!", response)
	}

	// Set default pagination
	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	// Fetch completions with pagination
	var completions []courseModels.LessonCompletion
	db := database.Database.Db.Model(&courseModels.LessonCompletion{}).Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	if err := db.Offset(offset).Limit(limit).Order("completed_at desc").Find(&completions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch completions!", nil)
	}

	// Prepare response
	response := map[string]interface{}{
		"completions": completions,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completions fetched successfully!", response)
}
