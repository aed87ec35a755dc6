package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateLesson creates a new lesson in a module
func AdminCreateLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	// Check if module exists
	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Day           int     `json:"day"`
		Title         string  `json:"title"`
		Description   string  `json:"description"`
		ContentType   string  `json:"content_type"`
		TextContent   string  `json:"text_content"`
		VideoURL      string  `json:"video_url"`
		ImageURL      string  `json:"image_url"`
		OrderIndex    int     `json:"order_index"`
		PassThreshold float64 `json:"pass_threshold"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next order index if not provided
	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		database.Database.Db.Model(&courseModels.Lesson{}).
			Where("module_id = ? AND day = ? AND is_deleted = ?", moduleID, reqData.Day, false).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	lesson := courseModels.Lesson{
		CourseID:      uint(courseID),
		ModuleID:      uint(moduleID),
		Day:           reqData.Day,
		Title:         reqData.Title,
		Description:   reqData.Description,
		ContentType:   reqData.ContentType,
		TextContent:   reqData.TextContent,
		VideoURL:      reqData.VideoURL,
		ImageURL:      reqData.ImageURL,
		OrderIndex:    orderIndex,
		PassThreshold: reqData.PassThreshold,
		IsPublished:   false,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates an existing lesson
func AdminUpdateLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Day           int     `json:"day"`
		Title         string  `json:"title"`
		Description   string  `json:"description"`
		ContentType   string  `json:"content_type"`
		TextContent   string  `json:"text_content"`
		VideoURL      string  `json:"video_url"`
		ImageURL      string  `json:"image_url"`
		OrderIndex    int     `json:"order_index"`
		PassThreshold float64 `json:"pass_threshold"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Day > 0 {
		lesson.Day = reqData.Day
	}
	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.Description != "" {
		lesson.Description = reqData.Description
	}
	if reqData.ContentType != "" {
		lesson.ContentType = reqData.ContentType
	}
	if reqData.TextContent != "" {
		lesson.TextContent = reqData.TextContent
	}
	if reqData.VideoURL != "" {
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.ImageURL != "" {
		lesson.ImageURL = reqData.ImageURL
	}
	if reqData.OrderIndex > 0 {
		lesson.OrderIndex = reqData.OrderIndex
	}
	if reqData.PassThreshold > 0 {
		lesson.PassThreshold = reqData.PassThreshold
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminDeleteLesson soft deletes a lesson
func AdminDeleteLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	tx := database.Database.Db.Begin()

	lesson.IsDeleted = true
	if err := tx.Save(&lesson).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	// Delete quiz options if lesson type is QUIZ
	if lesson.ContentType == "QUIZ" {
		if err := tx.Model(&courseModels.QuizOption{}).Where("lesson_id = ?", lessonID).Update("is_deleted", true).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz options!", nil)
		}
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AdminPublishLesson publishes or unpublishes a lesson
func AdminPublishLesson(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	lessonID := c.Locals("lessonID").(int)
	publishStatus := c.Locals("publishStatus").(bool)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	// If publishing a quiz, ensure it has options
	if publishStatus && lesson.ContentType == "QUIZ" {
		var optionCount int64
		database.Database.Db.Model(&courseModels.QuizOption{}).Where("lesson_id = ? AND is_deleted = ?", lessonID, false).Count(&optionCount)
		if optionCount < 2 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz must have at least 2 options before publishing!", nil)
		}

		// Check if at least one correct answer exists
		var correctCount int64
		database.Database.Db.Model(&courseModels.QuizOption{}).Where("lesson_id = ? AND is_correct = ? AND is_deleted = ?", lessonID, true, false).Count(&correctCount)
		if correctCount == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz must have at least one correct answer!", nil)
		}
	}

	lesson.IsPublished = publishStatus
	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	message := "Lesson unpublished successfully!"
	if publishStatus {
		message = "Lesson published successfully!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, lesson)
}

// AdminAddQuizOption adds an option to a quiz lesson
func AdminAddQuizOption(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	// Verify lesson exists and is quiz type
	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if lesson.ContentType != "QUIZ" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson is not a quiz type!", nil)
	}

	reqData, ok := c.Locals("validatedQuizOption").(*struct {
		OptionText string `json:"option_text"`
		IsCorrect  bool   `json:"is_correct"`
		OrderIndex int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Get the next order index if not provided
	orderIndex := reqData.OrderIndex
	if orderIndex == 0 {
		var maxOrder int
		database.Database.Db.Model(&courseModels.QuizOption{}).
			Where("lesson_id = ? AND is_deleted = ?", lessonID, false).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	option := courseModels.QuizOption{
		LessonID:   uint(lessonID),
		OptionText: reqData.OptionText,
		IsCorrect:  reqData.IsCorrect,
		OrderIndex: orderIndex,
	}

	if err := database.Database.Db.Create(&option).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add quiz option!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz option added successfully!", option)
}

// AdminUpdateQuizOption updates a quiz option
func AdminUpdateQuizOption(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	optionID := c.Locals("optionID").(int)

	var option courseModels.QuizOption
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", optionID, false).First(&option).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz option not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuizOptionUpdate").(*struct {
		OptionText string `json:"option_text"`
		IsCorrect  bool   `json:"is_correct"`
		OrderIndex int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.OptionText != "" {
		option.OptionText = reqData.OptionText
	}
	option.IsCorrect = reqData.IsCorrect
	if reqData.OrderIndex > 0 {
		option.OrderIndex = reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&option).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update quiz option!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz option updated successfully!", option)
}

// AdminDeleteQuizOption soft deletes a quiz option
func AdminDeleteQuizOption(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	optionID := c.Locals("optionID").(int)

	var option courseModels.QuizOption
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", optionID, false).First(&option).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz option not found!", nil)
	}

	option.IsDeleted = true
	if err := database.Database.Db.Save(&option).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz option!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz option deleted successfully!", nil)
}

// AdminLessonWithQuiz represents admin lesson detail with quiz options
type AdminLessonWithQuiz struct {
	courseModels.Lesson
	QuizOptions []courseModels.QuizOption `json:"quiz_options,omitempty"`
}

// AdminGetModuleLessons gets all lessons for a module organized by day with quiz options
func AdminGetModuleLessons(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var lessons []courseModels.Lesson
	if err := database.Database.Db.Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Order("day asc, order_index asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	// Enrich lessons with quiz options
	enrichedLessons := make([]AdminLessonWithQuiz, len(lessons))
	for i, lesson := range lessons {
		enrichedLessons[i] = AdminLessonWithQuiz{
			Lesson: lesson,
		}

		// Get quiz options if lesson is quiz type
		if lesson.ContentType == "QUIZ" {
			var options []courseModels.QuizOption
			database.Database.Db.Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).Order("order_index asc").Find(&options)
			enrichedLessons[i].QuizOptions = options
		}
	}

	// Group by day
	lessonsByDay := make(map[int][]AdminLessonWithQuiz)
	for _, lesson := range enrichedLessons {
		lessonsByDay[lesson.Day] = append(lessonsByDay[lesson.Day], lesson)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", fiber.Map{
		"module":         module,
		"lessons_by_day": lessonsByDay,
		"total_lessons":  len(lessons),
	})
}
