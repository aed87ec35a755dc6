package controllers

import (
	"errors"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SubmitQuizAnswer submits and evaluates a quiz answer
func SubmitQuizAnswer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	reqData := new(struct {
		SelectedOptionIDs []uint `json:"selected_option_ids"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if len(reqData.SelectedOptionIDs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please select at least one option!", nil)
	}

	result, err := services.SubmitQuiz(userID, uint(courseID), uint(lessonID), reqData.SelectedOptionIDs, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLessonNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		case errors.Is(err, services.ErrNotQuiz):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson is not a quiz!", nil)
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
		case errors.Is(err, services.ErrConcurrentUpdate):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Quiz submission conflicted, please retry!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answer!", nil)
		}
	}

	if result.Passed && result.PointsAwarded > 0 {
		var lesson courseModels.Lesson
		if err := database.Database.Db.Where("id = ?", lessonID).First(&lesson).Error; err == nil {
			go utils.SendQuizPassedEmail(user.Email, user.Name, lesson.Title, result.Percentage, result.PointsAwarded)
		}
	}

	if result.Progress >= 100 && result.LessonCompleted {
		var course courseModels.Course
		if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err == nil {
			go utils.NotifyCourseCompleted(user, course, result.Progress)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted!", fiber.Map{
		"attempt":        result.Attempt,
		"passed":         result.Passed,
		"score":          result.Attempt.Score,
		"max_score":      result.Attempt.MaxScore,
		"percentage":     result.Percentage,
		"points_awarded": result.PointsAwarded,
		"progress":       result.Progress,
	})
}
