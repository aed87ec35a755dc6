package services

import (
	"testing"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB wires the global database instance to a fresh in-memory
// SQLite database. Redis is left disconnected; the dashboard code
// recomputes on every read when no cache is available.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.LoadConfig()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	database.Database = database.DbInstance{Db: db}
	database.Cache = nil

	return db
}

// seedCourse creates an active published course with the requested
// number of published lessons, one per day.
func seedCourse(t *testing.T, db *gorm.DB, durationDays, lessonCount int) (courseModels.Course, []courseModels.Lesson) {
	t.Helper()

	course := courseModels.Course{
		Title:        "Go From Scratch",
		Description:  "A daily course used by the service tests",
		Author:       "BrightPath Academy",
		DurationDays: durationDays,
		Status:       "ACTIVE",
		IsPublished:  true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}

	module := courseModels.Module{
		CourseID: course.ID,
		Title:    "Fundamentals",
	}
	if err := db.Create(&module).Error; err != nil {
		t.Fatalf("failed to seed module: %v", err)
	}

	lessons := make([]courseModels.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson := courseModels.Lesson{
			CourseID:    course.ID,
			ModuleID:    module.ID,
			Day:         i + 1,
			Title:       "Lesson",
			ContentType: "TEXT",
			TextContent: "lesson body",
			IsPublished: true,
		}
		if err := db.Create(&lesson).Error; err != nil {
			t.Fatalf("failed to seed lesson: %v", err)
		}
		lessons = append(lessons, lesson)
	}

	return course, lessons
}

// seedQuizLesson adds a published quiz lesson with the given correct
// and wrong option counts. Returns the lesson plus the option rows.
func seedQuizLesson(t *testing.T, db *gorm.DB, courseID uint, correct, wrong int) (courseModels.Lesson, []courseModels.QuizOption) {
	t.Helper()

	lesson := courseModels.Lesson{
		CourseID:    courseID,
		ModuleID:    1,
		Day:         1,
		Title:       "Checkpoint Quiz",
		ContentType: "QUIZ",
		IsPublished: true,
	}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("failed to seed quiz lesson: %v", err)
	}

	options := make([]courseModels.QuizOption, 0, correct+wrong)
	for i := 0; i < correct; i++ {
		opt := courseModels.QuizOption{LessonID: lesson.ID, OptionText: "right answer", IsCorrect: true, OrderIndex: i + 1}
		if err := db.Create(&opt).Error; err != nil {
			t.Fatalf("failed to seed quiz option: %v", err)
		}
		options = append(options, opt)
	}
	for i := 0; i < wrong; i++ {
		opt := courseModels.QuizOption{LessonID: lesson.ID, OptionText: "wrong answer", IsCorrect: false, OrderIndex: correct + i + 1}
		if err := db.Create(&opt).Error; err != nil {
			t.Fatalf("failed to seed quiz option: %v", err)
		}
		options = append(options, opt)
	}

	return lesson, options
}
