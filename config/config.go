package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBName    string
	JWTKey    string
	SaltRound int

	// Issued token lifetime in hours.
	JWTExpiryHours int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EmailSender string
	Password    string // SMTP Password

	WebhookURL string // Optional endpoint notified on course completion

	// Point awards. Policy values, overridable per deployment.
	PointsEnrollment  int
	PointsLesson      int
	PointsQuizPassMin int
	PointsCourseBonus int

	// Pacing band in percentage points around expected progress.
	PacingBandPercent float64

	// Default quiz pass threshold (percentage), lessons may override.
	QuizPassPercent float64

	// Dashboard cache TTL in minutes. 0 disables caching.
	DashboardCacheTTLMin int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBName:    getEnv("DB_NAME", "lms.db"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		WebhookURL: getEnv("PROGRESS_WEBHOOK_URL", ""),

		PointsEnrollment:  getEnvInt("POINTS_ENROLLMENT", 50),
		PointsLesson:      getEnvInt("POINTS_LESSON", 10),
		PointsQuizPassMin: getEnvInt("POINTS_QUIZ_PASS_MIN", 5),
		PointsCourseBonus: getEnvInt("POINTS_COURSE_BONUS", 500),

		PacingBandPercent: getEnvFloat("PACING_BAND_PERCENT", 5),

		QuizPassPercent: getEnvFloat("QUIZ_PASS_PERCENT", 70),

		DashboardCacheTTLMin: getEnvInt("DASHBOARD_CACHE_TTL_MIN", 5),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.PacingBandPercent < 0 {
		log.Println("Warning: PACING_BAND_PERCENT is negative. Falling back to 5.")
		AppConfig.PacingBandPercent = 5
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvFloat retrieves an environment variable as a float or returns the default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return floatValue
}
