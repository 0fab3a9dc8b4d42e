package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	StoreBackend        string // "firestore", "postgres" or "memory"
	DatabaseURL         string
	FirebaseCredentials string
	GoogleProjectID     string
	PubSubTopic         string
	PubSubSubscription  string
	AdminJWTSecret      string
	LogLevel            string
	Location            *time.Location

	// Cron expressions, used verbatim by the scheduler
	ScheduleUnassigned  string
	ScheduleDueDate     string
	ScheduleReminder    string
	ScheduleMarketplace string
	ScheduleMissed      string

	// Hours added to an overdue pickup date when it is handed to another collector
	ReassignBufferHours int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	bufferHours := 2
	if v := os.Getenv("REASSIGN_BUFFER_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			bufferHours = parsed
		}
	}

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}

	topic := getEnv("PUBSUB_TOPIC", "pickup-events")

	return &Config{
		Port:                getEnv("PORT", "8080"),
		StoreBackend:        getEnv("STORE_BACKEND", "firestore"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubTopic:         topic,
		PubSubSubscription:  getEnv("PUBSUB_SUBSCRIPTION", topic+"-sub"), // Convention: topic-sub
		AdminJWTSecret:      os.Getenv("ADMIN_JWT_SECRET"), // empty disables the admin API
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Location:            loc,
		ScheduleUnassigned:  getEnv("SCHEDULE_UNASSIGNED", "@every 2m"),
		ScheduleDueDate:     getEnv("SCHEDULE_DUE_DATE", "@every 5m"),
		ScheduleReminder:    getEnv("SCHEDULE_REMINDER", "@every 5m"),
		ScheduleMarketplace: getEnv("SCHEDULE_MARKETPLACE", "@every 1h"),
		ScheduleMissed:      getEnv("SCHEDULE_MISSED", "0 1 * * *"),
		ReassignBufferHours: bufferHours,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
