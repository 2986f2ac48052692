package config

import (
	"strings"
	"time"
)

// Config stores environment configuration for the SMPost API.
type Config struct {
	Port        string
	StoreDriver string
	DatabaseURL string

	GeminiAPIKey     string
	GeminiAPIURL     string
	GeminiModel      string
	GeminiImageModel string

	SchedulerInterval time.Duration
	SchedulerBatch    int
	PublishTimeout    time.Duration
	PublishMinDelay   time.Duration
	PublishMaxDelay   time.Duration

	KafkaBrokers    []string
	KafkaClusterID  string
	PostEventsTopic string

	JWTSecret          string
	FrontendURL        string
	AutomationIndustry string
}

// LoadConfig loads the service configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:        GetEnv("PORT", "5000"),
		StoreDriver: GetEnv("STORE_DRIVER", "postgres"),
		DatabaseURL: GetEnv("DATABASE_URL", ""),

		GeminiAPIKey:     GetEnv("GEMINI_API_KEY", ""),
		GeminiAPIURL:     GetEnv("GEMINI_API_URL", ""),
		GeminiModel:      GetEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: GetEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),

		SchedulerInterval: parseDuration(GetEnv("SCHEDULER_INTERVAL", "60s"), 60*time.Second),
		SchedulerBatch:    GetEnvInt("SCHEDULER_BATCH", 50),
		PublishTimeout:    parseDuration(GetEnv("PUBLISH_TIMEOUT", "30s"), 30*time.Second),
		PublishMinDelay:   parseDuration(GetEnv("PUBLISH_MIN_DELAY", "1s"), time.Second),
		PublishMaxDelay:   parseDuration(GetEnv("PUBLISH_MAX_DELAY", "3s"), 3*time.Second),

		KafkaBrokers:    parseList(GetEnv("KAFKA_BROKERS", "")),
		KafkaClusterID:  GetEnv("KAFKA_CLUSTER_ID", "local"),
		PostEventsTopic: GetEnv("POST_EVENTS_TOPIC", "smpost.post_events"),

		JWTSecret:          GetEnv("JWT_SECRET", ""),
		FrontendURL:        GetEnv("FRONTEND_URL", "http://localhost:5173"),
		AutomationIndustry: GetEnv("AUTOMATION_INDUSTRY", "Digital Marketing"),
	}
}

func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var result []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
