package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	GoogleAPIKey  string
	GoogleBaseURL string

	GHLAPIKey     string
	GHLLocationID string
	GHLBaseURL    string
	GHLAPIVersion string

	// TZFieldID skips custom field discovery when set.
	TZFieldID     string
	TZFieldLabel  string
	TZNameFieldID string

	HTTPTimeout       time.Duration
	WorkerConcurrency int
	JobsDSN           string
	JobsRetention     int
	OfflineTZLookup   bool
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		GoogleAPIKey:      getEnv("GOOGLE_API_KEY", ""),
		GoogleBaseURL:     strings.TrimRight(getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com"), "/"),
		GHLAPIKey:         getEnv("GHL_API_KEY", ""),
		GHLLocationID:     getEnv("GHL_LOCATION_ID", ""),
		GHLBaseURL:        strings.TrimRight(getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com"), "/"),
		GHLAPIVersion:     getEnv("GHL_API_VERSION", "2021-07-28"),
		TZFieldID:         getEnv("TZ_FIELD_ID", ""),
		TZFieldLabel:      getEnv("TZ_FIELD_LABEL", "Time Zone"),
		TZNameFieldID:     getEnv("TZ_NAME_FIELD_ID", ""),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 20*time.Second),
		WorkerConcurrency: getInt("WORKER_CONCURRENCY", 8),
		JobsDSN:           getEnv("JOBS_DB_DSN", "file:jobs?mode=memory&cache=shared"),
		JobsRetention:     getInt("JOBS_RETENTION", 1000),
		OfflineTZLookup:   getBool("OFFLINE_TZ_LOOKUP", true),
	}
}

// Validate returns a warning for each missing credential. None of them stop
// the server from starting.
func (c *Config) Validate() []string {
	var warnings []string
	if c.GoogleAPIKey == "" {
		warnings = append(warnings, "GOOGLE_API_KEY is not set; geocoding will fail and only the state table is used")
	}
	if c.GHLAPIKey == "" {
		warnings = append(warnings, "GHL_API_KEY is not set; contact updates will be rejected")
	}
	if c.GHLLocationID == "" {
		warnings = append(warnings, "GHL_LOCATION_ID is not set; custom field discovery is disabled")
	}
	return warnings
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return b
}
