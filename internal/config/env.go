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
	Port           string
	DatabaseDriver string
	DatabaseURL    string

	SessionSecret   string
	SessionTTL      time.Duration
	SessionStore    string
	StrictOwnership bool

	InferenceProvider string
	OllamaURL         string
	OllamaModel       string
	InferenceTimeout  time.Duration
	AIAPIKey          string
	GenModel          string

	ArchiveBucket   string
	ArchiveEndpoint string
	AwsRegion       string
	AwsAccessKey    string
	AwsSecretKey    string

	AllowedOrigins []string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "pgx"),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/loan_advisor?sslmode=disable"),

		SessionSecret:   getEnv("SESSION_SECRET", ""),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionStore:    getEnv("SESSION_STORE", "memory"),
		StrictOwnership: getEnvBool("STRICT_OWNERSHIP", false),

		InferenceProvider: getEnv("INFERENCE_PROVIDER", "ollama"),
		OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434/api/generate"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "ALIENTELLIGENCE/financialadvisor"),
		InferenceTimeout:  getEnvDuration("INFERENCE_TIMEOUT", 0),
		AIAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GenModel:          getEnv("GEN_MODEL", "gemini-1.5-flash"),

		ArchiveBucket:   getEnv("ARCHIVE_BUCKET", ""),
		ArchiveEndpoint: getEnv("ARCHIVE_ENDPOINT", ""),
		AwsRegion:       getEnv("AWS_REGION", "ap-south-1"),
		AwsAccessKey:    getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:    getEnv("AWS_SECRET_KEY", ""),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 0),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
	return def
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
