package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Completion string
	Imagen     string
	Blob       string
}

type AIConfig struct {
	CompletionBaseURL string
	CompletionModel   string
	ImagenBaseURL     string
	BlobBaseURL       string
}

type RateLimitConfig struct {
	WindowSeconds int
	ChatPerWindow int
	GenPerWindow  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Completion: getEnv("COMPLETION_API_KEY", ""),
			Imagen:     getEnv("IMAGEN_API_KEY", ""),
			Blob:       getEnv("BLOB_API_KEY", ""),
		},
		Ai: AIConfig{
			CompletionBaseURL: getEnv("COMPLETION_BASE_URL", "https://generativelanguage.googleapis.com"),
			CompletionModel:   getEnv("COMPLETION_MODEL", "gemini-2.0-flash"),
			ImagenBaseURL:     getEnv("IMAGEN_BASE_URL", ""),
			BlobBaseURL:       getEnv("BLOB_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 3600),
			ChatPerWindow: getEnvAsInt("RATE_LIMIT_CHAT_PER_WINDOW", 120),
			GenPerWindow:  getEnvAsInt("RATE_LIMIT_GENERATE_PER_WINDOW", 20),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
