package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	MongoURI       string
	MongoDatabase  string
	Addr           string
	AllowedOrigins []string
	RedisURL       string
	SeedDemoData   bool
	LogLevel       string
	LogFormat      string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return Config{}, errors.New("MONGO_URI env var is required")
	}

	addr := fmt.Sprintf(":%s", envOrDefault("PORT", "5000"))

	origins := parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	return Config{
		MongoURI:       uri,
		MongoDatabase:  envOrDefault("MONGO_DB", "songcatalog"),
		Addr:           addr,
		AllowedOrigins: origins,
		RedisURL:       os.Getenv("REDIS_URL"),
		SeedDemoData:   os.Getenv("SEED_DEMO_DATA") == "true",
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
