package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	JWTSecret    string
	AppEnv       string

	// Root account seeded at startup.
	RootUsername string
	RootMail     string
	RootPassword string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./barrio.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		AppEnv:       getEnv("APP_ENV", "development"),
		RootUsername: getEnv("ROOT_USERNAME", "admin"),
		RootMail:     getEnv("ROOT_MAIL", "admin@admin.com"),
		RootPassword: getEnv("ROOT_PASSWORD", "contrasena#admin2024"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
