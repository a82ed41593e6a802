package config

import (
	"os" // For environment variables

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration. It is built once in main and
// injected into every component that needs it; nothing reads the environment
// after startup.
type Config struct {
	AppPort     string // Application port
	DatabaseURL string // Postgres connection string (the Supabase database)
	SupabaseURL string // Identity provider project URL
	SupabaseKey string // Identity provider service role key
	IsProd      bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:     os.Getenv("APP_PORT"),          // Application port
		DatabaseURL: os.Getenv("DATABASE_URL"),      // Postgres connection string
		SupabaseURL: os.Getenv("SUPABASE_URL"),      // Identity provider URL
		SupabaseKey: os.Getenv("SUPABASE_KEY"),      // Identity provider key
		IsProd:      os.Getenv("IS_PROD") == "true", // Is production environment
	}
}
