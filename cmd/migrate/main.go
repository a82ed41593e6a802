package main

import (
	"broker_platform/internal/config" // Custom import path (Config)
	"broker_platform/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	// The connection string points at the Supabase Postgres instance
	db.Migrate(cfg.DatabaseURL)
}
