package main

import (
	"broker_platform/internal/api"        // Custom package for API handlers
	"broker_platform/internal/config"     // Custom package for configuration
	"broker_platform/internal/middleware" // Custom package for middleware
	"broker_platform/internal/session"    // Session tracker
	"broker_platform/internal/supabase"   // Identity provider client
	"log"                                 // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the Supabase Postgres database
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Identity provider client: every credential check goes through here
	provider := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)

	// Session tracker over the shared store
	tracker := session.NewTracker(db)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Browser frontend calls the API cross-origin
	r.Use(middleware.CORSMiddleware())

	// Service banner and store connectivity probe
	r.GET("/", api.RootHandler())           // Banner endpoint
	r.GET("/health", api.HealthHandler(db)) // Health endpoint

	// Auth routes: login is open, logout verifies its own bearer credential
	r.POST("/auth/login", api.LoginHandler(db, provider, tracker)) // Login endpoint
	r.POST("/auth/logout", api.LogoutHandler(provider, tracker))   // Logout endpoint

	// User management routes (bearer credential required; role checks in handlers)
	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware(provider, db))
	userGroup.POST("", api.CreateUserHandler(db, provider)) // Create user endpoint
	userGroup.GET("", api.ListUsersHandler(db))             // List users endpoint
	userGroup.PUT("/:id", api.UpdateUserHandler(db))        // Update user endpoint
	userGroup.DELETE("/:id", api.DeleteUserHandler(db))     // Delete user endpoint

	// Strategy routes (any authenticated user; visibility scoped in handlers)
	strategyGroup := r.Group("/strategies")
	strategyGroup.Use(middleware.AuthMiddleware(provider, db))
	strategyGroup.POST("", api.CreateStrategyHandler(db)) // Create strategy endpoint
	strategyGroup.GET("", api.ListStrategiesHandler(db))  // List strategies endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
