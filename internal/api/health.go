package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// RootHandler returns the service banner
func RootHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "active", "system": "Multi-Broker Platform Alpha Layer"})
	}
}

// HealthHandler probes store connectivity with a SELECT 1
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Executing SELECT 1 is the standard way to ping a SQL DB
		if err := db.Exec("SELECT 1").Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"db_status": "connected", "mode": "gorm"})
	}
}
