package middleware

import (
	"broker_platform/internal/domain"   // Profile model
	"broker_platform/internal/supabase" // Identity provider client
	"errors"                            // Provider error matching
	"net/http"                          // HTTP status codes
	"strings"                           // Header parsing

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ProfileKey is the gin context key the authenticated profile is stored under
const ProfileKey = "profile"

// AuthMiddleware validates the bearer credential by delegating to the
// identity provider on every request, then loads the matching local profile.
// No token is verified or cached locally.
func AuthMiddleware(provider *supabase.Client, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ") // Extract the credential
		// Ask the provider who this credential belongs to
		authUser, err := provider.UserFromToken(token)
		if err != nil {
			// An unreachable provider is a 503, a rejected token a 401
			if errors.Is(err, supabase.ErrUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Auth provider unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		var profile domain.Profile // Load the local profile behind the identity
		if err := db.First(&profile, "id = ?", authUser.ID).Error; err != nil {
			// A valid identity without a local profile gets no access
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User account is disabled or not found"})
			return
		}
		// Disabled profiles are rejected even with a valid credential
		if !profile.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User account is disabled or not found"})
			return
		}
		c.Set(ProfileKey, &profile) // Store the profile for the handlers
		c.Next()                    // Proceed to the next handler
	}
}

// CurrentProfile pulls the authenticated profile set by AuthMiddleware
func CurrentProfile(c *gin.Context) *domain.Profile {
	v, ok := c.Get(ProfileKey)
	if !ok {
		return nil // Route was not behind AuthMiddleware
	}
	return v.(*domain.Profile)
}

// CORSMiddleware allows the browser frontend to call the API from any origin
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")                                // Allow all origins
		c.Header("Access-Control-Allow-Credentials", "true")                        // Allow credentials
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS") // Allow all methods
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")     // Allow auth headers
		// Preflight requests are answered directly
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next() // Proceed to the next handler
	}
}
