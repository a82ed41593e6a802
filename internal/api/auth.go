package api

import (
	"broker_platform/internal/domain"   // Importing domain models
	"broker_platform/internal/session"  // Session tracker
	"broker_platform/internal/supabase" // Identity provider client
	"errors"                            // Provider error matching
	"net/http"                          // HTTP status codes
	"strings"                           // Header parsing

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// LoginRequest carries the credentials forwarded to the identity provider
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// TokenResponse is returned on a successful login
type TokenResponse struct {
	AccessToken string         `json:"access_token"` // Provider-issued bearer credential
	TokenType   string         `json:"token_type"`   // Always "bearer"
	User        domain.Profile `json:"user"`         // The local profile behind the identity
}

// clientIP prefers the X-Forwarded-For header (cloud/proxy setups) and falls
// back to the direct peer address
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		return fwd // Proxy-reported client address
	}
	return c.ClientIP() // Direct peer address
}

// LoginHandler verifies credentials with the identity provider, checks the
// local profile, and records a session row for the login
func LoginHandler(db *gorm.DB, provider *supabase.Client, tracker *session.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// A. Verify credentials with the provider
		tok, err := provider.SignInWithPassword(req.Email, req.Password)
		if err != nil {
			// An unreachable provider is a 503, rejected credentials a 401
			if errors.Is(err, supabase.ErrUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Auth service unavailable"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
			return
		}
		// B. Verify the local profile exists and is active
		var profile domain.Profile
		if err := db.Where("email = ?", req.Email).First(&profile).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "User account is disabled or not found"})
			return
		}
		if !profile.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "User account is disabled or not found"})
			return
		}
		// C. Record the login as a session row
		if _, err := tracker.Open(profile.ID, clientIP(c), c.GetHeader("User-Agent")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record session"})
			return
		}
		// D. Return the provider token alongside the local profile
		c.JSON(http.StatusOK, TokenResponse{
			AccessToken: tok.AccessToken, // Bearer credential for subsequent calls
			TokenType:   "bearer",        // Token type
			User:        profile,         // Local profile
		})
	}
}

// LogoutHandler closes the caller's most recent open session. It verifies the
// bearer credential with the provider directly rather than through the full
// auth middleware, so even a since-disabled profile can still close its
// session. Always success-shaped: "no open session" is a message, not an
// error status.
func LogoutHandler(provider *supabase.Client, tracker *session.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ") // Extract the credential
		// 1. Resolve the credential to an identity
		authUser, err := provider.UserFromToken(token)
		if err != nil {
			if errors.Is(err, supabase.ErrUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Auth provider unavailable"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		// 2. Close the most recent open session, if any
		closed, err := tracker.CloseMostRecent(authUser.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close session"})
			return
		}
		// 3. Logout is idempotent: report what happened, never fail
		if closed == nil {
			c.JSON(http.StatusOK, gin.H{"status": "warning", "message": "User was logged in, but no active session record found."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out successfully"})
	}
}
