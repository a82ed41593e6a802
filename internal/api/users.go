package api

import (
	"broker_platform/internal/domain"     // Importing domain models
	"broker_platform/internal/middleware" // Authenticated profile lookup
	"broker_platform/internal/policy"     // Access policy engine
	"broker_platform/internal/supabase"   // Identity provider client
	"encoding/json"                       // Strict patch decoding
	"errors"                              // Provider error matching
	"net/http"                            // HTTP status codes
	"strconv"                             // Query parameter parsing

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // Path parameter parsing
	"github.com/shopspring/decimal" // Multiplier values
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
)

// UserCreateRequest is the payload for creating a user
type UserCreateRequest struct {
	Email      string           `json:"email" binding:"required,email"`    // Unique email
	Password   string           `json:"password" binding:"required,min=8"` // Initial password, forwarded to the provider
	FirstName  *string          `json:"first_name"`                        // Optional first name
	LastName   *string          `json:"last_name"`                         // Optional last name
	Role       domain.Role      `json:"role"`                              // Defaults to analyst
	Multiplier *decimal.Decimal `json:"multiplier"`                        // Defaults to 1.0
	TelegramID *string          `json:"telegram_id"`                       // Optional messaging handle
}

// CreateUserHandler registers a user: identity at the provider first, then
// the local profile. Super admin only. On a local insert failure the
// provider-side identity is deleted again; if that compensation also fails a
// reconciliation row records the orphan.
func CreateUserHandler(db *gorm.DB, provider *supabase.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentProfile(c) // The authenticated caller
		// Only super_admin may create users
		if err := policy.Authorize(actor.Role, policy.OpCreateUser); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		var req UserCreateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply the documented defaults
		if req.Role == "" {
			req.Role = domain.RoleAnalyst // Default role
		}
		multiplier := decimal.NewFromInt(1) // Default multiplier
		if req.Multiplier != nil {
			multiplier = *req.Multiplier
		}
		// Validate role and multiplier before touching anything durable
		if !req.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRole.Error()})
			return
		}
		if err := domain.ValidateMultiplier(multiplier); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Reject duplicate emails before calling the provider
		var existing domain.Profile
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		// 1. Create the identity at the provider; its UUID keys the profile
		authUser, err := provider.AdminCreateUser(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, supabase.ErrUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Auth service unavailable"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		// 2. Create the local profile linked to that identity
		user := domain.Profile{
			ID:         authUser.ID,    // Provider-issued identity
			Email:      req.Email,      // Unique email
			FirstName:  req.FirstName,  // Optional first name
			LastName:   req.LastName,   // Optional last name
			Role:       req.Role,       // Authorization level
			Multiplier: multiplier,     // Scaling factor
			TelegramID: req.TelegramID, // Optional messaging handle
			IsActive:   true,           // New users start active
		}
		if err := db.Create(&user).Error; err != nil {
			// Compensate: remove the identity we just created
			if delErr := provider.AdminDeleteUser(authUser.ID); delErr != nil {
				// Compensation failed too: record the orphan instead of losing it
				rec := domain.ReconciliationRecord{
					AuthUserID: authUser.ID, // The orphaned identity
					Email:      req.Email,   // For the operator
					Reason:     "profile insert failed: " + err.Error() + "; provider delete failed: " + delErr.Error(),
				}
				if recErr := db.Create(&rec).Error; recErr != nil {
					logrus.Errorf("failed to record orphaned auth user %s: %v", authUser.ID, recErr)
				}
				logrus.Warnf("orphaned auth user %s recorded for reconciliation", authUser.ID)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user profile"})
			return
		}
		c.JSON(http.StatusCreated, user) // Return the new user record
	}
}

// ListUsersHandler returns users with skip/limit pagination. Super admin and
// admin only.
func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentProfile(c) // The authenticated caller
		// Only super_admin and admin may list users
		if err := policy.Authorize(actor.Role, policy.OpListUsers); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		skip := 0    // Default offset
		limit := 100 // Default page size
		if s := c.Query("skip"); s != "" {
			if v, err := strconv.Atoi(s); err == nil && v >= 0 {
				skip = v // Set offset if valid
			}
		}
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v // Set page size if valid
			}
		}
		var users []domain.Profile // Slice to hold users
		if err := db.Offset(skip).Limit(limit).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users) // Return the page
	}
}

// UpdateUserHandler applies a typed patch to a profile. Super admin and admin
// only; admins cannot touch super admin targets or change roles. Unknown
// JSON keys are rejected outright.
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentProfile(c) // The authenticated caller
		// Only super_admin and admin may attempt updates
		if err := policy.Authorize(actor.Role, policy.OpUpdateUser); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		userID, err := uuid.Parse(c.Param("id")) // Parse the target id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		// Decode the patch strictly: unknown keys are a client error, not
		// silently dropped fields
		var patch domain.UserPatch
		dec := json.NewDecoder(c.Request.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		// Field-level validation before any policy or store work
		if err := patch.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var target domain.Profile // Fetch the target user
		if err := db.First(&target, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Target-sensitive guards: super admin targets and role escalation
		if err := policy.CheckUserUpdate(actor.Role, target.Role, &patch); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		patch.Apply(&target) // Copy the set fields onto the profile
		if err := db.Save(&target).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, target) // Return the updated record
	}
}

// DeleteUserHandler removes a profile. Super admin only.
func DeleteUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentProfile(c) // The authenticated caller
		// Only super_admin may delete users
		if err := policy.Authorize(actor.Role, policy.OpDeleteUser); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		userID, err := uuid.Parse(c.Param("id")) // Parse the target id
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		// Delete by primary key; zero rows means the user never existed
		res := db.Delete(&domain.Profile{}, "id = ?", userID)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User deleted"})
	}
}
