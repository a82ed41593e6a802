package domain

import (
	"errors" // Sentinel validation errors
	"time"   // Timestamps

	"github.com/google/uuid"        // UUID primary keys
	"github.com/shopspring/decimal" // Exact decimal arithmetic for the multiplier
)

// Role is one of the four fixed authorization levels
type Role string

// Valid roles, from most to least privileged
const (
	RoleSuperAdmin     Role = "super_admin"     // Full access, sees everything
	RoleAdmin          Role = "admin"           // User management, minus super admin targets
	RoleAnalyst        Role = "analyst"         // Own strategies only
	RoleAccountManager Role = "account_manager" // Own strategies only
)

// Valid reports whether r is one of the four enumerated roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleAnalyst, RoleAccountManager:
		return true // Known role
	}
	return false // Anything else is rejected
}

// Validation errors for profile fields
var (
	ErrInvalidRole     = errors.New("role must be one of super_admin, admin, analyst, account_manager")
	ErrMultiplierRange = errors.New("multiplier must be between 1.0 and 10.0")
	ErrMultiplierStep  = errors.New("multiplier must be in increments of 0.5")
)

// Multiplier bounds and step divisor
var (
	multiplierMin = decimal.NewFromInt(1)  // Lower bound (inclusive)
	multiplierMax = decimal.NewFromInt(10) // Upper bound (inclusive)
	ten           = decimal.NewFromInt(10) // Scale factor for the step check
	five          = decimal.NewFromInt(5)  // Step divisor after scaling
)

// ValidateMultiplier checks the per-user multiplier: within [1.0, 10.0] and
// divisible by 0.5. The step is checked as (v*10) mod 5 == 0 on decimals, so
// 1.5 passes and 1.3 fails without float rounding surprises.
func ValidateMultiplier(v decimal.Decimal) error {
	// Range check first
	if v.LessThan(multiplierMin) || v.GreaterThan(multiplierMax) {
		return ErrMultiplierRange
	}
	// Step check: scale to tenths, then the remainder mod 5 must be zero
	if !v.Mul(ten).Mod(five).IsZero() {
		return ErrMultiplierStep
	}
	return nil // Multiplier is valid
}

// Profile Model: local user record mirroring an identity issued by the
// external auth provider. The ID is the provider-issued UUID, never generated
// locally.
type Profile struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`                  // Provider-issued identity
	Email      string          `gorm:"unique;not null" json:"email"`                    // Unique email
	FirstName  *string         `json:"first_name"`                                      // Optional first name
	LastName   *string         `json:"last_name"`                                       // Optional last name
	Role       Role            `gorm:"not null;default:analyst" json:"role"`            // Authorization level
	Multiplier decimal.Decimal `gorm:"type:numeric(3,1);default:1.0" json:"multiplier"` // Scaling factor, 1.0-10.0 in 0.5 steps
	TelegramID *string         `json:"telegram_id"`                                     // Optional messaging handle
	IsActive   bool            `gorm:"default:true" json:"is_active"`                   // Inactive profiles cannot log in
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`                // Creation timestamp
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`                // Last update timestamp
}

// UserPatch enumerates the profile fields an update may set. Pointer fields
// distinguish "absent" from "set to zero value"; anything not listed here is
// not settable through the update endpoint.
type UserPatch struct {
	FirstName  *string          `json:"first_name"`  // New first name
	LastName   *string          `json:"last_name"`   // New last name
	Role       *Role            `json:"role"`        // New role (guarded by policy)
	Multiplier *decimal.Decimal `json:"multiplier"`  // New multiplier
	TelegramID *string          `json:"telegram_id"` // New messaging handle
	IsActive   *bool            `json:"is_active"`   // New active flag
}

// Validate checks the fields the patch actually carries
func (p *UserPatch) Validate() error {
	// Role, if present, must be in the enum
	if p.Role != nil && !p.Role.Valid() {
		return ErrInvalidRole
	}
	// Multiplier, if present, must satisfy the range and step rules
	if p.Multiplier != nil {
		if err := ValidateMultiplier(*p.Multiplier); err != nil {
			return err
		}
	}
	return nil // Patch is valid
}

// Apply copies the set fields onto the profile, one explicit field at a time
func (p *UserPatch) Apply(u *Profile) {
	if p.FirstName != nil {
		u.FirstName = p.FirstName // Update first name
	}
	if p.LastName != nil {
		u.LastName = p.LastName // Update last name
	}
	if p.Role != nil {
		u.Role = *p.Role // Update role (policy has already vetted this)
	}
	if p.Multiplier != nil {
		u.Multiplier = *p.Multiplier // Update multiplier
	}
	if p.TelegramID != nil {
		u.TelegramID = p.TelegramID // Update messaging handle
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive // Update active flag
	}
}
