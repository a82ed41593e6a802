package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM hooks
)

// Session Model: one login event. A session is "open" while LogoutTime is
// null. Nothing at write time prevents several open sessions for one user;
// only the close-most-recent query assumes a single meaningful one.
type Session struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`          // Primary key
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"` // Foreign key to Profile
	LoginTime  time.Time  `gorm:"not null" json:"login_time"`              // Set when the session is opened
	LogoutTime *time.Time `json:"logout_time"`                             // Null while the session is open
	IPAddress  string     `json:"ip_address"`                              // Client IP at login
	UserAgent  string     `json:"user_agent"`                              // Browser/device info at login

	User *Profile `gorm:"constraint:OnDelete:CASCADE" json:"-"` // Owning profile
}

// BeforeCreate assigns a fresh UUID when none was provided
func (s *Session) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New() // Generate the primary key
	}
	return nil
}
