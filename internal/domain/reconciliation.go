package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM hooks
)

// ReconciliationRecord Model: written when a provider-side identity was
// created but the local profile insert failed AND the compensating delete of
// that identity also failed. Operators resolve these rows by hand; nothing in
// the system reads them back.
type ReconciliationRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`         // Primary key
	AuthUserID uuid.UUID `gorm:"type:uuid;not null" json:"auth_user_id"` // Orphaned provider-side identity
	Email      string    `gorm:"not null" json:"email"`                  // Email the identity was created with
	Reason     string    `json:"reason"`                                 // What failed, for the operator
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`       // When the orphan was detected
}

// BeforeCreate assigns a fresh UUID when none was provided
func (r *ReconciliationRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New() // Generate the primary key
	}
	return nil
}
