// Package session records login and logout events against the durable store.
package session

import (
	"broker_platform/internal/domain" // Session model
	"errors"                          // gorm error matching
	"time"                            // Timestamps

	"github.com/google/uuid" // User identifiers
	"gorm.io/gorm"           // GORM ORM library
)

// Tracker writes and closes session rows. It holds no state beyond the DB
// handle and is safe for concurrent use.
type Tracker struct {
	db *gorm.DB // Shared durable store
}

// NewTracker returns a Tracker over the given store
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// Open inserts a new session row with the current login time and a null
// logout time. It never looks at prior sessions: logging in twice leaves two
// open rows for the user. Known behavior, kept as-is.
func (t *Tracker) Open(userID uuid.UUID, ip, userAgent string) (*domain.Session, error) {
	s := &domain.Session{
		UserID:    userID,     // Owning profile
		LoginTime: time.Now(), // Session opens now
		IPAddress: ip,         // Client IP at login
		UserAgent: userAgent,  // Browser/device info
	}
	// Insert the row; LogoutTime stays null, meaning "open"
	if err := t.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// CloseMostRecent stamps a logout time on the user's open session with the
// latest login time and returns it. Ties on login time are broken by id
// descending to keep the choice deterministic. Returns (nil, nil) when the
// user has no open session; callers treat logout as idempotent.
func (t *Tracker) CloseMostRecent(userID uuid.UUID) (*domain.Session, error) {
	var s domain.Session // The session to close
	// Most recent open session: null logout, latest login, id as tie-break
	err := t.db.Where("user_id = ? AND logout_time IS NULL", userID).
		Order("login_time DESC, id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Nothing open: a no-op, not an error
	}
	if err != nil {
		return nil, err // Store failure
	}
	// Stamp the logout time and persist it
	now := time.Now()
	s.LogoutTime = &now
	if err := t.db.Model(&s).Update("logout_time", now).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
