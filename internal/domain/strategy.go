package domain

import (
	"errors" // Sentinel validation errors
	"time"   // Timestamps

	"github.com/google/uuid"        // UUID primary keys
	"github.com/shopspring/decimal" // Exact decimals for quantity/strike
	"gorm.io/gorm"                  // GORM hooks
)

// InstrumentType is the asset class a strategy trades
type InstrumentType string

// Supported instrument types
const (
	InstrumentEquity InstrumentType = "equity" // Stock
	InstrumentOption InstrumentType = "option" // Options contract
	InstrumentFuture InstrumentType = "future" // Futures contract
)

// Valid reports whether t is a supported instrument type
func (t InstrumentType) Valid() bool {
	switch t {
	case InstrumentEquity, InstrumentOption, InstrumentFuture:
		return true // Known instrument
	}
	return false // Anything else is rejected
}

// LegAction is the side of a leg order
type LegAction string

// Leg sides
const (
	ActionBuy  LegAction = "buy"  // Long side
	ActionSell LegAction = "sell" // Short side
)

// OptionType is the contract type of an option leg
type OptionType string

// Option contract types
const (
	OptionCall OptionType = "call" // Call option
	OptionPut  OptionType = "put"  // Put option
)

// StrikeMode is how a leg's strike is targeted
type StrikeMode string

// Strike targeting modes
const (
	StrikeFixed StrikeMode = "fixed" // Fixed strike price
	StrikeDelta StrikeMode = "delta" // Delta-targeted strike
)

// Maximum number of legs a strategy may carry
const MaxLegs = 4

// Validation errors for strategy submissions
var (
	ErrNoLegs              = errors.New("strategy requires at least one leg")
	ErrTooManyLegs         = errors.New("maximum of 4 legs allowed")
	ErrInvalidInstrument   = errors.New("instrument_type must be equity, option or future")
	ErrMissingTicker       = errors.New("ticker is required")
	ErrLegIndexRange       = errors.New("leg_index must be between 1 and 4")
	ErrInvalidAction       = errors.New("action must be buy or sell")
	ErrInvalidOptionType   = errors.New("option_type must be call or put")
	ErrInvalidStrikeMode   = errors.New("strike_mode must be fixed or delta")
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
)

// Strategy Model: one multi-leg position definition. Immutable once created;
// there is no update path, only deactivation-by-admin via the broader
// platform.
type Strategy struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`                 // Primary key
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`        // Owning profile
	Ticker         string         `gorm:"not null" json:"ticker"`                         // Underlying symbol
	InstrumentType InstrumentType `gorm:"not null;default:equity" json:"instrument_type"` // Asset class
	Name           *string        `json:"name"`                                           // Optional friendly name
	IsActive       bool           `gorm:"default:true" json:"is_active"`                  // Active flag
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`               // Creation timestamp

	Legs []StrategyLeg `gorm:"foreignKey:StrategyID;constraint:OnDelete:CASCADE" json:"legs"` // 1-4 component legs
}

// BeforeCreate assigns a fresh UUID when none was provided
func (s *Strategy) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New() // Generate the primary key
	}
	return nil
}

// StrategyLeg Model: one component order within a strategy. Created only
// together with its strategy and removed only by cascading delete.
type StrategyLeg struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`              // Primary key
	StrategyID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"strategy_id"` // Owning strategy
	LegIndex       int              `gorm:"not null" json:"leg_index"`                   // 1-4; duplicates are accepted
	Action         LegAction        `gorm:"not null" json:"action"`                      // buy or sell
	OptionType     *OptionType      `json:"option_type"`                                 // call/put; optional even for options
	Quantity       decimal.Decimal  `gorm:"type:numeric;default:1" json:"quantity"`      // Contracts/shares, positive
	StrikeValue    *decimal.Decimal `gorm:"type:numeric" json:"strike_value"`            // Price or delta, per StrikeMode
	StrikeMode     StrikeMode       `gorm:"default:fixed" json:"strike_mode"`            // fixed or delta
	ExpirationDays *int             `json:"expiration_days"`                             // Days to expiry (DTE)
}

// BeforeCreate assigns a fresh UUID when none was provided
func (l *StrategyLeg) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New() // Generate the primary key
	}
	return nil
}

// LegInput is one leg of a strategy submission
type LegInput struct {
	LegIndex       int              `json:"leg_index"`       // Leg number, 1-4
	Action         LegAction        `json:"action"`          // buy or sell
	OptionType     *OptionType      `json:"option_type"`     // Optional call/put
	Quantity       decimal.Decimal  `json:"quantity"`        // Defaults to 1 when omitted
	StrikeValue    *decimal.Decimal `json:"strike_value"`    // Optional strike target
	StrikeMode     StrikeMode       `json:"strike_mode"`     // Defaults to fixed when omitted
	ExpirationDays *int             `json:"expiration_days"` // Optional DTE
}

// StrategyInput is a full strategy submission
type StrategyInput struct {
	Name           *string        `json:"name"`                               // Optional friendly name
	Ticker         string         `json:"ticker" binding:"required"`          // Underlying symbol
	InstrumentType InstrumentType `json:"instrument_type" binding:"required"` // Asset class
	Legs           []LegInput     `json:"legs"`                               // 1-4 legs
}

// Normalize fills the documented defaults on omitted leg fields
func (in *StrategyInput) Normalize() {
	for i := range in.Legs {
		// An omitted quantity means one unit
		if in.Legs[i].Quantity.IsZero() {
			in.Legs[i].Quantity = decimal.NewFromInt(1)
		}
		// An omitted strike mode means a fixed strike
		if in.Legs[i].StrikeMode == "" {
			in.Legs[i].StrikeMode = StrikeFixed
		}
	}
}

// Validate checks the structural invariants of a submission. Pure: no side
// effects, no persistence, the same input always yields the same verdict.
// Duplicate leg_index values are deliberately not rejected.
func (in *StrategyInput) Validate() error {
	// Instrument must be a supported asset class
	if !in.InstrumentType.Valid() {
		return ErrInvalidInstrument
	}
	// A ticker is mandatory
	if in.Ticker == "" {
		return ErrMissingTicker
	}
	// Leg count must be 1-4
	if len(in.Legs) == 0 {
		return ErrNoLegs
	}
	if len(in.Legs) > MaxLegs {
		return ErrTooManyLegs
	}
	// Per-leg field checks
	for i := range in.Legs {
		leg := &in.Legs[i]
		// Leg index within 1-4 (uniqueness not required)
		if leg.LegIndex < 1 || leg.LegIndex > MaxLegs {
			return ErrLegIndexRange
		}
		// Side must be buy or sell
		if leg.Action != ActionBuy && leg.Action != ActionSell {
			return ErrInvalidAction
		}
		// Option type, when present, must be call or put
		if leg.OptionType != nil && *leg.OptionType != OptionCall && *leg.OptionType != OptionPut {
			return ErrInvalidOptionType
		}
		// Strike targeting must be fixed or delta
		if leg.StrikeMode != StrikeFixed && leg.StrikeMode != StrikeDelta {
			return ErrInvalidStrikeMode
		}
		// Quantity must be strictly positive
		if !leg.Quantity.IsPositive() {
			return ErrNonPositiveQuantity
		}
	}
	return nil // Submission is structurally valid
}
