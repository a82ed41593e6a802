package api

import (
	"broker_platform/internal/domain"     // Importing domain models
	"broker_platform/internal/middleware" // Authenticated profile lookup
	"broker_platform/internal/policy"     // Strategy visibility scoping
	"net/http"                            // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CreateStrategyHandler creates a multi-leg strategy owned by the caller.
// The strategy and its legs are written in one transaction; strategies are
// immutable once created.
func CreateStrategyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentProfile(c) // The authenticated caller
		var in domain.StrategyInput           // Bind JSON request to struct
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in.Normalize() // Fill leg defaults (quantity 1, fixed strike)
		// Structural validation happens before any persistence
		if err := in.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Build the strategy container; creation is always self-owned
		strat := domain.Strategy{
			UserID:         actor.ID,          // Owner is the caller, never anyone else
			Ticker:         in.Ticker,         // Underlying symbol
			InstrumentType: in.InstrumentType, // Asset class
			Name:           in.Name,           // Optional friendly name
			IsActive:       true,              // New strategies start active
		}
		// Attach the legs so gorm writes container and legs atomically
		for _, leg := range in.Legs {
			strat.Legs = append(strat.Legs, domain.StrategyLeg{
				LegIndex:       leg.LegIndex,       // 1-4
				Action:         leg.Action,         // buy or sell
				OptionType:     leg.OptionType,     // Optional call/put
				Quantity:       leg.Quantity,       // Positive quantity
				StrikeValue:    leg.StrikeValue,    // Optional strike target
				StrikeMode:     leg.StrikeMode,     // fixed or delta
				ExpirationDays: leg.ExpirationDays, // Optional DTE
			})
		}
		// One all-or-nothing insert for the strategy and all its legs
		if err := db.Create(&strat).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create strategy"})
			return
		}
		c.JSON(http.StatusCreated, strat) // Return the record with its legs
	}
}

// ListStrategiesHandler returns strategies visible to the caller: everything
// for super admins, own strategies for everyone else. Legs come back sorted
// by leg_index.
func ListStrategiesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentProfile(c) // The authenticated caller
		var strategies []domain.Strategy      // Slice to hold strategies
		// Apply the visibility rule, then fetch with ordered legs
		q := policy.ScopeStrategies(actor, db)
		err := q.Preload("Legs", func(db *gorm.DB) *gorm.DB {
			return db.Order("leg_index ASC") // Stable leg ordering
		}).Order("created_at DESC").Find(&strategies).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch strategies"})
			return
		}
		c.JSON(http.StatusOK, strategies) // Return the visible set
	}
}
