// Package valuation produces conservative machine estimates of a property's
// market value. Each estimate resolves a price-per-area figure through a
// priority-ordered chain of sources (locality data, purchase-price
// derivation, static city table), applies type and construction-status
// adjustments, and always under-states the result by a fixed margin.
package valuation

import "time"

// Confidence is a coarse label on how trustworthy an estimate is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Source identifies which tier of the fallback chain produced the estimate.
type Source string

const (
	SourceLocalityData   Source = "locality_data"
	SourcePurchaseDerive Source = "purchase_price_derived"
	SourceCityFallback   Source = "city_fallback_estimate"
)

// Params holds the heuristic constants of the estimator. They are plain
// configuration, not derived figures; defaults come from DefaultParams and
// can be overridden through the application config.
type Params struct {
	// Final range multipliers applied to the adjusted base value.
	MinMargin float64
	MaxMargin float64

	// Compounded yearly appreciation applied when deriving a rate from the
	// purchase price. Land uses the residential rate.
	ResidentialAppreciation float64
	CommercialAppreciation  float64

	// Value multiplier for properties still under construction.
	UnderConstructionFactor float64
	// Additional multiplier for commercial units.
	CommercialFactor float64

	// A min-max spread above this share of the midpoint downgrades
	// confidence one tier.
	SpreadDowngradePct float64
}

// DefaultParams returns the stock estimator constants.
func DefaultParams() Params {
	return Params{
		MinMargin:               0.90,
		MaxMargin:               0.95,
		ResidentialAppreciation: 0.04,
		CommercialAppreciation:  0.03,
		UnderConstructionFactor: 0.85,
		CommercialFactor:        0.98,
		SpreadDowngradePct:      25,
	}
}

// Input carries the property attributes the estimator reads. The estimator
// holds no state between calls; everything it needs arrives here.
type Input struct {
	City       string
	PostalCode string
	Kind       string // residential | commercial | land

	UnderConstruction bool

	BuiltUpArea *float64
	CarpetArea  *float64

	PurchasePrice *float64
	PurchaseDate  *time.Time
}

// Estimate is a conservative value range with an audit trail. Min is always
// at most Max, and both sit below the unadjusted base value.
type Estimate struct {
	Min        float64    `json:"min"`
	Max        float64    `json:"max"`
	Confidence Confidence `json:"confidence"`
	Source     Source     `json:"source"`

	// Ordered record of which branches the chain took and why.
	Trail []string `json:"trail"`
}

func downgrade(c Confidence) Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
