package models

import "time"

// PropertyKind represents the type of real-estate unit.
type PropertyKind string

const (
	PropertyKindResidential PropertyKind = "residential"
	PropertyKindCommercial  PropertyKind = "commercial"
	PropertyKindLand        PropertyKind = "land"
)

// ConstructionStatus represents the build state of a property.
type ConstructionStatus string

const (
	ConstructionStatusReady             ConstructionStatus = "ready"
	ConstructionStatusUnderConstruction ConstructionStatus = "under_construction"
)

// Property represents one real-estate unit owned (possibly fractionally) by a user.
//
// CurrentValueOverride is written only by the owner-editing path. The
// system-estimated fields (EstimatedValueMin/Max, LastEstimatedAt) are written
// only by the valuation service; the two groups are independently writable
// and must never clobber each other.
type Property struct {
	Base
	UserID   uint         `gorm:"not null;index" json:"user_id"`
	Nickname string       `gorm:"not null" json:"nickname"`
	Kind     PropertyKind `gorm:"not null" json:"kind"`

	Status ConstructionStatus `gorm:"not null;default:'ready'" json:"status"`

	PurchasePrice     *float64   `json:"purchase_price,omitempty"`
	PurchaseDate      *time.Time `json:"purchase_date,omitempty"`
	RegistrationValue *float64   `json:"registration_value,omitempty"`

	// Percentage of the unit the user owns, 0-100. Nil means full ownership.
	OwnershipPercent *float64 `json:"ownership_percent,omitempty"`

	City       string `gorm:"not null;index" json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Address    string `json:"address,omitempty"`

	ProjectName string `json:"project_name,omitempty"`
	BuilderName string `json:"builder_name,omitempty"`

	CarpetArea  *float64 `json:"carpet_area,omitempty"`
	BuiltUpArea *float64 `json:"built_up_area,omitempty"`

	// User-entered current value; takes priority over system estimates.
	CurrentValueOverride *float64 `json:"current_value_override,omitempty"`

	// System-estimated conservative value range, maintained by the valuation service.
	EstimatedValueMin *float64   `json:"estimated_value_min,omitempty"`
	EstimatedValueMax *float64   `json:"estimated_value_max,omitempty"`
	LastEstimatedAt   *time.Time `json:"last_estimated_at,omitempty"`

	// Relationships. At most one loan and one cash-flow record per property.
	Loan     *Loan     `gorm:"foreignKey:PropertyID" json:"loan,omitempty"`
	CashFlow *CashFlow `gorm:"foreignKey:PropertyID" json:"cash_flow,omitempty"`
}
