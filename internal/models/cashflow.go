package models

import "time"

// RentalStatus represents the occupancy state of a property.
type RentalStatus string

const (
	RentalStatusSelfOccupied RentalStatus = "self_occupied"
	RentalStatusRented       RentalStatus = "rented"
	RentalStatusVacant       RentalStatus = "vacant"
)

// CashFlow represents the rental income and running costs of a property.
// At most one record is live per property; writes go through an upsert
// keyed on PropertyID. A rented property must carry a positive monthly rent.
type CashFlow struct {
	Base
	PropertyID   uint         `gorm:"not null;index" json:"property_id"`
	RentalStatus RentalStatus `gorm:"not null;default:'self_occupied'" json:"rental_status"`

	MonthlyRent         *float64   `json:"monthly_rent,omitempty"`
	RentStartDate       *time.Time `json:"rent_start_date,omitempty"`
	AnnualEscalationPct *float64   `json:"annual_escalation_pct,omitempty"`

	MonthlyMaintenance   *float64 `json:"monthly_maintenance,omitempty"`
	AnnualPropertyTax    *float64 `json:"annual_property_tax,omitempty"`
	OtherMonthlyExpenses *float64 `json:"other_monthly_expenses,omitempty"`
}
