package models

// Loan represents the financing attached to a property. At most one loan is
// live per property; writes go through an upsert keyed on PropertyID.
//
// The EMI is a per-property obligation and is never ownership-scaled.
// OutstandingBalance is ownership-scaled when used for net-equity figures.
type Loan struct {
	Base
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
	LenderName string `gorm:"not null" json:"lender_name"`

	LoanAmount   float64 `gorm:"not null" json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	EMI          float64 `json:"emi"`
	TenureMonths int     `json:"tenure_months"`

	// Defaults to LoanAmount when not supplied. Never exceeds LoanAmount.
	OutstandingBalance float64 `gorm:"not null" json:"outstanding_balance"`
}
