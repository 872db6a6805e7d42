package services

import (
	"context"
	"time"

	"propfolio/internal/analytics"
	"propfolio/internal/models"
	"propfolio/internal/pagination"
	"propfolio/internal/valuation"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// PropertyInput carries the owner-editable fields of a property. Pointer
// fields left nil on update mean "no change"; the override value is only
// ever written through this path.
type PropertyInput struct {
	Nickname string
	Kind     models.PropertyKind
	Status   models.ConstructionStatus

	PurchasePrice     *float64
	PurchaseDate      *time.Time
	RegistrationValue *float64
	OwnershipPercent  *float64

	City       string
	State      string
	PostalCode string
	Address    string

	ProjectName string
	BuilderName string

	CarpetArea  *float64
	BuiltUpArea *float64

	CurrentValueOverride *float64
}

// PropertyRecords is the joined triple for one property: the asset itself
// plus its optional loan and cash-flow records.
type PropertyRecords struct {
	Property *models.Property
	Loan     *models.Loan
	CashFlow *models.CashFlow
}

// AdjustedValues holds the ownership-adjusted monetary figures of one
// property triple.
type AdjustedValues struct {
	PurchasePrice      *float64 `json:"purchase_price,omitempty"`
	CurrentValue       *float64 `json:"current_value,omitempty"`
	MonthlyRent        *float64 `json:"monthly_rent,omitempty"`
	OutstandingBalance *float64 `json:"outstanding_balance,omitempty"`
}

// PropertyServicer defines the contract for property records: CRUD plus the
// ownership-adjusted load operations the analytics and valuation layers use.
type PropertyServicer interface {
	CreateProperty(userID uint, input PropertyInput) (*models.Property, error)
	GetPropertyByID(userID, propertyID uint) (*models.Property, error)
	GetUserProperties(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Property], error)
	UpdateProperty(userID, propertyID uint, input PropertyInput) (*models.Property, error)
	DeleteProperty(userID, propertyID uint) error

	GetPropertyRecords(userID, propertyID uint) (*PropertyRecords, error)
	GetAllPropertyRecords(userID uint) ([]PropertyRecords, error)
	ApplyOwnershipAdjustment(records *PropertyRecords) AdjustedValues
}

// LoanInput carries the fields of a loan upsert.
type LoanInput struct {
	LenderName         string
	LoanAmount         float64
	InterestRate       float64
	EMI                float64
	TenureMonths       int
	OutstandingBalance *float64
}

// LoanServicer defines the contract for loan records.
type LoanServicer interface {
	UpsertLoan(userID, propertyID uint, input LoanInput) (*models.Loan, error)
	GetLoan(userID, propertyID uint) (*models.Loan, error)
	DeleteLoan(userID, propertyID uint) error
}

// CashFlowInput carries the fields of a cash-flow upsert.
type CashFlowInput struct {
	RentalStatus        models.RentalStatus
	MonthlyRent         *float64
	RentStartDate       *time.Time
	AnnualEscalationPct *float64

	MonthlyMaintenance   *float64
	AnnualPropertyTax    *float64
	OtherMonthlyExpenses *float64
}

// CashFlowServicer defines the contract for cash-flow records.
type CashFlowServicer interface {
	UpsertCashFlow(userID, propertyID uint, input CashFlowInput) (*models.CashFlow, error)
	GetCashFlow(userID, propertyID uint) (*models.CashFlow, error)
	DeleteCashFlow(userID, propertyID uint) error
}

// AssetAnalytics is the per-property metric set returned to callers.
type AssetAnalytics struct {
	PropertyID uint              `json:"property_id"`
	Nickname   string            `json:"nickname"`
	Metrics    analytics.Metrics `json:"metrics"`
}

// AnalyticsServicer computes the request-scoped derived views. Nothing it
// returns is ever persisted.
type AnalyticsServicer interface {
	GetAssetAnalytics(userID, propertyID uint) (*AssetAnalytics, error)
	GetPortfolioAnalytics(userID uint, totalNetWorth *float64) (*analytics.Portfolio, error)
}

// EstimateOutcome reports one property's valuation run, including the range
// it replaced.
type EstimateOutcome struct {
	PropertyID  uint                `json:"property_id"`
	PreviousMin *float64            `json:"previous_min,omitempty"`
	PreviousMax *float64            `json:"previous_max,omitempty"`
	Estimate    *valuation.Estimate `json:"estimate"`
}

// BatchOptions tunes one valuation batch run. Zero values fall back to the
// configured defaults; a nil UserID selects across all owners.
type BatchOptions struct {
	UserID      *uint
	StaleDays   int
	Concurrency int
	BatchDelay  time.Duration
}

// BatchItem is the per-property outcome inside a batch summary.
type BatchItem struct {
	PropertyID uint             `json:"property_id"`
	Succeeded  bool             `json:"succeeded"`
	Outcome    *EstimateOutcome `json:"outcome,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// BatchSummary accounts for every selected property exactly once.
type BatchSummary struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Details   []BatchItem `json:"details"`
}

// ValuationServicer runs the estimator and persists its results. The
// persistence path can only touch the system-estimate fields; the user's
// override value is structurally out of reach.
type ValuationServicer interface {
	EstimateProperty(ctx context.Context, userID, propertyID uint) (*EstimateOutcome, error)
	RunBatch(ctx context.Context, opts BatchOptions) (*BatchSummary, error)
}
