// Package analytics computes per-asset financial metrics and portfolio-level
// aggregates from already-loaded property data. Everything in this package is
// a pure function: no database access, no clock other than the caller's "now",
// and no mutation of its inputs.
//
// Optional figures are modeled as nil pointers so callers can tell "no value"
// apart from "zero value". A metric whose required inputs are missing is nil,
// never zero.
package analytics

import (
	"math"
	"time"
)

// ValueSource identifies which priority tier produced a property's current value.
type ValueSource string

const (
	SourceUserOverride   ValueSource = "user_override"
	SourceSystemEstimate ValueSource = "system_estimate"
	SourcePurchasePrice  ValueSource = "purchase_price"
	SourceNone           ValueSource = "none"
)

// minHoldingForAnnualized is the shortest holding period that can be
// annualized without producing absurd figures.
const minHoldingForAnnualized = 30 * 24 * time.Hour

// annualizedReturnClampPct bounds the reported annualized return.
const annualizedReturnClampPct = 999.0

// AssetInputs holds the ownership-raw figures for one property, as stored.
// Ownership scaling is applied inside the computations that need it.
type AssetInputs struct {
	OwnershipPercent *float64
	PurchasePrice    *float64
	PurchaseDate     *time.Time

	CurrentValueOverride *float64
	EstimatedValueMin    *float64
	EstimatedValueMax    *float64

	Rented      bool
	MonthlyRent *float64

	MonthlyMaintenance   *float64
	AnnualPropertyTax    *float64
	OtherMonthlyExpenses *float64

	// Loan figures; nil when the property carries no loan.
	MonthlyEMI         *float64
	OutstandingBalance *float64
}

// Metrics is the full per-asset result set. Nil fields are unavailable.
type Metrics struct {
	CurrentValue       *float64    `json:"current_value,omitempty"`
	CurrentValueSource ValueSource `json:"current_value_source"`

	InvestedValue         *float64 `json:"invested_value,omitempty"`
	UnrealizedGainLoss    *float64 `json:"unrealized_gain_loss,omitempty"`
	UnrealizedGainLossPct *float64 `json:"unrealized_gain_loss_pct,omitempty"`

	GrossRentalYieldPct *float64 `json:"gross_rental_yield_pct,omitempty"`
	NetRentalYieldPct   *float64 `json:"net_rental_yield_pct,omitempty"`

	EMIRentGap *float64 `json:"emi_rent_gap,omitempty"`

	HoldingPeriodYears  *float64 `json:"holding_period_years,omitempty"`
	AnnualizedReturnPct *float64 `json:"annualized_return_pct,omitempty"`
}

// OwnershipFraction returns the user's fractional share of the property.
// A nil percentage means full ownership.
func OwnershipFraction(pct *float64) float64 {
	if pct == nil {
		return 1.0
	}
	return *pct / 100.0
}

// AdjustOwnership scales a raw monetary figure by the owner's share.
func AdjustOwnership(v float64, pct *float64) float64 {
	return v * OwnershipFraction(pct)
}

// CurrentValue resolves the ownership-adjusted current value of a property.
// Priority: user override, midpoint of the system estimate when both bounds
// are present, then raw purchase price. Returns nil when no tier has data.
func CurrentValue(in AssetInputs) (*float64, ValueSource) {
	frac := OwnershipFraction(in.OwnershipPercent)

	switch {
	case in.CurrentValueOverride != nil:
		v := *in.CurrentValueOverride * frac
		return &v, SourceUserOverride
	case in.EstimatedValueMin != nil && in.EstimatedValueMax != nil:
		v := (*in.EstimatedValueMin + *in.EstimatedValueMax) / 2 * frac
		return &v, SourceSystemEstimate
	case in.PurchasePrice != nil:
		v := *in.PurchasePrice * frac
		return &v, SourcePurchasePrice
	}
	return nil, SourceNone
}

// InvestedValue returns the ownership-adjusted purchase price, or nil.
func InvestedValue(in AssetInputs) *float64 {
	if in.PurchasePrice == nil {
		return nil
	}
	v := AdjustOwnership(*in.PurchasePrice, in.OwnershipPercent)
	return &v
}

// UnrealizedGainLoss returns the absolute and percentage gain over the
// invested value. Both are nil when either the current value or the invested
// value is unavailable; the percentage is additionally nil for a zero
// invested value.
func UnrealizedGainLoss(currentValue, investedValue *float64) (*float64, *float64) {
	if currentValue == nil || investedValue == nil {
		return nil, nil
	}
	abs := *currentValue - *investedValue
	if *investedValue == 0 {
		return &abs, nil
	}
	pct := round2(abs / *investedValue * 100)
	return &abs, &pct
}

// GrossRentalYield returns the annual rent as a percentage of current value.
// Nil when the property is not rented, rent is missing or non-positive, or
// the current value is unavailable or zero.
func GrossRentalYield(in AssetInputs, currentValue *float64) *float64 {
	if !in.Rented || in.MonthlyRent == nil || *in.MonthlyRent <= 0 {
		return nil
	}
	if currentValue == nil || *currentValue == 0 {
		return nil
	}
	frac := OwnershipFraction(in.OwnershipPercent)
	y := round2(*in.MonthlyRent * 12 * frac / *currentValue * 100)
	return &y
}

// NetRentalYield subtracts ownership-adjusted annual running costs from the
// rent before dividing by current value. Missing expense fields count as
// zero, not as unavailable.
func NetRentalYield(in AssetInputs, currentValue *float64) *float64 {
	if !in.Rented || in.MonthlyRent == nil || *in.MonthlyRent <= 0 {
		return nil
	}
	if currentValue == nil || *currentValue == 0 {
		return nil
	}
	frac := OwnershipFraction(in.OwnershipPercent)
	net := (*in.MonthlyRent*12 - AnnualExpenses(in)) * frac
	y := round2(net / *currentValue * 100)
	return &y
}

// AnnualExpenses sums the raw (unscaled) yearly running costs of a property.
// Missing fields are treated as zero.
func AnnualExpenses(in AssetInputs) float64 {
	var total float64
	if in.MonthlyMaintenance != nil {
		total += *in.MonthlyMaintenance * 12
	}
	if in.AnnualPropertyTax != nil {
		total += *in.AnnualPropertyTax
	}
	if in.OtherMonthlyExpenses != nil {
		total += *in.OtherMonthlyExpenses * 12
	}
	return total
}

// EMIRentGap returns the owner's share of monthly rent minus the full EMI.
// The EMI is a per-property obligation, so it is not ownership-scaled.
// Nil when the property has no loan. A missing rent counts as zero income:
// a vacant property still owes its full installment.
func EMIRentGap(in AssetInputs) *float64 {
	if in.MonthlyEMI == nil {
		return nil
	}
	var rent float64
	if in.MonthlyRent != nil {
		rent = *in.MonthlyRent * OwnershipFraction(in.OwnershipPercent)
	}
	gap := rent - *in.MonthlyEMI
	return &gap
}

// HoldingPeriodYears returns the years elapsed since purchase, rounded to two
// decimals and clamped at zero for future-dated purchases. Nil when the
// purchase date is missing.
func HoldingPeriodYears(purchaseDate *time.Time, now time.Time) *float64 {
	if purchaseDate == nil {
		return nil
	}
	days := now.Sub(*purchaseDate).Hours() / 24
	years := round2(days / 365.25)
	if years < 0 {
		years = 0
	}
	return &years
}

// AnnualizedReturn computes the loan-adjusted annualized return:
// ((netCurrentValue / investedValue)^(1/years) - 1) × 100, where
// netCurrentValue is the ownership-adjusted current value minus the
// ownership-adjusted outstanding loan balance.
//
// Nil when purchase price or date is missing, when the current value is
// unavailable, or when the holding period is under 30 days (too short to
// annualize meaningfully). Clamped to ±999 and rounded to two decimals.
func AnnualizedReturn(in AssetInputs, currentValue *float64, now time.Time) *float64 {
	invested := InvestedValue(in)
	if invested == nil || *invested <= 0 || in.PurchaseDate == nil || currentValue == nil {
		return nil
	}
	held := now.Sub(*in.PurchaseDate)
	if held < minHoldingForAnnualized {
		return nil
	}

	net := *currentValue
	if in.OutstandingBalance != nil {
		net -= AdjustOwnership(*in.OutstandingBalance, in.OwnershipPercent)
	}
	if net <= 0 {
		// Fully leveraged or negative equity; an annualized rate is meaningless.
		return nil
	}

	years := held.Hours() / 24 / 365.25
	r := (math.Pow(net / *invested, 1/years) - 1) * 100
	if r > annualizedReturnClampPct {
		r = annualizedReturnClampPct
	} else if r < -annualizedReturnClampPct {
		r = -annualizedReturnClampPct
	}
	r = round2(r)
	return &r
}

// Compute derives the full metric set for one property as of "now".
func Compute(in AssetInputs, now time.Time) Metrics {
	cv, source := CurrentValue(in)
	invested := InvestedValue(in)
	gain, gainPct := UnrealizedGainLoss(cv, invested)

	return Metrics{
		CurrentValue:          cv,
		CurrentValueSource:    source,
		InvestedValue:         invested,
		UnrealizedGainLoss:    gain,
		UnrealizedGainLossPct: gainPct,
		GrossRentalYieldPct:   GrossRentalYield(in, cv),
		NetRentalYieldPct:     NetRentalYield(in, cv),
		EMIRentGap:            EMIRentGap(in),
		HoldingPeriodYears:    HoldingPeriodYears(in.PurchaseDate, now),
		AnnualizedReturnPct:   AnnualizedReturn(in, cv, now),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
