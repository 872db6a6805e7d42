package analytics

import "sort"

// Position is one property's contribution to the portfolio fold: its computed
// metrics plus the already-adjusted income and obligation figures the
// aggregates need.
type Position struct {
	PropertyID uint
	Nickname   string
	Rented     bool
	Metrics    Metrics

	// Ownership-adjusted annual rental income; zero when none.
	AnnualRent float64
	// Full monthly installment; obligations are per-property, not per-share.
	MonthlyEMI float64
	// Ownership-adjusted monthly running costs.
	MonthlyExpenses float64
}

// Partition summarizes one side of the income / non-income split.
type Partition struct {
	Count          int     `json:"count"`
	Value          float64 `json:"value"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// ConcentrationEntry is one property's share of total real-estate value.
type ConcentrationEntry struct {
	PropertyID     uint    `json:"property_id"`
	Nickname       string  `json:"nickname"`
	Value          float64 `json:"value"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// Portfolio is the aggregate view across all of a user's properties.
type Portfolio struct {
	PropertyCount int     `json:"property_count"`
	TotalValue    float64 `json:"total_value"`

	// Share of total net worth; nil when net worth was not supplied or zero.
	AllocationPct *float64 `json:"allocation_pct,omitempty"`

	IncomeGenerating Partition `json:"income_generating"`
	NonIncome        Partition `json:"non_income"`

	// Sorted descending by value share; surfaces single-property risk.
	Concentration []ConcentrationEntry `json:"concentration"`

	TotalAnnualRent    float64 `json:"total_annual_rent"`
	TotalMonthlyEMI    float64 `json:"total_monthly_emi"`
	NetMonthlyCashFlow float64 `json:"net_monthly_cash_flow"`
}

// Aggregate folds per-asset positions into portfolio metrics. Properties with
// no resolvable current value are skipped from value-based aggregates but
// still contribute their income and EMI figures.
func Aggregate(positions []Position, totalNetWorth *float64) Portfolio {
	p := Portfolio{
		PropertyCount: len(positions),
		Concentration: []ConcentrationEntry{},
	}

	for _, pos := range positions {
		p.TotalAnnualRent += pos.AnnualRent
		p.TotalMonthlyEMI += pos.MonthlyEMI
		p.NetMonthlyCashFlow += pos.AnnualRent/12 - pos.MonthlyEMI - pos.MonthlyExpenses

		if pos.Metrics.CurrentValue == nil {
			continue
		}
		v := *pos.Metrics.CurrentValue
		p.TotalValue += v

		if pos.Rented {
			p.IncomeGenerating.Count++
			p.IncomeGenerating.Value += v
		} else {
			p.NonIncome.Count++
			p.NonIncome.Value += v
		}

		p.Concentration = append(p.Concentration, ConcentrationEntry{
			PropertyID: pos.PropertyID,
			Nickname:   pos.Nickname,
			Value:      v,
		})
	}

	if p.TotalValue > 0 {
		p.IncomeGenerating.PercentOfTotal = round2(p.IncomeGenerating.Value / p.TotalValue * 100)
		p.NonIncome.PercentOfTotal = round2(p.NonIncome.Value / p.TotalValue * 100)
		for i := range p.Concentration {
			p.Concentration[i].PercentOfTotal = round2(p.Concentration[i].Value / p.TotalValue * 100)
		}
	}

	sort.SliceStable(p.Concentration, func(i, j int) bool {
		return p.Concentration[i].Value > p.Concentration[j].Value
	})

	if totalNetWorth != nil && *totalNetWorth > 0 {
		alloc := round2(p.TotalValue / *totalNetWorth * 100)
		p.AllocationPct = &alloc
	}

	return p
}
