package services

import (
	"time"

	"propfolio/internal/analytics"
	"propfolio/internal/models"
)

// analyticsService computes the derived per-asset and portfolio views on
// demand. It holds no state beyond its collaborators and persists nothing.
type analyticsService struct {
	propertyService PropertyServicer
	now             func() time.Time
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(propertyService PropertyServicer) AnalyticsServicer {
	return &analyticsService{propertyService: propertyService, now: time.Now}
}

// GetAssetAnalytics computes the seven per-asset metrics for one property.
func (s *analyticsService) GetAssetAnalytics(userID, propertyID uint) (*AssetAnalytics, error) {
	records, err := s.propertyService.GetPropertyRecords(userID, propertyID)
	if err != nil {
		return nil, err
	}

	metrics := analytics.Compute(assetInputsFromRecords(records), s.now())
	return &AssetAnalytics{
		PropertyID: records.Property.ID,
		Nickname:   records.Property.Nickname,
		Metrics:    metrics,
	}, nil
}

// GetPortfolioAnalytics folds every property of the user into the
// portfolio-level aggregates. The optional total net worth enables the
// allocation percentage.
func (s *analyticsService) GetPortfolioAnalytics(userID uint, totalNetWorth *float64) (*analytics.Portfolio, error) {
	records, err := s.propertyService.GetAllPropertyRecords(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	positions := make([]analytics.Position, 0, len(records))
	for i := range records {
		rec := &records[i]
		in := assetInputsFromRecords(rec)
		metrics := analytics.Compute(in, now)

		pos := analytics.Position{
			PropertyID: rec.Property.ID,
			Nickname:   rec.Property.Nickname,
			Rented:     in.Rented,
			Metrics:    metrics,
		}

		frac := analytics.OwnershipFraction(rec.Property.OwnershipPercent)
		if cf := rec.CashFlow; cf != nil {
			if cf.RentalStatus == models.RentalStatusRented && cf.MonthlyRent != nil {
				pos.AnnualRent = *cf.MonthlyRent * 12 * frac
			}
			pos.MonthlyExpenses = analytics.AnnualExpenses(in) / 12 * frac
		}
		if rec.Loan != nil {
			pos.MonthlyEMI = rec.Loan.EMI
		}

		positions = append(positions, pos)
	}

	portfolio := analytics.Aggregate(positions, totalNetWorth)
	return &portfolio, nil
}
