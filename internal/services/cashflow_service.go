package services

import (
	"gorm.io/gorm"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/logger"
	"propfolio/internal/models"
)

// cashFlowService handles rental cash-flow records with the same upsert
// discipline as loans: at most one live row per property.
type cashFlowService struct {
	db              *gorm.DB
	propertyService PropertyServicer
}

// NewCashFlowService creates a new CashFlowServicer.
func NewCashFlowService(db *gorm.DB, propertyService PropertyServicer) CashFlowServicer {
	return &cashFlowService{db: db, propertyService: propertyService}
}

// validateCashFlowInput rejects invalid figures before any write. A rented
// property must carry a positive monthly rent.
func validateCashFlowInput(input CashFlowInput) error {
	switch input.RentalStatus {
	case models.RentalStatusSelfOccupied, models.RentalStatusRented, models.RentalStatusVacant:
	default:
		return apperrors.WithMessage(apperrors.ErrValidation, "invalid rental_status")
	}
	if input.RentalStatus == models.RentalStatusRented &&
		(input.MonthlyRent == nil || *input.MonthlyRent <= 0) {
		return apperrors.WithMessage(apperrors.ErrValidation, "monthly_rent must be positive for a rented property")
	}
	for name, v := range map[string]*float64{
		"monthly_rent":           input.MonthlyRent,
		"annual_escalation_pct":  input.AnnualEscalationPct,
		"monthly_maintenance":    input.MonthlyMaintenance,
		"annual_property_tax":    input.AnnualPropertyTax,
		"other_monthly_expenses": input.OtherMonthlyExpenses,
	} {
		if v != nil && *v < 0 {
			return apperrors.WithMessage(apperrors.ErrValidation, name+" cannot be negative")
		}
	}
	return nil
}

// UpsertCashFlow creates or replaces the cash-flow record for a property.
func (s *cashFlowService) UpsertCashFlow(userID, propertyID uint, input CashFlowInput) (*models.CashFlow, error) {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}
	if err := validateCashFlowInput(input); err != nil {
		return nil, err
	}

	existing, err := s.findExisting(property.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		cashFlow := &models.CashFlow{
			PropertyID:           property.ID,
			RentalStatus:         input.RentalStatus,
			MonthlyRent:          input.MonthlyRent,
			RentStartDate:        input.RentStartDate,
			AnnualEscalationPct:  input.AnnualEscalationPct,
			MonthlyMaintenance:   input.MonthlyMaintenance,
			AnnualPropertyTax:    input.AnnualPropertyTax,
			OtherMonthlyExpenses: input.OtherMonthlyExpenses,
		}
		if err := s.db.Create(cashFlow).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return cashFlow, nil
	}

	updates := map[string]interface{}{
		"rental_status":          input.RentalStatus,
		"monthly_rent":           input.MonthlyRent,
		"rent_start_date":        input.RentStartDate,
		"annual_escalation_pct":  input.AnnualEscalationPct,
		"monthly_maintenance":    input.MonthlyMaintenance,
		"annual_property_tax":    input.AnnualPropertyTax,
		"other_monthly_expenses": input.OtherMonthlyExpenses,
	}
	if err := s.db.Model(existing).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return existing, nil
}

// GetCashFlow returns the cash-flow record for a property the user owns.
func (s *cashFlowService) GetCashFlow(userID, propertyID uint) (*models.CashFlow, error) {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}
	cashFlow, err := s.findExisting(property.ID)
	if err != nil {
		return nil, err
	}
	if cashFlow == nil {
		return nil, apperrors.ErrCashFlowNotFound
	}
	return cashFlow, nil
}

// DeleteCashFlow removes the cash-flow record for a property the user owns.
func (s *cashFlowService) DeleteCashFlow(userID, propertyID uint) error {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return err
	}
	cashFlow, err := s.findExisting(property.ID)
	if err != nil {
		return err
	}
	if cashFlow == nil {
		return apperrors.ErrCashFlowNotFound
	}
	if err := s.db.Delete(cashFlow).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// findExisting returns the live cash-flow row for a property, or nil, with
// the same duplicate policy as loans: oldest wins, anomaly logged.
func (s *cashFlowService) findExisting(propertyID uint) (*models.CashFlow, error) {
	var flows []models.CashFlow
	if err := s.db.Where("property_id = ?", propertyID).Order("created_at ASC").Find(&flows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	switch len(flows) {
	case 0:
		return nil, nil
	case 1:
	default:
		logger.Get().Warnw("multiple cash-flow rows for property, using oldest",
			"property_id", propertyID, "count", len(flows))
	}
	return &flows[0], nil
}
