package services

import (
	"gorm.io/gorm"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/logger"
	"propfolio/internal/models"
)

// loanService handles loan records. One loan per property, enforced by an
// upsert keyed on property identity.
type loanService struct {
	db              *gorm.DB
	propertyService PropertyServicer
}

// NewLoanService creates a new LoanServicer.
func NewLoanService(db *gorm.DB, propertyService PropertyServicer) LoanServicer {
	return &loanService{db: db, propertyService: propertyService}
}

// validateLoanInput rejects invalid figures before any write happens, so a
// failed upsert leaves an existing loan row untouched.
func validateLoanInput(input LoanInput) error {
	if input.LenderName == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "lender_name is required")
	}
	if input.LoanAmount <= 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "loan_amount must be positive")
	}
	if input.EMI < 0 || input.InterestRate < 0 || input.TenureMonths < 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "loan figures cannot be negative")
	}
	if input.OutstandingBalance != nil {
		if *input.OutstandingBalance < 0 {
			return apperrors.WithMessage(apperrors.ErrValidation, "outstanding_balance cannot be negative")
		}
		if *input.OutstandingBalance > input.LoanAmount {
			return apperrors.WithMessage(apperrors.ErrValidation, "outstanding_balance cannot exceed loan_amount")
		}
	}
	return nil
}

// UpsertLoan creates or replaces the loan for a property. An unspecified
// outstanding balance defaults to the full loan amount.
func (s *loanService) UpsertLoan(userID, propertyID uint, input LoanInput) (*models.Loan, error) {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}
	if err := validateLoanInput(input); err != nil {
		return nil, err
	}

	outstanding := input.LoanAmount
	if input.OutstandingBalance != nil {
		outstanding = *input.OutstandingBalance
	}

	existing, err := s.findExisting(property.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		loan := &models.Loan{
			PropertyID:         property.ID,
			LenderName:         input.LenderName,
			LoanAmount:         input.LoanAmount,
			InterestRate:       input.InterestRate,
			EMI:                input.EMI,
			TenureMonths:       input.TenureMonths,
			OutstandingBalance: outstanding,
		}
		if err := s.db.Create(loan).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return loan, nil
	}

	updates := map[string]interface{}{
		"lender_name":         input.LenderName,
		"loan_amount":         input.LoanAmount,
		"interest_rate":       input.InterestRate,
		"emi":                 input.EMI,
		"tenure_months":       input.TenureMonths,
		"outstanding_balance": outstanding,
	}
	if err := s.db.Model(existing).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return existing, nil
}

// GetLoan returns the loan for a property the user owns.
func (s *loanService) GetLoan(userID, propertyID uint) (*models.Loan, error) {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}
	loan, err := s.findExisting(property.ID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.ErrLoanNotFound
	}
	return loan, nil
}

// DeleteLoan removes the loan record for a property the user owns.
func (s *loanService) DeleteLoan(userID, propertyID uint) error {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return err
	}
	loan, err := s.findExisting(property.ID)
	if err != nil {
		return err
	}
	if loan == nil {
		return apperrors.ErrLoanNotFound
	}
	if err := s.db.Delete(loan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// findExisting returns the live loan row for a property, or nil. Duplicate
// rows are an invariant violation; the oldest wins and the rest are logged.
func (s *loanService) findExisting(propertyID uint) (*models.Loan, error) {
	var loans []models.Loan
	if err := s.db.Where("property_id = ?", propertyID).Order("created_at ASC").Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	switch len(loans) {
	case 0:
		return nil, nil
	case 1:
	default:
		logger.Get().Warnw("multiple loan rows for property, using oldest",
			"property_id", propertyID, "count", len(loans))
	}
	return &loans[0], nil
}
