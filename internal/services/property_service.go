package services

import (
	"errors"

	"gorm.io/gorm"

	"propfolio/internal/analytics"
	apperrors "propfolio/internal/errors"
	"propfolio/internal/logger"
	"propfolio/internal/models"
	"propfolio/internal/pagination"
)

// propertyService is the store adapter for the three per-property records.
// Every monetary figure it hands to analytics consumers is ownership-adjusted
// through ApplyOwnershipAdjustment.
type propertyService struct {
	db *gorm.DB
}

// NewPropertyService creates a new PropertyServicer.
func NewPropertyService(db *gorm.DB) PropertyServicer {
	return &propertyService{db: db}
}

// validatePropertyInput rejects out-of-range ownership and negative money
// fields before anything reaches the database.
func validatePropertyInput(input PropertyInput) error {
	if input.OwnershipPercent != nil && (*input.OwnershipPercent <= 0 || *input.OwnershipPercent > 100) {
		return apperrors.WithMessage(apperrors.ErrValidation, "ownership_percent must be between 0 and 100")
	}
	for name, v := range map[string]*float64{
		"purchase_price":         input.PurchasePrice,
		"registration_value":     input.RegistrationValue,
		"carpet_area":            input.CarpetArea,
		"built_up_area":          input.BuiltUpArea,
		"current_value_override": input.CurrentValueOverride,
	} {
		if v != nil && *v < 0 {
			return apperrors.WithMessage(apperrors.ErrValidation, name+" cannot be negative")
		}
	}
	return nil
}

// CreateProperty registers a new property for the user.
func (s *propertyService) CreateProperty(userID uint, input PropertyInput) (*models.Property, error) {
	if input.Nickname == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "nickname is required")
	}
	if err := validatePropertyInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.ConstructionStatusReady
	}

	property := &models.Property{
		UserID:               userID,
		Nickname:             input.Nickname,
		Kind:                 input.Kind,
		Status:               status,
		PurchasePrice:        input.PurchasePrice,
		PurchaseDate:         input.PurchaseDate,
		RegistrationValue:    input.RegistrationValue,
		OwnershipPercent:     input.OwnershipPercent,
		City:                 input.City,
		State:                input.State,
		PostalCode:           input.PostalCode,
		Address:              input.Address,
		ProjectName:          input.ProjectName,
		BuilderName:          input.BuilderName,
		CarpetArea:           input.CarpetArea,
		BuiltUpArea:          input.BuiltUpArea,
		CurrentValueOverride: input.CurrentValueOverride,
	}

	if err := s.db.Create(property).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return property, nil
}

// GetPropertyByID returns a property if it exists and belongs to the user.
// Missing and not-owned are indistinguishable to the caller.
func (s *propertyService) GetPropertyByID(userID, propertyID uint) (*models.Property, error) {
	var property models.Property
	if err := s.db.Where("id = ? AND user_id = ?", propertyID, userID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPropertyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &property, nil
}

// GetUserProperties returns the user's properties, newest-created first.
func (s *propertyService) GetUserProperties(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Property], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Property{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var properties []models.Property
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&properties).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(properties, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateProperty replaces the owner-editable fields of a property. This is
// the only code path that writes the current-value override; the estimate
// fields are never part of this write.
func (s *propertyService) UpdateProperty(userID, propertyID uint, input PropertyInput) (*models.Property, error) {
	property, err := s.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}
	if input.Nickname == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "nickname is required")
	}
	if err := validatePropertyInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.ConstructionStatusReady
	}

	updates := map[string]interface{}{
		"nickname":               input.Nickname,
		"kind":                   input.Kind,
		"status":                 status,
		"purchase_price":         input.PurchasePrice,
		"purchase_date":          input.PurchaseDate,
		"registration_value":     input.RegistrationValue,
		"ownership_percent":      input.OwnershipPercent,
		"city":                   input.City,
		"state":                  input.State,
		"postal_code":            input.PostalCode,
		"address":                input.Address,
		"project_name":           input.ProjectName,
		"builder_name":           input.BuilderName,
		"carpet_area":            input.CarpetArea,
		"built_up_area":          input.BuiltUpArea,
		"current_value_override": input.CurrentValueOverride,
	}
	if err := s.db.Model(property).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetPropertyByID(userID, propertyID)
}

// DeleteProperty removes a property and explicitly cascades its loan and
// cash-flow records in the same transaction.
func (s *propertyService) DeleteProperty(userID, propertyID uint) error {
	property, err := s.GetPropertyByID(userID, propertyID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("property_id = ?", property.ID).Delete(&models.Loan{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Where("property_id = ?", property.ID).Delete(&models.CashFlow{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(property).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	return err
}

// GetPropertyRecords loads the full triple for one property.
func (s *propertyService) GetPropertyRecords(userID, propertyID uint) (*PropertyRecords, error) {
	property, err := s.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}

	loan, err := s.loadLoan(property.ID)
	if err != nil {
		return nil, err
	}
	cashFlow, err := s.loadCashFlow(property.ID)
	if err != nil {
		return nil, err
	}

	return &PropertyRecords{Property: property, Loan: loan, CashFlow: cashFlow}, nil
}

// GetAllPropertyRecords loads every triple for a user, newest-created first.
func (s *propertyService) GetAllPropertyRecords(userID uint) ([]PropertyRecords, error) {
	var properties []models.Property
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&properties).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	propertyIDs := make([]uint, len(properties))
	for i := range properties {
		propertyIDs[i] = properties[i].ID
	}

	loans, err := s.loadLoansByProperty(propertyIDs)
	if err != nil {
		return nil, err
	}
	cashFlows, err := s.loadCashFlowsByProperty(propertyIDs)
	if err != nil {
		return nil, err
	}

	records := make([]PropertyRecords, len(properties))
	for i := range properties {
		records[i] = PropertyRecords{
			Property: &properties[i],
			Loan:     loans[properties[i].ID],
			CashFlow: cashFlows[properties[i].ID],
		}
	}
	return records, nil
}

// ApplyOwnershipAdjustment scales the triple's monetary figures by the
// owner's share. The EMI and loan amount stay raw; they are per-property
// obligations, not per-share.
func (s *propertyService) ApplyOwnershipAdjustment(records *PropertyRecords) AdjustedValues {
	p := records.Property
	adjusted := AdjustedValues{}

	if p.PurchasePrice != nil {
		v := analytics.AdjustOwnership(*p.PurchasePrice, p.OwnershipPercent)
		adjusted.PurchasePrice = &v
	}

	cv, _ := analytics.CurrentValue(analytics.AssetInputs{
		OwnershipPercent:     p.OwnershipPercent,
		PurchasePrice:        p.PurchasePrice,
		CurrentValueOverride: p.CurrentValueOverride,
		EstimatedValueMin:    p.EstimatedValueMin,
		EstimatedValueMax:    p.EstimatedValueMax,
	})
	adjusted.CurrentValue = cv

	if records.CashFlow != nil && records.CashFlow.MonthlyRent != nil {
		v := analytics.AdjustOwnership(*records.CashFlow.MonthlyRent, p.OwnershipPercent)
		adjusted.MonthlyRent = &v
	}
	if records.Loan != nil {
		v := analytics.AdjustOwnership(records.Loan.OutstandingBalance, p.OwnershipPercent)
		adjusted.OutstandingBalance = &v
	}
	return adjusted
}

// loadLoan returns the property's loan, or nil when none exists. Multiple
// live rows violate the one-loan-per-property invariant; the oldest row wins
// and the anomaly is logged.
func (s *propertyService) loadLoan(propertyID uint) (*models.Loan, error) {
	var loans []models.Loan
	if err := s.db.Where("property_id = ?", propertyID).Order("created_at ASC").Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(loans) == 0 {
		return nil, nil
	}
	if len(loans) > 1 {
		logger.Get().Warnw("multiple loan rows for property, using oldest",
			"property_id", propertyID, "count", len(loans))
	}
	return &loans[0], nil
}

// loadCashFlow returns the property's cash-flow record, or nil when none
// exists, with the same duplicate handling as loadLoan.
func (s *propertyService) loadCashFlow(propertyID uint) (*models.CashFlow, error) {
	var flows []models.CashFlow
	if err := s.db.Where("property_id = ?", propertyID).Order("created_at ASC").Find(&flows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(flows) == 0 {
		return nil, nil
	}
	if len(flows) > 1 {
		logger.Get().Warnw("multiple cash-flow rows for property, using oldest",
			"property_id", propertyID, "count", len(flows))
	}
	return &flows[0], nil
}

func (s *propertyService) loadLoansByProperty(propertyIDs []uint) (map[uint]*models.Loan, error) {
	result := make(map[uint]*models.Loan, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return result, nil
	}
	var loans []models.Loan
	if err := s.db.Where("property_id IN ?", propertyIDs).Order("created_at ASC").Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range loans {
		if _, seen := result[loans[i].PropertyID]; seen {
			logger.Get().Warnw("multiple loan rows for property, using oldest",
				"property_id", loans[i].PropertyID)
			continue
		}
		result[loans[i].PropertyID] = &loans[i]
	}
	return result, nil
}

func (s *propertyService) loadCashFlowsByProperty(propertyIDs []uint) (map[uint]*models.CashFlow, error) {
	result := make(map[uint]*models.CashFlow, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return result, nil
	}
	var flows []models.CashFlow
	if err := s.db.Where("property_id IN ?", propertyIDs).Order("created_at ASC").Find(&flows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range flows {
		if _, seen := result[flows[i].PropertyID]; seen {
			logger.Get().Warnw("multiple cash-flow rows for property, using oldest",
				"property_id", flows[i].PropertyID)
			continue
		}
		result[flows[i].PropertyID] = &flows[i]
	}
	return result, nil
}

// assetInputsFromRecords maps a stored triple onto the pure metrics inputs.
func assetInputsFromRecords(records *PropertyRecords) analytics.AssetInputs {
	p := records.Property
	in := analytics.AssetInputs{
		OwnershipPercent:     p.OwnershipPercent,
		PurchasePrice:        p.PurchasePrice,
		PurchaseDate:         p.PurchaseDate,
		CurrentValueOverride: p.CurrentValueOverride,
		EstimatedValueMin:    p.EstimatedValueMin,
		EstimatedValueMax:    p.EstimatedValueMax,
	}
	if cf := records.CashFlow; cf != nil {
		in.Rented = cf.RentalStatus == models.RentalStatusRented
		in.MonthlyRent = cf.MonthlyRent
		in.MonthlyMaintenance = cf.MonthlyMaintenance
		in.AnnualPropertyTax = cf.AnnualPropertyTax
		in.OtherMonthlyExpenses = cf.OtherMonthlyExpenses
	}
	if l := records.Loan; l != nil {
		in.MonthlyEMI = &l.EMI
		in.OutstandingBalance = &l.OutstandingBalance
	}
	return in
}
