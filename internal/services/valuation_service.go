package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"propfolio/internal/config"
	apperrors "propfolio/internal/errors"
	"propfolio/internal/logger"
	"propfolio/internal/models"
	"propfolio/internal/valuation"
)

// valuationService drives the estimator and persists its results. It is the
// only writer of the system-estimate fields, and it can write nothing else:
// persistEstimate's signature carries the three estimate columns and no more.
type valuationService struct {
	db              *gorm.DB
	propertyService PropertyServicer
	estimator       *valuation.Estimator
	cfg             config.ValuationConfig
	now             func() time.Time
}

// NewValuationService creates a new ValuationServicer.
func NewValuationService(db *gorm.DB, propertyService PropertyServicer, estimator *valuation.Estimator, cfg config.ValuationConfig) ValuationServicer {
	return &valuationService{
		db:              db,
		propertyService: propertyService,
		estimator:       estimator,
		cfg:             cfg,
		now:             time.Now,
	}
}

// EstimateProperty runs the estimator for one property the user owns and
// persists the resulting range.
func (s *valuationService) EstimateProperty(ctx context.Context, userID, propertyID uint) (*EstimateOutcome, error) {
	property, err := s.propertyService.GetPropertyByID(userID, propertyID)
	if err != nil {
		return nil, err
	}
	return s.estimateAndPersist(ctx, property)
}

// estimateAndPersist computes and stores the estimate for an already-loaded
// property. Re-running it against an unchanged property is idempotent: it
// recomputes and overwrites the same two bounds.
func (s *valuationService) estimateAndPersist(ctx context.Context, property *models.Property) (*EstimateOutcome, error) {
	estimate, err := s.estimator.Estimate(ctx, valuationInputFromProperty(property))
	if err != nil {
		return nil, err
	}

	outcome := &EstimateOutcome{
		PropertyID:  property.ID,
		PreviousMin: property.EstimatedValueMin,
		PreviousMax: property.EstimatedValueMax,
		Estimate:    estimate,
	}

	if err := s.persistEstimate(property.ID, estimate.Min, estimate.Max, s.now()); err != nil {
		return nil, err
	}
	return outcome, nil
}

// persistEstimate updates the three system-estimate columns of a property.
// The user's current-value override is not a parameter and not a column in
// this write; no caller can smuggle it into the payload.
func (s *valuationService) persistEstimate(propertyID uint, min, max float64, estimatedAt time.Time) error {
	updates := map[string]interface{}{
		"estimated_value_min": min,
		"estimated_value_max": max,
		"last_estimated_at":   estimatedAt,
	}
	res := s.db.Model(&models.Property{}).Where("id = ?", propertyID).Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.WithMessage(apperrors.ErrPersistence, "property vanished before estimate write")
	}
	return nil
}

// RunBatch selects every property whose estimate is missing or stale and
// re-estimates them with bounded concurrency. Each property succeeds or
// fails on its own; the summary accounts for every selected property
// exactly once. Cancelling the context stops new work from being issued but
// lets in-flight estimations finish.
func (s *valuationService) RunBatch(ctx context.Context, opts BatchOptions) (*BatchSummary, error) {
	staleDays := opts.StaleDays
	if staleDays <= 0 {
		staleDays = s.cfg.StaleDays
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = s.cfg.Concurrency
	}
	delay := opts.BatchDelay
	if delay <= 0 {
		delay = s.cfg.BatchDelay
	}

	candidates, err := s.selectStale(opts.UserID, staleDays)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		Total:   len(candidates),
		Details: make([]BatchItem, len(candidates)),
	}

	log := logger.Get()
	log.Infow("valuation batch starting",
		"candidates", len(candidates), "stale_days", staleDays, "concurrency", concurrency)

	for start := 0; start < len(candidates); start += concurrency {
		if ctx.Err() != nil {
			// Stop issuing work; everything not yet started is recorded as
			// skipped so the summary still covers every selected property.
			for i := start; i < len(candidates); i++ {
				summary.Details[i] = BatchItem{
					PropertyID: candidates[i].ID,
					Succeeded:  false,
					Reason:     "batch cancelled before this property was processed",
				}
			}
			break
		}

		end := start + concurrency
		if end > len(candidates) {
			end = len(candidates)
		}

		s.runChunk(ctx, candidates[start:end], summary.Details[start:end])

		if end < len(candidates) {
			// Brief pause between chunks so the locality collaborator and
			// the datastore are not hammered.
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
		}
	}

	for i := range summary.Details {
		if summary.Details[i].Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	log.Infow("valuation batch finished",
		"total", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

// runChunk estimates one chunk of properties in parallel. Results land in
// the caller-provided slice, one slot per property.
func (s *valuationService) runChunk(ctx context.Context, chunk []models.Property, results []BatchItem) {
	done := make(chan struct{})
	for i := range chunk {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			property := &chunk[i]

			outcome, err := s.estimateAndPersist(ctx, property)
			if err != nil {
				results[i] = BatchItem{
					PropertyID: property.ID,
					Succeeded:  false,
					Reason:     failureReason(err),
				}
				return
			}
			results[i] = BatchItem{
				PropertyID: property.ID,
				Succeeded:  true,
				Outcome:    outcome,
			}
		}(i)
	}
	for range chunk {
		<-done
	}
}

// selectStale returns the properties whose estimate is absent, incomplete,
// or older than the staleness threshold, optionally scoped to one owner.
func (s *valuationService) selectStale(userID *uint, staleDays int) ([]models.Property, error) {
	cutoff := s.now().AddDate(0, 0, -staleDays)

	query := s.db.Model(&models.Property{}).
		Where("last_estimated_at IS NULL OR last_estimated_at < ? OR estimated_value_min IS NULL OR estimated_value_max IS NULL", cutoff).
		Order("id ASC")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return properties, nil
}

// failureReason renders a per-property failure for the batch summary.
func failureReason(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code + ": " + appErr.Message
	}
	return err.Error()
}

// valuationInputFromProperty maps a stored property onto the estimator input.
func valuationInputFromProperty(p *models.Property) valuation.Input {
	return valuation.Input{
		City:              p.City,
		PostalCode:        p.PostalCode,
		Kind:              string(p.Kind),
		UnderConstruction: p.Status == models.ConstructionStatusUnderConstruction,
		BuiltUpArea:       p.BuiltUpArea,
		CarpetArea:        p.CarpetArea,
		PurchasePrice:     p.PurchasePrice,
		PurchaseDate:      p.PurchaseDate,
	}
}
