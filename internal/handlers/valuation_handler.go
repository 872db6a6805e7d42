package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/services"
)

// ValuationHandler triggers the estimator: single properties for the owner,
// and batch runs for the owner or the pipeline.
type ValuationHandler struct {
	valuationService services.ValuationServicer
}

// NewValuationHandler creates a new ValuationHandler.
func NewValuationHandler(valuationService services.ValuationServicer) *ValuationHandler {
	return &ValuationHandler{valuationService: valuationService}
}

// EstimateProperty runs the estimator against one property and persists the
// resulting range.
func (h *ValuationHandler) EstimateProperty(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	propertyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	outcome, err := h.valuationService.EstimateProperty(c.Request.Context(), userID, propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// BatchRequest tunes a valuation batch run. All fields are optional; zero
// values fall back to the configured defaults.
type BatchRequest struct {
	StaleDays    int   `json:"stale_days" binding:"omitempty,min=1"`
	Concurrency  int   `json:"concurrency" binding:"omitempty,min=1,max=50"`
	BatchDelayMS int   `json:"batch_delay_ms" binding:"omitempty,min=0"`
	UserID       *uint `json:"user_id"`
}

func (r BatchRequest) toOptions() services.BatchOptions {
	return services.BatchOptions{
		UserID:      r.UserID,
		StaleDays:   r.StaleDays,
		Concurrency: r.Concurrency,
		BatchDelay:  time.Duration(r.BatchDelayMS) * time.Millisecond,
	}
}

// RunOwnerBatch re-estimates the caller's stale properties. The run is always
// scoped to the authenticated user regardless of the payload.
func (h *ValuationHandler) RunOwnerBatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	opts := req.toOptions()
	opts.UserID = &userID

	summary, err := h.valuationService.RunBatch(c.Request.Context(), opts)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunPipelineBatch re-estimates stale properties across all owners. The route
// sits behind the pipeline API key, not user auth.
func (h *ValuationHandler) RunPipelineBatch(c *gin.Context) {
	var req BatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	summary, err := h.valuationService.RunBatch(c.Request.Context(), req.toOptions())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
