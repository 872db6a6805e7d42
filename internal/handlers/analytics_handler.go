package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/services"
)

// AnalyticsHandler serves the computed metric views. Everything here is
// derived at request time from stored records.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAssetAnalytics returns the full metric set for one property.
func (h *AnalyticsHandler) GetAssetAnalytics(c *gin.Context) {
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

	result, err := h.analyticsService.GetAssetAnalytics(userID, propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPortfolioAnalytics returns the aggregated portfolio view. The optional
// net_worth query parameter enables the allocation percentage.
func (h *AnalyticsHandler) GetPortfolioAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var totalNetWorth *float64
	if raw := c.Query("net_worth"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "net_worth must be a non-negative number"))
			return
		}
		totalNetWorth = &value
	}

	result, err := h.analyticsService.GetPortfolioAnalytics(userID, totalNetWorth)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
