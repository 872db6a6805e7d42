package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/models"
	"propfolio/internal/services"
)

// CashFlowHandler handles cash-flow record requests. Like loans, a property
// carries at most one cash-flow record.
type CashFlowHandler struct {
	cashFlowService services.CashFlowServicer
}

// NewCashFlowHandler creates a new CashFlowHandler.
func NewCashFlowHandler(cashFlowService services.CashFlowServicer) *CashFlowHandler {
	return &CashFlowHandler{cashFlowService: cashFlowService}
}

// CashFlowRequest represents the upsert payload for a property's cash-flow
// record.
type CashFlowRequest struct {
	RentalStatus        string     `json:"rental_status" binding:"required,rental_status"`
	MonthlyRent         *float64   `json:"monthly_rent" binding:"omitempty,gt=0"`
	RentStartDate       *time.Time `json:"rent_start_date"`
	AnnualEscalationPct *float64   `json:"annual_escalation_pct" binding:"omitempty,gte=0,lte=100"`

	MonthlyMaintenance   *float64 `json:"monthly_maintenance" binding:"omitempty,gte=0"`
	AnnualPropertyTax    *float64 `json:"annual_property_tax" binding:"omitempty,gte=0"`
	OtherMonthlyExpenses *float64 `json:"other_monthly_expenses" binding:"omitempty,gte=0"`
}

// UpsertCashFlow creates or replaces the cash-flow record of a property.
func (h *CashFlowHandler) UpsertCashFlow(c *gin.Context) {
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

	var req CashFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	cashFlow, err := h.cashFlowService.UpsertCashFlow(userID, propertyID, services.CashFlowInput{
		RentalStatus:         models.RentalStatus(req.RentalStatus),
		MonthlyRent:          req.MonthlyRent,
		RentStartDate:        req.RentStartDate,
		AnnualEscalationPct:  req.AnnualEscalationPct,
		MonthlyMaintenance:   req.MonthlyMaintenance,
		AnnualPropertyTax:    req.AnnualPropertyTax,
		OtherMonthlyExpenses: req.OtherMonthlyExpenses,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cashFlow)
}

// GetCashFlow returns the cash-flow record of a property.
func (h *CashFlowHandler) GetCashFlow(c *gin.Context) {
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

	cashFlow, err := h.cashFlowService.GetCashFlow(userID, propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cashFlow)
}

// DeleteCashFlow removes the cash-flow record of a property.
func (h *CashFlowHandler) DeleteCashFlow(c *gin.Context) {
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

	if err := h.cashFlowService.DeleteCashFlow(userID, propertyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
