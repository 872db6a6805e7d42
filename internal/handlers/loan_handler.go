package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/services"
)

// LoanHandler handles loan record requests. A property carries at most one
// loan, so create and update share an upsert endpoint.
type LoanHandler struct {
	loanService services.LoanServicer
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanService services.LoanServicer) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// LoanRequest represents the upsert payload for a property's loan.
type LoanRequest struct {
	LenderName         string   `json:"lender_name" binding:"required,min=1,max=200"`
	LoanAmount         float64  `json:"loan_amount" binding:"required,gt=0"`
	InterestRate       float64  `json:"interest_rate" binding:"gte=0,lte=100"`
	EMI                float64  `json:"emi" binding:"gte=0"`
	TenureMonths       int      `json:"tenure_months" binding:"gte=0"`
	OutstandingBalance *float64 `json:"outstanding_balance" binding:"omitempty,gte=0"`
}

// UpsertLoan creates or replaces the loan record of a property.
func (h *LoanHandler) UpsertLoan(c *gin.Context) {
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

	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.loanService.UpsertLoan(userID, propertyID, services.LoanInput{
		LenderName:         req.LenderName,
		LoanAmount:         req.LoanAmount,
		InterestRate:       req.InterestRate,
		EMI:                req.EMI,
		TenureMonths:       req.TenureMonths,
		OutstandingBalance: req.OutstandingBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan)
}

// GetLoan returns the loan record of a property.
func (h *LoanHandler) GetLoan(c *gin.Context) {
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

	loan, err := h.loanService.GetLoan(userID, propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loan)
}

// DeleteLoan removes the loan record of a property.
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
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

	if err := h.loanService.DeleteLoan(userID, propertyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
