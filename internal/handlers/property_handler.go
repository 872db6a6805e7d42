package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "propfolio/internal/errors"
	"propfolio/internal/models"
	"propfolio/internal/pagination"
	"propfolio/internal/services"
)

// PropertyHandler handles property record requests.
type PropertyHandler struct {
	propertyService services.PropertyServicer
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertyService services.PropertyServicer) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// PropertyRequest represents the create/update payload for a property. The
// same shape serves both verbs; an update replaces all owner-editable fields.
type PropertyRequest struct {
	Nickname string `json:"nickname" binding:"required,min=1,max=200"`
	Kind     string `json:"kind" binding:"required,property_kind"`
	Status   string `json:"status" binding:"omitempty,construction_status"`

	PurchasePrice     *float64   `json:"purchase_price" binding:"omitempty,gte=0"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	RegistrationValue *float64   `json:"registration_value" binding:"omitempty,gte=0"`
	OwnershipPercent  *float64   `json:"ownership_percent" binding:"omitempty,gt=0,lte=100"`

	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Address    string `json:"address" binding:"max=500"`

	ProjectName string `json:"project_name" binding:"max=200"`
	BuilderName string `json:"builder_name" binding:"max=200"`

	CarpetArea  *float64 `json:"carpet_area" binding:"omitempty,gt=0"`
	BuiltUpArea *float64 `json:"built_up_area" binding:"omitempty,gt=0"`

	CurrentValueOverride *float64 `json:"current_value_override" binding:"omitempty,gte=0"`
}

func (r PropertyRequest) toInput() services.PropertyInput {
	return services.PropertyInput{
		Nickname:             r.Nickname,
		Kind:                 models.PropertyKind(r.Kind),
		Status:               models.ConstructionStatus(r.Status),
		PurchasePrice:        r.PurchasePrice,
		PurchaseDate:         r.PurchaseDate,
		RegistrationValue:    r.RegistrationValue,
		OwnershipPercent:     r.OwnershipPercent,
		City:                 r.City,
		State:                r.State,
		PostalCode:           r.PostalCode,
		Address:              r.Address,
		ProjectName:          r.ProjectName,
		BuilderName:          r.BuilderName,
		CarpetArea:           r.CarpetArea,
		BuiltUpArea:          r.BuiltUpArea,
		CurrentValueOverride: r.CurrentValueOverride,
	}
}

// CreateProperty handles registering a new property.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	property, err := h.propertyService.CreateProperty(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

// GetUserProperties returns a paginated list of the user's properties,
// newest first.
func (h *PropertyHandler) GetUserProperties(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.propertyService.GetUserProperties(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPropertyByID returns one property with its loan and cash-flow records.
func (h *PropertyHandler) GetPropertyByID(c *gin.Context) {
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

	records, err := h.propertyService.GetPropertyRecords(userID, propertyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	property := records.Property
	property.Loan = records.Loan
	property.CashFlow = records.CashFlow
	c.JSON(http.StatusOK, property)
}

// UpdateProperty replaces the owner-editable fields of a property.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
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

	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	property, err := h.propertyService.UpdateProperty(userID, propertyID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// DeleteProperty removes a property and its dependent records.
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
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

	if err := h.propertyService.DeleteProperty(userID, propertyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
