// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin binding engine is not a *validator.Validate")
	}

	validations := map[string]validator.Func{
		"property_kind":       validatePropertyKind,
		"construction_status": validateConstructionStatus,
		"rental_status":       validateRentalStatus,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

func validatePropertyKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "residential", "commercial", "land":
		return true
	}
	return false
}

func validateConstructionStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ready", "under_construction":
		return true
	}
	return false
}

func validateRentalStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "self_occupied", "rented", "vacant":
		return true
	}
	return false
}
