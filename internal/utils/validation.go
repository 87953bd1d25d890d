// internal/utils/validation.go
package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/constants"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate
)

// InitValidator initializes the validator with custom validations
func InitValidator() {
	// Create a new validator instance
	validate = validator.New()

	// Register function to get json tag names instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations(validate)

	log.Info().Msg("Validator initialized")
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using the validator
func ValidateStruct(v interface{}) error {
	if validate == nil {
		InitValidator()
	}

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	// Handle validation errors
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		e := validationErrors[0]
		return NewValidationError(e.Field(), getErrorMessage(e))
	}

	// Handle other validation errors
	return NewValidationError("", err.Error())
}

// getErrorMessage returns a user-friendly error message for a validation error
func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", e.Param())
		}
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "max":
		if e.Type().Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", e.Param())
		}
		return fmt.Sprintf("Must be at most %s", e.Param())
	case "oneof":
		allowedValues := strings.Replace(e.Param(), " ", ", ", -1)
		return fmt.Sprintf("Must be one of: %s", allowedValues)
	case "diet":
		return fmt.Sprintf("Must be one of: %s, %s, %s",
			constants.DietHalal, constants.DietKosher, constants.DietNone)
	default:
		return fmt.Sprintf("Failed validation on the '%s' tag", e.Tag())
	}
}

// registerCustomValidations adds custom validation functions to the validator
func registerCustomValidations(v *validator.Validate) {
	if err := v.RegisterValidation("diet", validateDiet); err != nil {
		log.Error().Err(err).Msg("Failed to register diet validation")
	}
}

// Custom validation function for dietary profiles
func validateDiet(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constants.DietHalal, constants.DietKosher, constants.DietNone:
		return true
	}
	return false
}
