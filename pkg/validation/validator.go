// Package validation checks configuration and request structs before they
// reach the storage layer.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxGaugeNameLength = 100
	MaxAttributes      = 20
	MaxStoreSizeKb     = 10 * 1024 * 1024 // 10 GiB ring is already generous

	// gaugeNamePattern allows dotted/namespaced gauge and object names
	gaugeNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._/ :=-]+$`)
)

func init() {
	validate = validator.New()
}

// ValidateStruct runs the struct-tag rules on any tagged value.
func ValidateStruct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateStoreSizeKb checks a requested ring capacity.
func ValidateStoreSizeKb(sizeKb int) error {
	if sizeKb < 1 {
		return fmt.Errorf("SizeKb: must be positive, got %d", sizeKb)
	}
	if sizeKb > MaxStoreSizeKb {
		return fmt.Errorf("SizeKb: maximum %d exceeded, got %d", MaxStoreSizeKb, sizeKb)
	}
	return nil
}

// ValidateGaugeName checks a gauge or object name.
func ValidateGaugeName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if len(name) > MaxGaugeNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters", MaxGaugeNameLength)
	}
	if !gaugeNamePattern.MatchString(name) {
		return fmt.Errorf("name '%s' contains invalid characters", name)
	}
	return nil
}

// formatValidationError converts validator errors into readable, field-named
// messages.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", fieldErr.Field())
		case "min":
			return fmt.Errorf("%s: must be at least %s", fieldErr.Field(), fieldErr.Param())
		case "max":
			return fmt.Errorf("%s: must be at most %s", fieldErr.Field(), fieldErr.Param())
		default:
			return fmt.Errorf("%s: failed %s validation", fieldErr.Field(), fieldErr.Tag())
		}
	}
	return err
}
