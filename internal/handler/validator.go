package handler

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo's Validator interface.
// The custom strongpassword rule mirrors what the frontend enforces at
// signup: at least 8 characters covering lower, upper, digit and symbol.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the validator with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New()
	// RegisterValidation only errors on an empty tag name.
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func strongPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
