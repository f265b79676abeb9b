package validate

import (
	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to Echo's Validator interface.
type Validator struct {
	validator *validator.Validate
}

// New creates a request validator for binding into Echo.
func New() *Validator {
	return &Validator{validator: validator.New()}
}

// Validate validates a bound request struct against its tags.
func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}
