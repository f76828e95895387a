package normalizer

import (
	"errors"
	"fmt"

	"teakeys/internal/models"
)

// ErrEmptyPattern is returned for a rule with an empty pattern, which would
// insert its replacement between every character.
var ErrEmptyPattern = errors.New("rule pattern must not be empty")

// Validator checks caller-supplied rules before they are applied.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every rule in rs.
func (v *Validator) Validate(rs models.RuleSet) error {
	for i, r := range rs {
		if r.Pattern == "" {
			return fmt.Errorf("%w at index %d", ErrEmptyPattern, i)
		}
	}

	return nil
}

// ValidateRules is a shorthand for NewValidator().Validate(rs).
func ValidateRules(rs models.RuleSet) error {
	return NewValidator().Validate(rs)
}
