package normalizer

import (
	"strings"

	"teakeys/internal/models"
)

// DefaultRules returns the built-in replacement rules in application order.
// The double-space collapse runs last so it can clean up gaps left by the
// earlier removals.
func DefaultRules() models.RuleSet {
	return models.RuleSet{
		{Pattern: "Average", Replacement: "Avg"},
		{Pattern: " Students", Replacement: ""},
		{Pattern: "Male", Replacement: "M"},
		{Pattern: "Female", Replacement: "F"},
		{Pattern: "  ", Replacement: " "},
	}
}

// Transformer applies an ordered chain of literal rules to a single value.
type Transformer struct {
	rules models.RuleSet
}

// NewTransformer creates a transformer for the given options: the default
// rules first when UseDefaults is set, then the extra rules.
func NewTransformer(opts Options) *Transformer {
	var rules models.RuleSet
	if opts.UseDefaults {
		rules = append(rules, DefaultRules()...)
	}

	rules = append(rules, opts.ExtraRules...)

	return &Transformer{rules: rules}
}

// Rules returns a copy of the effective rule chain.
func (t *Transformer) Rules() models.RuleSet {
	return t.rules.Clone()
}

// Transform replaces every occurrence of each pattern in turn, trimming
// surrounding whitespace after each rule.
func (t *Transformer) Transform(value string) string {
	return ApplyRules(value, t.rules)
}

// ApplyRules runs rules over value in order.
func ApplyRules(value string, rules models.RuleSet) string {
	for _, r := range rules {
		value = strings.TrimSpace(strings.ReplaceAll(value, r.Pattern, r.Replacement))
	}

	return value
}
