// Package normalizer rewrites mapping descriptions with ordered literal replacement rules.
//
// Rules are applied in order and each one sees the output of the previous
// ones. Running the same rules over an already normalized mapping gives the
// same result only if no replacement reintroduces a pattern matched by an
// earlier rule; that is a property of the rule set, not something checked here.
package normalizer

import (
	"fmt"

	"teakeys/internal/models"
)

// Options selects the rules used by a Processor.
type Options struct {
	// UseDefaults applies DefaultRules before ExtraRules.
	UseDefaults bool
	// ExtraRules are applied after the defaults, whether or not defaults are used.
	ExtraRules models.RuleSet
}

// DefaultOptions applies only the built-in rules.
func DefaultOptions() Options {
	return Options{UseDefaults: true}
}

// Processor validates the configured rules and applies them to a whole mapping.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	opts        Options
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts Options) *Processor {
	opts.ExtraRules = opts.ExtraRules.Clone()

	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(opts),
		opts:        opts,
	}
}

// Process returns a new mapping with the same keys, in the same order, and
// transformed values. The input is never modified. A nil mapping means no
// extraction has happened yet and yields a NotReadyError.
func (p *Processor) Process(m *models.KeyMapping) (*models.KeyMapping, error) {
	if m == nil {
		return nil, &models.NotReadyError{Stage: "normalize", Prerequisite: "key mapping"}
	}

	if err := p.validator.Validate(p.opts.ExtraRules); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	b := models.NewMappingBuilder(m.Title())
	for k, v := range m.All() {
		b.Set(k, p.transformer.Transform(v))
	}

	return b.Build(), nil
}

// Normalize is a shorthand for NewProcessor(opts).Process(m).
func Normalize(m *models.KeyMapping, opts Options) (*models.KeyMapping, error) {
	return NewProcessor(opts).Process(m)
}
