package normalizer

import (
	"testing"

	"teakeys/internal/models"
)

func TestTransformer_Transform_DefaultExample(t *testing.T) {
	tr := NewTransformer(DefaultOptions())

	if got := tr.Transform("Average  Male Students"); got != "Avg M" {
		t.Errorf("Transform = %q, want %q", got, "Avg M")
	}
}

func TestApplyRules(t *testing.T) {
	tests := []struct {
		name  string
		value string
		rules models.RuleSet
		want  string
	}{
		{
			name:  "global replacement",
			value: "a-b-c",
			rules: models.RuleSet{{Pattern: "-", Replacement: "+"}},
			want:  "a+b+c",
		},
		{
			name:  "case sensitive",
			value: "male Male",
			rules: models.RuleSet{{Pattern: "Male", Replacement: "M"}},
			want:  "male M",
		},
		{
			name:  "literal not regex",
			value: "a.b",
			rules: models.RuleSet{{Pattern: ".", Replacement: ""}},
			want:  "ab",
		},
		{
			name:  "trim after each rule",
			value: "Students Only",
			rules: models.RuleSet{{Pattern: "Students", Replacement: ""}, {Pattern: "Only", Replacement: "Just"}},
			want:  "Just",
		},
		{
			name:  "later rule sees earlier output",
			value: "Average",
			rules: models.RuleSet{{Pattern: "Average", Replacement: "Avg"}, {Pattern: "Avg", Replacement: "Mean"}},
			want:  "Mean",
		},
		{
			name:  "no rules still leaves value untouched",
			value: "  padded  ",
			rules: nil,
			want:  "  padded  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyRules(tt.value, tt.rules); got != tt.want {
				t.Errorf("ApplyRules = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransformer_Rules(t *testing.T) {
	tr := NewTransformer(Options{
		UseDefaults: true,
		ExtraRules:  models.RuleSet{{Pattern: "x", Replacement: "y"}},
	})

	rules := tr.Rules()
	if len(rules) != len(DefaultRules())+1 {
		t.Fatalf("len(Rules) = %d, want %d", len(rules), len(DefaultRules())+1)
	}

	if rules[len(rules)-1].Pattern != "x" {
		t.Errorf("last rule = %+v, want extra rule", rules[len(rules)-1])
	}

	rules[0].Pattern = "mutated"
	if tr.Rules()[0].Pattern != "Average" {
		t.Error("Rules returned the internal slice")
	}
}
