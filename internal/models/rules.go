package models

// Rule is a literal, case-sensitive substring replacement.
type Rule struct {
	Pattern     string `yaml:"pattern" toml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" toml:"replacement" json:"replacement"`
}

// RuleSet is an ordered list of rules. Each rule sees the output of the ones before it.
type RuleSet []Rule

// Clone returns an independent copy of the rule set.
func (rs RuleSet) Clone() RuleSet {
	if rs == nil {
		return nil
	}

	out := make(RuleSet, len(rs))
	copy(out, rs)

	return out
}
