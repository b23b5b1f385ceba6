package flexconf

import (
	"fmt"
	"sort"
	"strings"
)

// TagRule decides whether a fragment carrying a tag takes part in the merge,
// how the raw tag value is normalized and how much it adds to the score.
type TagRule interface {
	Applies(value string) (bool, error)
	Normalize(value string) (string, error)
	Weight(value string) (float64, error)
}

// RuleOption configures a Rule built with NewRule.
type RuleOption func(*Rule)

// Rule is a TagRule backed by plain functions. The zero configuration
// excludes every fragment carrying the tag, keeps values unchanged and
// weighs each tag 1.
type Rule struct {
	applies   func(string) bool
	normalize func(string) (string, error)
	weight    func(string) float64
}

// NewRule builds a Rule from opts.
func NewRule(opts ...RuleOption) *Rule {
	rule := &Rule{}
	for _, opt := range opts {
		if opt != nil {
			opt(rule)
		}
	}
	return rule
}

// WithApplies sets the inclusion predicate.
func WithApplies(fn func(value string) bool) RuleOption {
	return func(r *Rule) {
		r.applies = fn
	}
}

// AppliesTo includes fragments whose normalized value is one of values.
func AppliesTo(values ...string) RuleOption {
	allowed := make(map[string]struct{}, len(values))
	for _, value := range values {
		allowed[value] = struct{}{}
	}
	return WithApplies(func(value string) bool {
		_, ok := allowed[value]
		return ok
	})
}

// AlwaysApplies includes every fragment carrying the tag.
func AlwaysApplies() RuleOption {
	return WithApplies(func(string) bool { return true })
}

// WithNormalize sets the value normalization.
func WithNormalize(fn func(value string) (string, error)) RuleOption {
	return func(r *Rule) {
		r.normalize = fn
	}
}

// WithValues maps raw values through a fixed table. Values missing from the
// table are rejected.
func WithValues(table map[string]string) RuleOption {
	mapping := make(map[string]string, len(table))
	for raw, normalized := range table {
		mapping[raw] = normalized
	}
	return WithNormalize(func(value string) (string, error) {
		normalized, ok := mapping[value]
		if !ok {
			return "", fmt.Errorf("unknown value, expected one of %s", strings.Join(sortedKeys(mapping), ", "))
		}
		return normalized, nil
	})
}

// WithWeight sets the scoring function.
func WithWeight(fn func(value string) float64) RuleOption {
	return func(r *Rule) {
		r.weight = fn
	}
}

// WithConstantWeight scores every value of the tag the same.
func WithConstantWeight(weight float64) RuleOption {
	return WithWeight(func(string) float64 { return weight })
}

// WithWeights scores values through a table, falling back to fallback.
func WithWeights(table map[string]float64, fallback float64) RuleOption {
	weights := make(map[string]float64, len(table))
	for value, weight := range table {
		weights[value] = weight
	}
	return WithWeight(func(value string) float64 {
		if weight, ok := weights[value]; ok {
			return weight
		}
		return fallback
	})
}

// Applies implements TagRule.
func (r *Rule) Applies(value string) (bool, error) {
	if r == nil || r.applies == nil {
		return false, nil
	}
	return r.applies(value), nil
}

// Normalize implements TagRule.
func (r *Rule) Normalize(value string) (string, error) {
	if r == nil || r.normalize == nil {
		return value, nil
	}
	return r.normalize(value)
}

// Weight implements TagRule.
func (r *Rule) Weight(value string) (float64, error) {
	if r == nil || r.weight == nil {
		return 1, nil
	}
	return r.weight(value), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
