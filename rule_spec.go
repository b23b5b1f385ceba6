package flexconf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RuleSpec declares a tag rule with expressions instead of Go closures.
// Empty fields keep the TagRule defaults: never applies, identity
// normalization and weight 1. Values, when set, maps raw values before the
// Normalize expression runs and rejects values missing from the table.
type RuleSpec struct {
	Applies   string            `json:"applies,omitempty"`
	Normalize string            `json:"normalize,omitempty"`
	Weight    string            `json:"weight,omitempty"`
	Values    map[string]string `json:"values,omitempty"`
}

// ExpressionOption configures an ExpressionRule.
type ExpressionOption func(*ExpressionRule)

// WithRuleArgs exposes args to the rule expressions.
func WithRuleArgs(args map[string]any) ExpressionOption {
	return func(r *ExpressionRule) {
		r.args = args
	}
}

// WithRuleLogger records every expression evaluation.
func WithRuleLogger(logger EvaluatorLogger) ExpressionOption {
	return func(r *ExpressionRule) {
		if logger == nil {
			r.logger = noopEvaluatorLogger{}
			return
		}
		r.logger = logger
	}
}

// WithRuleClock overrides the time bound to now.
func WithRuleClock(clock func() time.Time) ExpressionOption {
	return func(r *ExpressionRule) {
		r.clock = clock
	}
}

// ExpressionRule is a TagRule whose behaviour is defined by expressions.
type ExpressionRule struct {
	tag    string
	spec   RuleSpec
	engine string

	applies   CompiledRule
	normalize CompiledRule
	weight    CompiledRule

	args   map[string]any
	clock  func() time.Time
	logger EvaluatorLogger
}

// NewExpressionRule compiles spec for tag with evaluator. A nil evaluator
// selects the expr engine.
func NewExpressionRule(tag string, spec RuleSpec, evaluator Evaluator, opts ...ExpressionOption) (*ExpressionRule, error) {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	rule := &ExpressionRule{
		tag:    tag,
		spec:   spec,
		engine: evaluator.Engine(),
		logger: noopEvaluatorLogger{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rule)
		}
	}

	var err error
	if rule.applies, err = compileOptional(evaluator, spec.Applies, tag); err != nil {
		return nil, err
	}
	if rule.normalize, err = compileOptional(evaluator, spec.Normalize, tag); err != nil {
		return nil, err
	}
	if rule.weight, err = compileOptional(evaluator, spec.Weight, tag); err != nil {
		return nil, err
	}
	return rule, nil
}

func compileOptional(evaluator Evaluator, expression, tag string) (CompiledRule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, withRuleContext(err, evaluator.Engine(), expression, tag)
	}
	return compiled, nil
}

// Applies implements TagRule.
func (r *ExpressionRule) Applies(value string) (bool, error) {
	if r.applies == nil {
		return false, nil
	}
	result, err := r.run(r.applies, r.spec.Applies, value)
	if err != nil {
		return false, err
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, r.resultError(r.spec.Applies, fmt.Errorf("applies returned %T, want bool", result))
	}
	return ok, nil
}

// Normalize implements TagRule.
func (r *ExpressionRule) Normalize(value string) (string, error) {
	if len(r.spec.Values) > 0 {
		mapped, ok := r.spec.Values[value]
		if !ok {
			return "", fmt.Errorf("unknown value, expected one of %s", strings.Join(sortedKeys(r.spec.Values), ", "))
		}
		value = mapped
	}
	if r.normalize == nil {
		return value, nil
	}
	result, err := r.run(r.normalize, r.spec.Normalize, value)
	if err != nil {
		return "", err
	}
	switch typed := result.(type) {
	case string:
		return typed, nil
	case nil:
		return "", r.resultError(r.spec.Normalize, fmt.Errorf("normalize returned nil"))
	default:
		return fmt.Sprint(typed), nil
	}
}

// Weight implements TagRule.
func (r *ExpressionRule) Weight(value string) (float64, error) {
	if r.weight == nil {
		return 1, nil
	}
	result, err := r.run(r.weight, r.spec.Weight, value)
	if err != nil {
		return 0, err
	}
	weight, ok := toFloat(result)
	if !ok {
		return 0, r.resultError(r.spec.Weight, fmt.Errorf("weight returned %T, want number", result))
	}
	return weight, nil
}

func (r *ExpressionRule) run(compiled CompiledRule, expression, value string) (any, error) {
	now := r.clock()
	started := time.Now()
	result, err := compiled.Evaluate(RuleContext{
		Tag:   r.tag,
		Value: value,
		Args:  r.args,
		Now:   &now,
	})
	err = withRuleContext(err, r.engine, expression, r.tag)
	r.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   r.engine,
		Expr:     expression,
		Tag:      r.tag,
		Value:    value,
		Duration: time.Since(started),
		Err:      err,
	})
	return result, err
}

func (r *ExpressionRule) resultError(expression string, err error) error {
	return &EvaluationError{Engine: r.engine, Expr: expression, Tag: r.tag, Err: err}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
