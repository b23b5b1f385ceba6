package flexconf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goliatone/go-flexconf/layering"
	"github.com/goliatone/go-flexconf/pkg/codec"
)

// RuleSet is a declarative set of tag rules, usually loaded from a file:
//
//	engine: expr
//	args:
//	  environment: production
//	tags:
//	  env:
//	    applies: value == args.environment
//	    values: {dev: development, prod: production}
//	    weight: "10"
type RuleSet struct {
	Engine string              `json:"engine,omitempty"`
	Args   map[string]any      `json:"args,omitempty"`
	Tags   map[string]RuleSpec `json:"tags"`
}

// LoadRuleSet reads a rule set from path. The format follows the file
// extension: json, yaml, yml, toml or cue.
func LoadRuleSet(path string) (*RuleSet, error) {
	c, err := codec.Default().ForPath(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	tree, err := c.Decode(data, path)
	if err != nil {
		return nil, &ParseError{Path: path, Format: c.Name(), Err: err}
	}
	set, err := DecodeRuleSet(tree)
	if err != nil {
		return nil, &ParseError{Path: path, Format: c.Name(), Err: err}
	}
	return set, nil
}

// DecodeRuleSet converts a decoded document into a RuleSet. Scalar
// expressions such as weight: 10 are accepted and read as their text.
func DecodeRuleSet(tree any) (*RuleSet, error) {
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rule set must be a mapping, got %T", tree)
	}
	if tags, ok := root["tags"].(map[string]any); ok {
		for name, raw := range tags {
			spec, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("tag %q must be a mapping, got %T", name, raw)
			}
			for _, field := range []string{"applies", "normalize", "weight"} {
				if value, present := spec[field]; present && value != nil {
					if _, isString := value.(string); !isString {
						spec[field] = fmt.Sprint(value)
					}
				}
			}
		}
	}

	payload, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	var set RuleSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// Registry compiles every tag of the set into a TagRegistry. overrides are
// merged over the set's args, so callers can pick the active environment at
// runtime.
func (s *RuleSet) Registry(overrides map[string]any, opts ...ExpressionOption) (*TagRegistry, error) {
	evaluator, err := NewEvaluator(s.Engine, WithProgramCache(NewProgramCache()))
	if err != nil {
		return nil, err
	}
	args := layering.MergeTrees(overrides, s.Args)

	registry := NewTagRegistry()
	for _, name := range sortedKeys(s.Tags) {
		ruleOpts := append([]ExpressionOption{WithRuleArgs(args)}, opts...)
		rule, err := NewExpressionRule(name, s.Tags[name], evaluator, ruleOpts...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(name, rule); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
