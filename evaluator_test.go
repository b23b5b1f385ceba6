package flexconf

import (
	"errors"
	"strings"
	"testing"
	"time"

	celgo "github.com/google/cel-go/cel"
)

func TestEvaluatorsAgree(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := RuleContext{
		Tag:   "env",
		Value: "prod",
		Args:  map[string]any{"environment": "prod", "level": 3},
		Now:   &now,
	}

	engines := map[string]Evaluator{
		EngineExpr: NewExprEvaluator(),
		EngineCEL:  NewCELEvaluator(),
	}
	cases := []struct {
		name string
		expr map[string]string
		want any
	}{
		{
			name: "compare with args",
			expr: map[string]string{
				EngineExpr: `value == args.environment`,
				EngineCEL:  `value == args.environment`,
			},
			want: true,
		},
		{
			name: "tag binding",
			expr: map[string]string{
				EngineExpr: `tag + ":" + value`,
				EngineCEL:  `tag + ":" + value`,
			},
			want: "env:prod",
		},
		{
			name: "clock binding",
			expr: map[string]string{
				EngineExpr: `now.Year() == 2024`,
				EngineCEL:  `now.getFullYear() == 2024`,
			},
			want: true,
		},
	}

	for engine, evaluator := range engines {
		for _, tc := range cases {
			t.Run(engine+"/"+tc.name, func(t *testing.T) {
				if evaluator.Engine() != engine {
					t.Fatalf("expected engine %s, got %s", engine, evaluator.Engine())
				}
				got, err := evaluator.Evaluate(ctx, tc.expr[engine])
				if err != nil {
					t.Fatalf("evaluate: %v", err)
				}
				if got != tc.want {
					t.Fatalf("expected %v, got %#v", tc.want, got)
				}
			})
		}
	}
}

func TestEvaluatorsRejectBadExpressions(t *testing.T) {
	for _, evaluator := range []Evaluator{NewExprEvaluator(), NewCELEvaluator()} {
		t.Run(evaluator.Engine(), func(t *testing.T) {
			_, err := evaluator.Compile("value + 1")
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("expected EvaluationError, got %v", err)
			}
			if evalErr.Engine != evaluator.Engine() || evalErr.Expr != "value + 1" || evalErr.Phase != PhaseCompile {
				t.Fatalf("unexpected error metadata: %+v", evalErr)
			}

			if _, err := evaluator.Compile(""); !errors.Is(err, errEmptyExpression) {
				t.Fatalf("expected empty expression error, got %v", err)
			}
		})
	}
}

func TestEvaluatorCachesPrograms(t *testing.T) {
	cache := NewProgramCache()
	evaluator := NewExprEvaluator(WithProgramCache(cache))
	if _, err := evaluator.Compile(`value != ""`); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := cache.Get(EngineExpr + `:value != ""`); !ok {
		t.Fatalf("expected compiled program to be cached")
	}

	cel := NewCELEvaluator(WithProgramCache(cache))
	if _, err := cel.Compile(`value != ""`); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := cache.Get(EngineCEL + `:value != ""`); !ok {
		t.Fatalf("expected cel program cached under its own key")
	}
}

func TestNewEvaluator(t *testing.T) {
	for _, engine := range []string{"", EngineExpr, EngineCEL} {
		evaluator, err := NewEvaluator(engine)
		if err != nil {
			t.Fatalf("engine %q: %v", engine, err)
		}
		if engine != "" && evaluator.Engine() != engine {
			t.Fatalf("expected %s, got %s", engine, evaluator.Engine())
		}
	}
	if _, err := NewEvaluator("lua"); !errors.Is(err, errUnknownEngine) || !strings.Contains(err.Error(), `engine "lua"`) {
		t.Fatalf("expected unknown engine error, got %v", err)
	}
	if js, err := NewEvaluator(EngineJS); err != nil {
		if js != nil || !errors.Is(err, errJSUnavailable) {
			t.Fatalf("expected js unavailable error, got %v", err)
		}
	} else if js.Engine() != EngineJS {
		t.Fatalf("expected js engine, got %s", js.Engine())
	}
}

func TestEvaluatorReusesCachedProgram(t *testing.T) {
	cache := NewProgramCache()
	first, err := NewCELEvaluator(WithProgramCache(cache)).Compile(`value.lowerAscii() == "prod"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := NewCELEvaluator(WithProgramCache(cache)).Compile(`value.lowerAscii() == "prod"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first.(*compiledProgram[celgo.Program]).program != second.(*compiledProgram[celgo.Program]).program {
		t.Fatalf("expected the cached program to be reused")
	}
	got, err := second.Evaluate(RuleContext{Value: "PROD"})
	if err != nil || got != true {
		t.Fatalf("expected string extension to match, got %#v err=%v", got, err)
	}
}

func TestEvaluatorRuntimeError(t *testing.T) {
	_, err := NewExprEvaluator().Evaluate(RuleContext{Tag: "region", Args: map[string]any{"limits": 3}}, `args.limits.max > 1`)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Phase != PhaseEvaluate || evalErr.Tag != "region" {
		t.Fatalf("expected evaluate phase for region, got %+v", evalErr)
	}
}
