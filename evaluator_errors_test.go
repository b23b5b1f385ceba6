package flexconf

import (
	"errors"
	"testing"
)

func TestEvaluationErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  *EvaluationError
		want string
	}{
		{
			name: "empty expression",
			err:  &EvaluationError{Engine: EngineExpr, Phase: PhaseCompile, Err: errEmptyExpression},
			want: "flexconf: expr compile: expression must not be empty",
		},
		{
			name: "runtime failure",
			err:  &EvaluationError{Engine: EngineCEL, Phase: PhaseEvaluate, Tag: "env", Expr: `value == args.env`, Err: errors.New("no such key: env")},
			want: `flexconf: cel evaluate tag env "value == args.env": no such key: env`,
		},
		{
			name: "no phase",
			err:  &EvaluationError{Engine: EngineJS, Tag: "region", Err: errors.New("boom")},
			want: "flexconf: js tag region: boom",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestWithRuleContextWrapsPlainErrors(t *testing.T) {
	base := errors.New("weight must be numeric")
	err := withRuleContext(base, EngineExpr, "len(value)", "tier")

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Expr != "len(value)" || evalErr.Tag != "tier" {
		t.Fatalf("unexpected metadata: %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if withRuleContext(nil, EngineExpr, "x", "tier") != nil {
		t.Fatalf("expected nil to stay nil")
	}
}

func TestWithRuleContextFillsMissingFields(t *testing.T) {
	existing := &EvaluationError{Engine: EngineExpr, Phase: PhaseCompile, Err: errEmptyExpression}

	err := withRuleContext(existing, EngineCEL, "value", "region")

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Phase != PhaseCompile {
		t.Fatalf("expected engine and phase kept, got %+v", evalErr)
	}
	if evalErr.Tag != "region" || evalErr.Expr != "value" {
		t.Fatalf("expected tag and expression filled, got %+v", evalErr)
	}
	if existing.Tag != "" || existing.Expr != "" {
		t.Fatalf("expected the original error untouched, got %+v", existing)
	}
	if !errors.Is(err, errEmptyExpression) {
		t.Fatalf("expected cause to unwrap")
	}
}

func TestEngineError(t *testing.T) {
	err := engineError("lua", errUnknownEngine)
	if !errors.Is(err, errUnknownEngine) || err.Error() != `flexconf: engine "lua": unknown expression engine` {
		t.Fatalf("unexpected engine error %v", err)
	}
}
