package flexconf

import (
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprShape types the rule variables so misuse such as value + 1 fails to
// compile instead of failing per fragment.
var exprShape = map[string]any{
	"value": "",
	"tag":   "",
	"args":  map[string]any{},
	"now":   time.Time{},
}

// NewExprEvaluator returns an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	cfg := newEvaluatorConfig(opts)
	return &programEvaluator[*exprvm.Program]{
		name:    EngineExpr,
		cache:   cfg.cache,
		compile: compileExpr,
		run: func(program *exprvm.Program, ctx RuleContext) (any, error) {
			return exprlang.Run(program, ctx.binding())
		},
	}
}

func compileExpr(expression string) (*exprvm.Program, error) {
	return exprlang.Compile(expression,
		exprlang.Env(exprShape),
		exprlang.AllowUndefinedVariables(),
	)
}
