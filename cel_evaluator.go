package flexconf

import (
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// celEnv declares the rule variables once. The strings extension adds
// helpers such as value.lowerAscii() and value.split("-").
var celEnv = sync.OnceValues(func() (*celgo.Env, error) {
	return celgo.NewEnv(
		celgo.Variable("value", celgo.StringType),
		celgo.Variable("tag", celgo.StringType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("now", celgo.TimestampType),
		ext.Strings(),
	)
})

// NewCELEvaluator returns an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...EvaluatorOption) Evaluator {
	cfg := newEvaluatorConfig(opts)
	return &programEvaluator[celgo.Program]{
		name:    EngineCEL,
		cache:   cfg.cache,
		compile: compileCEL,
		run:     runCEL,
	}
}

func compileCEL(expression string) (celgo.Program, error) {
	env, err := celEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	return env.Program(ast)
}

func runCEL(program celgo.Program, ctx RuleContext) (any, error) {
	out, _, err := program.Eval(ctx.binding())
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
