//go:build js_eval

package flexconf

import (
	"github.com/dop251/goja"
)

// NewJSEvaluator returns an Evaluator backed by goja. An expression is the
// body of a return statement, for example value === args.environment.
func NewJSEvaluator(opts ...EvaluatorOption) (Evaluator, error) {
	cfg := newEvaluatorConfig(opts)
	return &programEvaluator[*goja.Program]{
		name:    EngineJS,
		cache:   cfg.cache,
		compile: compileJS,
		run:     runJS,
	}, nil
}

func compileJS(expression string) (*goja.Program, error) {
	return goja.Compile("rule.js", "(function(){ return ("+expression+"); })()", false)
}

// runJS uses a fresh runtime per call: goja runtimes are not safe for
// concurrent use while programs are.
func runJS(program *goja.Program, ctx RuleContext) (any, error) {
	vm := goja.New()
	for name, value := range ctx.binding() {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	result, err := vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return result.Export(), nil
}
