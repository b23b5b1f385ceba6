package flexconf

import (
	"strings"
	"time"
)

// Expression engine names accepted by NewEvaluator and rule set files.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// RuleContext carries the inputs of one tag rule expression. Expressions
// see value, tag, args and now.
type RuleContext struct {
	Tag   string
	Value string
	Args  map[string]any
	Now   *time.Time
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) binding() map[string]any {
	ctx = ctx.withDefaults()
	return map[string]any{
		"value": ctx.Value,
		"tag":   ctx.Tag,
		"args":  ctx.Args,
		"now":   *ctx.Now,
	}
}

// Evaluator compiles and runs rule expressions for one engine.
type Evaluator interface {
	Engine() string
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a compiled expression, safe to evaluate repeatedly.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

type evaluatorConfig struct {
	cache ProgramCache
}

// EvaluatorOption configures the built-in evaluators.
type EvaluatorOption func(*evaluatorConfig)

// WithProgramCache reuses compiled programs across Compile calls. One cache
// may serve several engines; keys carry the engine name.
func WithProgramCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		cfg.cache = cache
	}
}

func newEvaluatorConfig(opts []EvaluatorOption) evaluatorConfig {
	var cfg evaluatorConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// NewEvaluator returns the evaluator for engine. An empty engine selects
// expr. The js engine needs the js_eval build tag.
func NewEvaluator(engine string, opts ...EvaluatorOption) (Evaluator, error) {
	switch engine {
	case "", EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		return NewJSEvaluator(opts...)
	default:
		return nil, engineError(engine, errUnknownEngine)
	}
}

// programEvaluator is shared by every engine: each supplies how to compile
// an expression into a program P and how to run P.
type programEvaluator[P any] struct {
	name    string
	cache   ProgramCache
	compile func(expression string) (P, error)
	run     func(program P, ctx RuleContext) (any, error)
}

func (e *programEvaluator[P]) Engine() string { return e.name }

func (e *programEvaluator[P]) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *programEvaluator[P]) Compile(expression string) (CompiledRule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &EvaluationError{Engine: e.name, Phase: PhaseCompile, Err: errEmptyExpression}
	}

	key := e.name + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return &compiledProgram[P]{evaluator: e, expression: expression, program: program}, nil
			}
		}
	}
	program, err := e.compile(expression)
	if err != nil {
		return nil, &EvaluationError{Engine: e.name, Phase: PhaseCompile, Expr: expression, Err: err}
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return &compiledProgram[P]{evaluator: e, expression: expression, program: program}, nil
}

type compiledProgram[P any] struct {
	evaluator  *programEvaluator[P]
	expression string
	program    P
}

func (c *compiledProgram[P]) Evaluate(ctx RuleContext) (any, error) {
	result, err := c.evaluator.run(c.program, ctx)
	if err != nil {
		return nil, &EvaluationError{
			Engine: c.evaluator.name,
			Phase:  PhaseEvaluate,
			Tag:    ctx.Tag,
			Expr:   c.expression,
			Err:    err,
		}
	}
	return result, nil
}
