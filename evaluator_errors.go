package flexconf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errEmptyExpression = errors.New("expression must not be empty")
	errUnknownEngine   = errors.New("unknown expression engine")
	errJSUnavailable   = errors.New("js engine requires the js_eval build tag")
)

// Phases reported by EvaluationError.
const (
	PhaseCompile  = "compile"
	PhaseEvaluate = "evaluate"
)

// EvaluationError reports a rule expression that failed to compile or to
// evaluate.
type EvaluationError struct {
	Engine string
	Phase  string
	Tag    string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	var b strings.Builder
	b.WriteString("flexconf: ")
	b.WriteString(e.Engine)
	if e.Phase != "" {
		b.WriteString(" " + e.Phase)
	}
	if e.Tag != "" {
		b.WriteString(" tag " + e.Tag)
	}
	if e.Expr != "" {
		fmt.Fprintf(&b, " %q", e.Expr)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// withRuleContext returns err as an EvaluationError naming tag and
// expression. Fields already set on an EvaluationError are kept; the
// original error value is not modified.
func withRuleContext(err error, engine, expression, tag string) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Tag: tag, Expr: expression, Err: err}
	}
	annotated := *evalErr
	if annotated.Engine == "" {
		annotated.Engine = engine
	}
	if annotated.Tag == "" {
		annotated.Tag = tag
	}
	if annotated.Expr == "" {
		annotated.Expr = expression
	}
	return &annotated
}

func engineError(engine string, err error) error {
	return fmt.Errorf("flexconf: engine %q: %w", engine, err)
}
