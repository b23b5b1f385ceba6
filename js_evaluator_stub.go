//go:build !js_eval

package flexconf

// NewJSEvaluator reports that the js engine is not compiled in. Build with
// -tags js_eval to enable it.
func NewJSEvaluator(...EvaluatorOption) (Evaluator, error) {
	return nil, engineError(EngineJS, errJSUnavailable)
}
