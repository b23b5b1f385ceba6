package flexconf

import (
	"time"

	"go.uber.org/zap"
)

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Tag      string
	Value    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// Resolution stages reported through ResolveLogger.
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StageFilter   = "filter"
	StageLoad     = "load"
	StageResolve  = "resolve"
	StageSave     = "save"
)

// ResolveLogEvent describes one step of a resolution run.
type ResolveLogEvent struct {
	Stage     string
	Path      string
	Namespace string
	Score     float64
	Tags      map[string]string
	Included  bool
	Duration  time.Duration
	Err       error
}

// ResolveLogger records resolution events.
type ResolveLogger interface {
	LogResolve(ResolveLogEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveLogEvent)

// LogResolve implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolve(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolve(ResolveLogEvent) {}

// ZapLogger writes evaluator and resolution events to a zap logger. Failed
// steps log at warn level, everything else at debug.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger discards events.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger.Named("flexconf")}
}

// LogEvaluation implements EvaluatorLogger.
func (l *ZapLogger) LogEvaluation(event EvaluatorLogEvent) {
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("expr", event.Expr),
		zap.String("tag", event.Tag),
		zap.String("value", event.Value),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		l.logger.Warn("rule evaluation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("rule evaluated", fields...)
}

// LogResolve implements ResolveLogger.
func (l *ZapLogger) LogResolve(event ResolveLogEvent) {
	fields := []zap.Field{
		zap.String("stage", event.Stage),
		zap.Duration("duration", event.Duration),
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.Namespace != "" {
		fields = append(fields, zap.String("namespace", event.Namespace), zap.Float64("score", event.Score))
	}
	if len(event.Tags) > 0 {
		fields = append(fields, zap.Any("tags", event.Tags))
	}
	if event.Stage == StageFilter {
		fields = append(fields, zap.Bool("included", event.Included))
	}
	if event.Err != nil {
		l.logger.Warn("resolution step failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.logger.Debug("resolution step", fields...)
}
