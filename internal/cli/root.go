// Package cli implements the flexconf command line tool.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	flexconf "github.com/goliatone/go-flexconf"
)

// EnvPrefix is the prefix of environment variables that set global flags,
// for example FLEXCONF_ROOT or FLEXCONF_RULES.
const EnvPrefix = "FLEXCONF"

// Global flag names.
const (
	flagRoot       = "root"
	flagRules      = "rules"
	flagPostfix    = "postfix"
	flagRecursive  = "recursive"
	flagFolderTags = "folder-tags"
	flagArg        = "arg"
	flagEngine     = "engine"
	flagEnvPrefix  = "env-prefix"
	flagNoEnv      = "no-env"
	flagParse      = "parse-values"
	flagVerbose    = "verbose"
)

type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
	// argv holds the arguments after "--"; they become the argv layer.
	argv []string
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "flexconf",
		Short: "Resolve tagged configuration fragments",
		Long: `flexconf discovers configuration fragments under a root directory,
keeps the ones whose tags apply, orders them by score and merges them below
environment variables and command-line arguments.

A fragment file name reads <namespace>.<key>-<value>...<ext>, for example
database.env-prod.json. Tag rules are loaded from a rule set file (--rules).

Arguments after "--" are parsed into the argv layer:
  flexconf resolve database -- --database.port=6543`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String(flagRoot, ".", "configuration root directory")
	flags.String(flagRules, "", "rule set file (json, yaml, toml or cue)")
	flags.String(flagPostfix, flexconf.DefaultPostfix, "fragment file suffix; empty keeps every file")
	flags.Bool(flagRecursive, true, "descend into sub-directories")
	flags.Bool(flagFolderTags, true, "read tags from directory names")
	flags.StringArray(flagArg, nil, "rule argument as key=value, repeatable")
	flags.String(flagEngine, "", "expression engine overriding the rule set (expr, cel, js)")
	flags.String(flagEnvPrefix, "", "only read environment variables with this prefix")
	flags.Bool(flagNoEnv, false, "skip the environment variable layer")
	flags.Bool(flagParse, false, "parse true, false, null and numbers in env and argv values")
	flags.BoolP(flagVerbose, "v", false, "log every resolution step to stderr")

	root.AddCommand(
		newResolveCommand(a),
		newFragmentsCommand(a),
		newTraceCommand(a),
		newSaveCommand(a),
		newDescribeCommand(a),
	)
	return root
}

// Execute runs the command line with the process arguments.
func Execute() int {
	cmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	level := log.InfoLevel
	if a.v.GetBool(flagVerbose) {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix: "flexconf",
		Level:  level,
	})
	return nil
}

// positional splits args at "--": the head is the command's own arguments
// and the tail feeds the argv layer.
func (a *app) positional(cmd *cobra.Command, args []string) []string {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		a.argv = append([]string{}, args[dash:]...)
		return args[:dash]
	}
	return args
}

func (a *app) resolver() (*flexconf.Resolver, error) {
	registry, err := a.registry()
	if err != nil {
		return nil, err
	}

	opts := []flexconf.Option{
		flexconf.WithPostfix(a.v.GetString(flagPostfix)),
		flexconf.WithRecursive(a.v.GetBool(flagRecursive)),
		flexconf.WithFolderTags(a.v.GetBool(flagFolderTags)),
		flexconf.WithArgs(a.argv),
		flexconf.WithEnv(!a.v.GetBool(flagNoEnv)),
		flexconf.WithEnvPrefix(a.v.GetString(flagEnvPrefix)),
		flexconf.WithParseValues(a.v.GetBool(flagParse)),
		flexconf.WithLogger(flexconf.ResolveLoggerFunc(a.logResolve)),
	}
	return flexconf.New(a.v.GetString(flagRoot), registry, opts...)
}

func (a *app) registry() (*flexconf.TagRegistry, error) {
	path := a.v.GetString(flagRules)
	if path == "" {
		return flexconf.NewTagRegistry(), nil
	}
	set, err := flexconf.LoadRuleSet(path)
	if err != nil {
		return nil, err
	}
	if engine := a.v.GetString(flagEngine); engine != "" {
		set.Engine = engine
	}
	overrides, err := parseArgs(a.v.GetStringSlice(flagArg))
	if err != nil {
		return nil, err
	}
	return set.Registry(overrides, flexconf.WithRuleLogger(flexconf.EvaluatorLoggerFunc(a.logEvaluation)))
}

// parseArgs turns key=value pairs into rule arguments. Dotted keys nest.
func parseArgs(pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q, expected key=value", flagArg, pair)
		}
		node := out
		segments := strings.Split(key, ".")
		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[segment] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = value
	}
	return out, nil
}

func (a *app) logResolve(event flexconf.ResolveLogEvent) {
	keyvals := []any{"stage", event.Stage}
	if event.Path != "" {
		keyvals = append(keyvals, "path", event.Path)
	}
	if event.Namespace != "" {
		keyvals = append(keyvals, "namespace", event.Namespace, "score", event.Score)
	}
	if event.Stage == flexconf.StageFilter {
		keyvals = append(keyvals, "included", event.Included)
	}
	if event.Duration > 0 {
		keyvals = append(keyvals, "duration", event.Duration)
	}
	if event.Err != nil {
		a.logger.Warn("resolution step failed", append(keyvals, "err", event.Err)...)
		return
	}
	a.logger.Debug("resolution step", keyvals...)
}

func (a *app) logEvaluation(event flexconf.EvaluatorLogEvent) {
	keyvals := []any{"engine", event.Engine, "tag", event.Tag, "value", event.Value, "expr", event.Expr}
	if event.Err != nil {
		a.logger.Warn("rule evaluation failed", append(keyvals, "err", event.Err)...)
		return
	}
	a.logger.Debug("rule evaluated", keyvals...)
}
