package flexconf

import (
	"os"
	"strings"

	"github.com/goliatone/go-flexconf/pkg/activity"
	"github.com/goliatone/go-flexconf/pkg/codec"
	"github.com/goliatone/go-flexconf/pkg/sources"
)

// DefaultPostfix is the file suffix discovered when none is configured.
const DefaultPostfix = "json"

// Option configures a Resolver.
type Option func(*config)

type config struct {
	recursive       bool
	folderTags      bool
	postfix         string
	parseArgv       bool
	parseEnv        bool
	separator       string
	tagSeparator    string
	keyValSeparator string
	lowerCase       bool
	parseValues     bool
	envPrefix       string
	autoload        bool

	args     []string
	environ  []string
	defaults map[string]any

	codecs          *codec.Registry
	logger          ResolveLogger
	activityHooks   activity.Hooks
	activityChannel string
	actorID         string
	tenantID        string
}

func defaultConfig() config {
	return config{
		recursive:       true,
		folderTags:      true,
		postfix:         DefaultPostfix,
		parseArgv:       true,
		parseEnv:        true,
		separator:       sources.DefaultEnvSeparator,
		tagSeparator:    DefaultTagSeparator,
		keyValSeparator: DefaultKeyValSeparator,
		lowerCase:       true,
		autoload:        true,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.args == nil && len(os.Args) > 1 {
		cfg.args = os.Args[1:]
	}
	if cfg.environ == nil {
		cfg.environ = os.Environ()
	}
	if cfg.codecs == nil {
		cfg.codecs = codec.Default()
	}
	if cfg.logger == nil {
		cfg.logger = noopResolveLogger{}
	}
	return cfg
}

func (c config) parseOptions(root string) ParseOptions {
	return ParseOptions{
		Root:            root,
		FolderTags:      c.folderTags,
		TagSeparator:    c.tagSeparator,
		KeyValSeparator: c.keyValSeparator,
	}
}

// WithRecursive toggles descending into sub-directories. Default true.
func WithRecursive(recursive bool) Option {
	return func(cfg *config) {
		cfg.recursive = recursive
	}
}

// WithFolderTags toggles reading tags from directory names. Default true.
func WithFolderTags(enabled bool) Option {
	return func(cfg *config) {
		cfg.folderTags = enabled
	}
}

// WithPostfix sets the file suffix to discover, without the dot. An empty
// postfix discovers every file; each must then have a registered codec.
func WithPostfix(postfix string) Option {
	return func(cfg *config) {
		cfg.postfix = strings.TrimPrefix(postfix, ".")
	}
}

// WithArgv toggles the command-line argument layer. Default true.
func WithArgv(enabled bool) Option {
	return func(cfg *config) {
		cfg.parseArgv = enabled
	}
}

// WithEnv toggles the environment variable layer. Default true.
func WithEnv(enabled bool) Option {
	return func(cfg *config) {
		cfg.parseEnv = enabled
	}
}

// WithSeparator sets the token nesting environment variable keys. Default "__".
func WithSeparator(separator string) Option {
	return func(cfg *config) {
		if separator != "" {
			cfg.separator = separator
		}
	}
}

// WithTagSeparator sets the file name field separator. Default ".".
func WithTagSeparator(separator string) Option {
	return func(cfg *config) {
		if separator != "" {
			cfg.tagSeparator = separator
		}
	}
}

// WithKeyValSeparator sets the tag key/value separator. Default "-".
func WithKeyValSeparator(separator string) Option {
	return func(cfg *config) {
		if separator != "" {
			cfg.keyValSeparator = separator
		}
	}
}

// WithLowerCase toggles lower-casing environment variable keys. Default true.
func WithLowerCase(enabled bool) Option {
	return func(cfg *config) {
		cfg.lowerCase = enabled
	}
}

// WithParseValues converts argv and env literals such as true or 42 into
// typed values. Default false.
func WithParseValues(enabled bool) Option {
	return func(cfg *config) {
		cfg.parseValues = enabled
	}
}

// WithEnvPrefix keeps only environment variables starting with prefix and
// strips it from their keys.
func WithEnvPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.envPrefix = prefix
	}
}

// WithArgs sets the arguments parsed into the argv layer. Defaults to
// os.Args[1:].
func WithArgs(args []string) Option {
	return func(cfg *config) {
		cfg.args = append([]string{}, args...)
	}
}

// WithEnviron sets the KEY=value entries parsed into the env layer. Defaults
// to os.Environ().
func WithEnviron(environ []string) Option {
	return func(cfg *config) {
		cfg.environ = append([]string{}, environ...)
	}
}

// WithDefaults adds tree as the lowest precedence layer.
func WithDefaults(tree map[string]any) Option {
	return func(cfg *config) {
		cfg.defaults = tree
	}
}

// WithAutoload toggles running Load from New. Default true.
func WithAutoload(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoload = enabled
	}
}

// WithCodecs sets the codecs used to decode fragments by extension.
func WithCodecs(registry *codec.Registry) Option {
	return func(cfg *config) {
		cfg.codecs = registry
	}
}

// WithLogger attaches a resolution logger.
func WithLogger(logger ResolveLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopResolveLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks notified about loaded, skipped
// and saved fragments. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	compacted := hooks.Compact()
	return func(cfg *config) {
		cfg.activityHooks = compacted
	}
}

// WithActivityChannel sets the channel of activity events. The default is
// activity.DefaultChannel.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.activityChannel = channel
	}
}

// WithActivityActor sets the actor and tenant stamped on activity events.
func WithActivityActor(actorID, tenantID string) Option {
	return func(cfg *config) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}
