package flexconf

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goliatone/go-flexconf/layering"
	"github.com/goliatone/go-flexconf/pkg/activity"
	"github.com/goliatone/go-flexconf/pkg/sources"
	"github.com/google/uuid"
)

// Layer names of the non-file layers.
const (
	LayerArgv     = "argv"
	LayerEnv      = "env"
	LayerDefaults = "defaults"
)

// LoadedFragment is an included fragment with its score and the index of
// the layer holding its content.
type LoadedFragment struct {
	Fragment *Fragment
	Score    float64
	Layer    int
}

// Resolver discovers the fragments under one root, filters and orders them
// with a tag registry and merges them below the argv and env layers. A
// Resolver resolves once; build a new one to pick up file changes.
type Resolver struct {
	root     string
	registry *TagRegistry
	cfg      config
	runID    string
	emitter  *activity.Emitter

	// external holds the argv and env layers registered by New.
	external *layering.Store

	store     *layering.Store
	fragments []LoadedFragment
	excluded  []*Fragment
	loaded    bool
}

// New creates a Resolver for root. The argv and env layers are registered
// immediately so they outrank every file. Unless WithAutoload(false) is
// given, Load runs before New returns.
func New(root string, registry *TagRegistry, opts ...Option) (*Resolver, error) {
	if registry == nil {
		registry = NewTagRegistry()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	cfg := applyOptions(opts)
	r := &Resolver{
		root:     root,
		registry: registry,
		cfg:      cfg,
		runID:    uuid.NewString(),
		emitter:  activity.NewEmitter(cfg.activityHooks, activity.WithChannel(cfg.activityChannel)),
		external: layering.NewStore(),
	}

	if cfg.parseArgv {
		tree := sources.Argv(cfg.args, sources.ArgvOptions{ParseValues: cfg.parseValues})
		if err := r.external.Add(layering.Layer{Name: LayerArgv, Kind: layering.KindArgv, Tree: tree}); err != nil {
			return nil, err
		}
	}
	if cfg.parseEnv {
		tree := sources.Env(cfg.environ, sources.EnvOptions{
			Separator:   cfg.separator,
			LowerCase:   cfg.lowerCase,
			ParseValues: cfg.parseValues,
			Prefix:      cfg.envPrefix,
		})
		if err := r.external.Add(layering.Layer{Name: LayerEnv, Kind: layering.KindEnv, Tree: tree}); err != nil {
			return nil, err
		}
	}

	if cfg.autoload {
		if err := r.Load(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Root returns the absolute configuration root.
func (r *Resolver) Root() string { return r.root }

// RunID identifies this resolution in logs and activity events.
func (r *Resolver) RunID() string { return r.runID }

// Load runs the resolution with a background context.
func (r *Resolver) Load() error {
	return r.LoadContext(context.Background())
}

// LoadContext discovers, parses, filters, orders and merges the fragments.
// Any failure aborts the run and leaves the Resolver unloaded. ctx is passed
// to activity hooks.
func (r *Resolver) LoadContext(ctx context.Context) error {
	if r.loaded {
		return ErrAlreadyLoaded
	}
	started := time.Now()

	candidates, excluded, err := r.collect()
	if err != nil {
		r.log(ResolveLogEvent{Stage: StageResolve, Path: r.root, Duration: time.Since(started), Err: err})
		return err
	}

	store := layering.NewStore()
	for _, layer := range r.external.Layers() {
		if err := store.Add(layer); err != nil {
			return err
		}
	}
	loaded := make([]LoadedFragment, 0, len(candidates))
	for _, candidate := range candidates {
		tree, err := r.decode(candidate.Fragment)
		if err != nil {
			return err
		}
		layer := layering.Layer{
			Name:  candidate.Fragment.Path,
			Kind:  layering.KindFile,
			Tree:  map[string]any{candidate.Fragment.Namespace: tree},
			Score: candidate.Score,
		}
		if err := store.Add(layer); err != nil {
			return err
		}
		candidate.Layer = store.Len() - 1
		loaded = append(loaded, candidate)
	}
	if len(r.cfg.defaults) > 0 {
		if err := store.Add(layering.Layer{Name: LayerDefaults, Kind: layering.KindLiteral, Tree: r.cfg.defaults}); err != nil {
			return err
		}
	}

	r.store = store
	r.fragments = loaded
	r.excluded = excluded
	r.loaded = true
	r.log(ResolveLogEvent{Stage: StageResolve, Path: r.root, Duration: time.Since(started)})
	r.emitLoad(ctx)
	return nil
}

// collect discovers and parses fragments, then splits them into included
// candidates, ordered by descending score, and excluded fragments.
func (r *Resolver) collect() ([]LoadedFragment, []*Fragment, error) {
	started := time.Now()
	paths, err := ListFiles(r.root, r.cfg.postfix, r.cfg.recursive)
	r.log(ResolveLogEvent{Stage: StageDiscover, Path: r.root, Duration: time.Since(started), Err: err})
	if err != nil {
		return nil, nil, err
	}

	parseOpts := r.cfg.parseOptions(r.root)
	var candidates []LoadedFragment
	var excluded []*Fragment
	for _, path := range paths {
		fragment, err := ParseFragment(path, r.registry, parseOpts)
		if err != nil {
			r.log(ResolveLogEvent{Stage: StageParse, Path: path, Err: err})
			return nil, nil, err
		}
		include, err := fragment.Applies()
		if err != nil {
			r.log(ResolveLogEvent{Stage: StageFilter, Path: path, Namespace: fragment.Namespace, Tags: fragment.Tags, Err: err})
			return nil, nil, err
		}
		score, err := fragment.Score()
		if err != nil {
			r.log(ResolveLogEvent{Stage: StageFilter, Path: path, Namespace: fragment.Namespace, Tags: fragment.Tags, Err: err})
			return nil, nil, err
		}
		r.log(ResolveLogEvent{Stage: StageFilter, Path: path, Namespace: fragment.Namespace, Score: score, Tags: fragment.Tags, Included: include})
		if !include {
			excluded = append(excluded, fragment)
			continue
		}
		candidates = append(candidates, LoadedFragment{Fragment: fragment, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, excluded, nil
}

func (r *Resolver) decode(fragment *Fragment) (any, error) {
	started := time.Now()
	fail := func(err error) (any, error) {
		r.log(ResolveLogEvent{Stage: StageLoad, Path: fragment.Path, Namespace: fragment.Namespace, Duration: time.Since(started), Err: err})
		return nil, err
	}

	c, err := r.cfg.codecs.ForPath(fragment.Path)
	if err != nil {
		return fail(&ParseError{Path: fragment.Path, Err: err})
	}
	data, err := os.ReadFile(fragment.Path)
	if err != nil {
		return fail(&ParseError{Path: fragment.Path, Err: err})
	}
	tree, err := c.Decode(data, fragment.Path)
	if err != nil {
		return fail(&ParseError{Path: fragment.Path, Format: c.Name(), Err: err})
	}
	r.log(ResolveLogEvent{Stage: StageLoad, Path: fragment.Path, Namespace: fragment.Namespace, Tags: fragment.Tags, Duration: time.Since(started)})
	return tree, nil
}

func (r *Resolver) log(event ResolveLogEvent) {
	r.cfg.logger.LogResolve(event)
}

func (r *Resolver) eventInput() activity.ResolveEventInput {
	return activity.ResolveEventInput{
		ActorID:  r.cfg.actorID,
		TenantID: r.cfg.tenantID,
		RunID:    r.runID,
		Root:     r.root,
	}
}

// emitLoad reports the run to activity hooks. Hook failures are logged and
// do not fail the resolution.
func (r *Resolver) emitLoad(ctx context.Context) {
	if !r.emitter.Enabled() {
		return
	}
	emit := func(event activity.Event) {
		if err := r.emitter.Emit(ctx, event); err != nil {
			r.log(ResolveLogEvent{Stage: StageResolve, Path: event.Object.ID, Err: err})
		}
	}
	for _, fragment := range r.excluded {
		input := r.eventInput()
		input.Path = fragment.Path
		input.Namespace = fragment.Namespace
		input.Tags = fragment.Tags
		emit(activity.BuildFragmentSkippedEvent(input))
	}
	for _, loaded := range r.fragments {
		input := r.eventInput()
		input.Path = loaded.Fragment.Path
		input.Namespace = loaded.Fragment.Namespace
		input.Tags = loaded.Fragment.Tags
		input.Score = loaded.Score
		emit(activity.BuildFragmentLoadedEvent(input))
	}
	input := r.eventInput()
	input.Fragments = len(r.fragments)
	emit(activity.BuildResolvedEvent(input))
}
