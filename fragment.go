package flexconf

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultTagSeparator splits a file name into namespace and tags.
	DefaultTagSeparator = "."
	// DefaultKeyValSeparator splits a tag into key and value.
	DefaultKeyValSeparator = "-"
)

// ParseOptions controls how a file path becomes a Fragment.
type ParseOptions struct {
	// Root is the configuration root. Directories between Root and the file
	// contribute tags when FolderTags is set.
	Root            string
	FolderTags      bool
	TagSeparator    string
	KeyValSeparator string
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.TagSeparator == "" {
		o.TagSeparator = DefaultTagSeparator
	}
	if o.KeyValSeparator == "" {
		o.KeyValSeparator = DefaultKeyValSeparator
	}
	return o
}

// Fragment is one configuration file reduced to its namespace and the tags
// found in its name and enclosing folders. Tags only holds keys registered
// in the registry the fragment was built with.
type Fragment struct {
	Path      string
	Namespace string
	Tags      map[string]string

	registry *TagRegistry
}

// NewFragment builds a fragment directly, without parsing a file name. Tags
// are taken as given, so a key missing from registry surfaces as a
// *ConfigurationError from Applies or Score.
func NewFragment(path, namespace string, tags map[string]string, registry *TagRegistry) *Fragment {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return &Fragment{
		Path:      path,
		Namespace: namespace,
		Tags:      copied,
		registry:  registry,
	}
}

// ParseFragment derives namespace and tags from path.
//
// The base name is split on the tag separator and its last segment dropped.
// The first remaining segment is the namespace; each other segment is split
// at the first key/value separator. Segments whose key has no rule are
// ignored. With folder tags enabled every directory between the root and
// the file is read the same way. A file name tag wins over a folder tag with
// the same key, and a deeper folder wins over a shallower one.
func ParseFragment(path string, registry *TagRegistry, opts ParseOptions) (*Fragment, error) {
	opts = opts.withDefaults()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	segments := strings.Split(filepath.Base(path), opts.TagSeparator)
	if len(segments) > 1 {
		segments = segments[:len(segments)-1]
	}

	fragment := &Fragment{
		Path:      path,
		Namespace: segments[0],
		Tags:      map[string]string{},
		registry:  registry,
	}

	if opts.FolderTags {
		for _, folder := range folderSegments(opts.Root, path) {
			if err := fragment.addTag(folder, opts.KeyValSeparator); err != nil {
				return nil, err
			}
		}
	}
	for _, segment := range segments[1:] {
		if err := fragment.addTag(segment, opts.KeyValSeparator); err != nil {
			return nil, err
		}
	}
	return fragment, nil
}

func (f *Fragment) addTag(segment, separator string) error {
	key, value, _ := strings.Cut(segment, separator)
	rule, ok := f.registry.Lookup(key)
	if !ok {
		return nil
	}
	normalized, err := rule.Normalize(value)
	if err != nil {
		return &MappingError{Path: f.Path, Tag: key, Value: value, Err: err}
	}
	f.Tags[key] = normalized
	return nil
}

func folderSegments(root, path string) []string {
	if root == "" {
		return nil
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}

// Applies reports whether every tag's rule accepts the tag value. A
// fragment without tags always applies.
func (f *Fragment) Applies() (bool, error) {
	for _, key := range sortedKeys(f.Tags) {
		rule, err := f.rule(key)
		if err != nil {
			return false, err
		}
		ok, err := rule.Applies(f.Tags[key])
		if err != nil {
			return false, fmt.Errorf("flexconf: fragment %s: tag %q applies: %w", f.Path, key, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Score sums the weight of every tag. Keys are visited in sorted order so
// the float sum is the same on every run.
func (f *Fragment) Score() (float64, error) {
	var score float64
	for _, key := range sortedKeys(f.Tags) {
		rule, err := f.rule(key)
		if err != nil {
			return 0, err
		}
		weight, err := rule.Weight(f.Tags[key])
		if err != nil {
			return 0, fmt.Errorf("flexconf: fragment %s: tag %q weight: %w", f.Path, key, err)
		}
		score += weight
	}
	return score, nil
}

func (f *Fragment) rule(key string) (TagRule, error) {
	rule, ok := f.registry.Lookup(key)
	if !ok {
		return nil, &ConfigurationError{Path: f.Path, Tag: key}
	}
	return rule, nil
}

// String renders the fragment as namespace[key=value,...] path.
func (f *Fragment) String() string {
	parts := make([]string, 0, len(f.Tags))
	for _, key := range sortedKeys(f.Tags) {
		parts = append(parts, key+"="+f.Tags[key])
	}
	return fmt.Sprintf("%s[%s] %s", f.Namespace, strings.Join(parts, ","), f.Path)
}
