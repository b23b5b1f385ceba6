package flexconf

import (
	"errors"
	"fmt"
)

var (
	// ErrDiscovery is matched by every *DiscoveryError.
	ErrDiscovery = errors.New("flexconf: discovery failed")
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("flexconf: parse failed")
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("flexconf: configuration error")
	// ErrMapping is matched by every *MappingError.
	ErrMapping = errors.New("flexconf: tag mapping failed")

	// ErrAlreadyLoaded is returned when Load runs twice on one Resolver.
	ErrAlreadyLoaded = errors.New("flexconf: resolver already loaded")
	// ErrNotLoaded is returned by reads before a successful Load.
	ErrNotLoaded = errors.New("flexconf: resolver not loaded")
	// ErrNamespaceNotFound is returned when no layer defines a namespace.
	ErrNamespaceNotFound = errors.New("flexconf: namespace not found")
	// ErrPathNotFound is returned when no layer sets a path.
	ErrPathNotFound = errors.New("flexconf: path not found")
)

// DiscoveryError reports a configuration root that is not a readable
// directory, or a directory entry that is neither a file nor a directory.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("flexconf: discovery %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *DiscoveryError) Is(target error) bool { return target == ErrDiscovery }

// ParseError reports a fragment that could not be read or decoded.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Format == "" {
		return fmt.Sprintf("flexconf: read %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("flexconf: parse %s as %s: %v", e.Path, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ConfigurationError reports a fragment carrying a tag that has no rule in
// the registry. Parsed fragments never hit this; it guards fragments built by
// hand with NewFragment.
type ConfigurationError struct {
	Path string
	Tag  string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("flexconf: fragment %s: no rule registered for tag %q", e.Path, e.Tag)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MappingError reports a tag value rejected by its rule's normalization.
type MappingError struct {
	Path  string
	Tag   string
	Value string
	Err   error
}

func (e *MappingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("flexconf: fragment %s: tag %q value %q: %v", e.Path, e.Tag, e.Value, e.Err)
}

func (e *MappingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *MappingError) Is(target error) bool { return target == ErrMapping }
