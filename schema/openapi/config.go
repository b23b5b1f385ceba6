package openapi

import "strings"

// Info is the document's info block. Title and Version are required by
// OpenAPI and default to "Resolved Configuration" and "1.0.0".
type Info struct {
	Title       string
	Version     string
	Description string
}

// Option configures Generate.
type Option func(*settings)

type settings struct {
	version     string
	info        Info
	servers     []string
	basePath    string
	contentType string
	examples    bool
}

func newSettings(opts []Option) settings {
	s := settings{
		version:     "3.0.3",
		info:        Info{Title: "Resolved Configuration", Version: "1.0.0"},
		basePath:    "/config",
		contentType: "application/json",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithOpenAPIVersion sets the openapi field, 3.0.3 by default.
func WithOpenAPIVersion(version string) Option {
	return func(s *settings) {
		if version != "" {
			s.version = version
		}
	}
}

// WithInfo merges the non-empty fields of info into the info block.
func WithInfo(info Info) Option {
	return func(s *settings) {
		if info.Title != "" {
			s.info.Title = info.Title
		}
		if info.Version != "" {
			s.info.Version = info.Version
		}
		if info.Description != "" {
			s.info.Description = info.Description
		}
	}
}

// WithServer adds a server URL, for example the address of a service that
// exposes the resolved configuration.
func WithServer(url string) Option {
	return func(s *settings) {
		if url = strings.TrimRight(url, "/"); url != "" {
			s.servers = append(s.servers, url)
		}
	}
}

// WithBasePath prefixes every path, /config by default.
func WithBasePath(path string) Option {
	return func(s *settings) {
		if path = strings.Trim(path, "/"); path != "" {
			s.basePath = "/" + path
		}
	}
}

// WithContentType sets the media type of every response.
func WithContentType(contentType string) Option {
	return func(s *settings) {
		if contentType != "" {
			s.contentType = contentType
		}
	}
}

// WithExamples copies every resolved scalar into its schema as an example.
func WithExamples(enabled bool) Option {
	return func(s *settings) {
		s.examples = enabled
	}
}
