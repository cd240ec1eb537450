package config

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/logging"
)

// Loader assembles the Environment for a set of bootstrap properties.
type Loader struct {
	props  *BootstrapProperties
	kv     discovery.KVReader
	system env.PropertySource
	logger logging.Logger

	parsed bool
	files  []string
	native []*env.MapPropertySource
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithKVReader sets the remote config backend.
func WithKVReader(kv discovery.KVReader) LoaderOption {
	return func(l *Loader) { l.kv = kv }
}

// WithSystemSource replaces the process environment source.
func WithSystemSource(src env.PropertySource) LoaderOption {
	return func(l *Loader) { l.system = src }
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader for props.
func NewLoader(props *BootstrapProperties, opts ...LoaderOption) *Loader {
	l := &Loader{
		props:  props,
		system: env.NewSystemEnvironment(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Native resolves and parses the native files for the active profiles.
// The result is kept for Load, so a malformed file can be reported before
// the environment is built.
func (l *Loader) Native() ([]string, error) {
	if l.parsed {
		return l.files, nil
	}
	if len(l.props.Application.Config.Activate.Profiles) == 0 {
		return nil, ErrNoActiveProfiles
	}

	files := ResolveNativeFiles(l.newEnvironment())
	sources := make([]*env.MapPropertySource, 0, len(files))
	for _, path := range files {
		src, err := LoadNativeSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	l.files, l.native, l.parsed = files, sources, true
	return files, nil
}

// Load builds the Environment. Sources, highest priority first: computed
// defaults, native files, remote documents (when enabled and a KV reader is
// set), then the process environment. It returns the native files used so
// they can be watched.
func (l *Loader) Load(ctx context.Context) (*env.Environment, []string, error) {
	files, err := l.Native()
	if err != nil {
		return nil, nil, err
	}

	e := l.newEnvironment()
	for i, src := range l.native {
		e.AddPropertySource(src)
		l.logger.Debug("Added config file", "path", files[i])
	}

	if l.props.Application.Cloud.Config.Enabled {
		if l.kv == nil {
			l.logger.Warn("Remote config enabled but no backend is available")
		} else {
			for _, src := range LoadRemoteSources(ctx, l.kv, l.props.Application.Name, e.ActiveProfiles(), l.logger) {
				e.AddPropertySource(src)
			}
		}
	}

	l.logger.Info("Environment built", "profiles", e.ActiveProfiles(), "sources", fmt.Sprint(e.SourceNames()))
	return e, files, nil
}

func (l *Loader) newEnvironment() *env.Environment {
	fc := l.props.Application.Config
	return env.New(
		[]env.PropertySource{l.props.DefaultPropertySource()},
		env.WithProfiles(fc.Activate.Profiles...),
		env.WithLocations(fc.Locations...),
		env.WithFileNames(fc.FileNames...),
		env.WithSystemSource(l.system),
	)
}
