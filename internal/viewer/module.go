package viewer

import (
	"fmt"
)

// Module is the handle the external rendering module hands back once it is
// ready. These are the only operations the bootstrap issues on it.
type Module interface {
	// SetCubemapBackground sets a background texture by source identifier.
	SetCubemapBackground(src string) error

	// OpenFromURL opens a model from a source location under a symbolic name.
	OpenFromURL(name, url string) error
}

// Runtime starts the external module.
type Runtime interface {
	// Start hands cfg to the module initializer and returns without waiting
	// for startup to complete. Completion is reported later through
	// cfg.NotifyReady or cfg.NotifyFailed, exactly once.
	Start(cfg *ModuleConfig) error
}

// RuntimeFunc adapts a function to Runtime.
type RuntimeFunc func(cfg *ModuleConfig) error

func (f RuntimeFunc) Start(cfg *ModuleConfig) error { return f(cfg) }

// ModelSource is a model to open after startup.
type ModelSource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Startup lists the optional commands issued once the module is ready.
type Startup struct {
	Background string        `json:"background,omitempty"`
	Models     []ModelSource `json:"models,omitempty"`
}

// Empty reports whether there is nothing to run.
func (s Startup) Empty() bool {
	return s.Background == "" && len(s.Models) == 0
}

// Apply issues the startup commands in order: background first, then each
// model. It stops at the first failure and returns the models that were
// opened before it.
func (s Startup) Apply(m Module) ([]ModelSource, error) {
	if s.Background != "" {
		if err := m.SetCubemapBackground(s.Background); err != nil {
			return nil, fmt.Errorf("%w: setting background %q: %w", ErrStartupCommand, s.Background, err)
		}
	}
	opened := make([]ModelSource, 0, len(s.Models))
	for _, src := range s.Models {
		if err := m.OpenFromURL(src.Name, src.URL); err != nil {
			return opened, fmt.Errorf("%w: opening %q from %s: %w", ErrStartupCommand, src.Name, src.URL, err)
		}
		Logger().Info("model requested", "name", src.Name, "url", src.URL)
		opened = append(opened, src)
	}
	return opened, nil
}
