/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: manager.go
Description: Plugin manager. Holds explicitly registered plugins, sorts them by the
capabilities they implement and isolates plugin failures so a broken plugin is logged
and skipped rather than taking the host down.
*/

package plugins

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/logging"
)

// ErrDuplicatePlugin is returned when a plugin name is registered twice
var ErrDuplicatePlugin = errors.New("plugin already registered")

// Manager tracks loaded plugins by capability
type Manager struct {
	loaded      []Plugin
	analyzers   []AnalyzerPlugin
	visualizers []VisualizationPlugin
	exporters   []ExportPlugin
	logger      *logrus.Logger
	mu          sync.RWMutex
}

// NewManager creates an empty plugin manager. A nil logger discards log output.
func NewManager(logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{logger: logger}
}

// RegisterPlugin initializes a plugin and files it under every capability it has.
// A plugin whose Initialize fails is not registered.
func (m *Manager) RegisterPlugin(p Plugin) error {
	if p == nil {
		return fmt.Errorf("nil plugin")
	}

	log := m.logger.WithFields(logrus.Fields{
		"component": "plugins",
		"plugin":    p.Name(),
		"version":   p.Version(),
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.loaded {
		if existing.Name() == p.Name() {
			return fmt.Errorf("%s: %w", p.Name(), ErrDuplicatePlugin)
		}
	}

	if err := guard(p.Initialize); err != nil {
		log.WithError(err).Warn("Failed to initialize plugin")
		return fmt.Errorf("failed to initialize plugin %s: %w", p.Name(), err)
	}

	m.loaded = append(m.loaded, p)
	if a, ok := p.(AnalyzerPlugin); ok {
		m.analyzers = append(m.analyzers, a)
	}
	if v, ok := p.(VisualizationPlugin); ok {
		m.visualizers = append(m.visualizers, v)
	}
	if e, ok := p.(ExportPlugin); ok {
		m.exporters = append(m.exporters, e)
	}

	log.WithField("author", p.Author()).Debug("Plugin loaded")
	return nil
}

// Analyzers creates one analyzer per analyzer plugin. Factories that fail are logged
// and skipped.
func (m *Manager) Analyzers() []core.Analyzer {
	m.mu.RLock()
	plugins := append([]AnalyzerPlugin(nil), m.analyzers...)
	m.mu.RUnlock()

	out := make([]core.Analyzer, 0, len(plugins))
	for _, p := range plugins {
		var a core.Analyzer
		err := guard(func() error {
			var err error
			a, err = p.CreateAnalyzer()
			return err
		})
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"component": "plugins",
				"plugin":    p.Name(),
			}).WithError(err).Warn("Failed to create analyzer from plugin")
			continue
		}
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// VisualizationPlugins returns the registered visualization plugins
func (m *Manager) VisualizationPlugins() []VisualizationPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]VisualizationPlugin(nil), m.visualizers...)
}

// ExportPlugins returns the registered export plugins
func (m *Manager) ExportPlugins() []ExportPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ExportPlugin(nil), m.exporters...)
}

// ExportPlugin returns the first export plugin supporting format, matched
// case-insensitively, or nil
func (m *Manager) ExportPlugin(format string) ExportPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.exporters {
		for _, f := range e.SupportedFormats() {
			if strings.EqualFold(f, format) {
				return e
			}
		}
	}
	return nil
}

// VisualizationPlugin returns the visualization plugin with the given name, or nil
func (m *Manager) VisualizationPlugin(name string) VisualizationPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.visualizers {
		if strings.EqualFold(v.Name(), name) {
			return v
		}
	}
	return nil
}

// Loaded returns every registered plugin in registration order
func (m *Manager) Loaded() []Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Plugin(nil), m.loaded...)
}

// UnloadAll shuts every plugin down and clears the registry. Shutdown failures are
// logged and do not stop the others.
func (m *Manager) UnloadAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.loaded {
		if err := guard(p.Shutdown); err != nil {
			m.logger.WithFields(logrus.Fields{
				"component": "plugins",
				"plugin":    p.Name(),
			}).WithError(err).Warn("Error shutting down plugin")
		}
	}

	m.loaded = nil
	m.analyzers = nil
	m.visualizers = nil
	m.exporters = nil
}

// LoadBuiltins registers the named built-in plugins. Unknown names and failed
// registrations are collected into the returned error; the rest still load.
func (m *Manager) LoadBuiltins(names []string) error {
	var errs []error
	for _, name := range names {
		p, err := NewBuiltin(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.RegisterPlugin(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// guard runs fn and converts a panic into an error
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
