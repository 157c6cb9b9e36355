/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: plugins_test.go
Description: Tests for the plugin manager and the built-in plugins.
*/

package plugins_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/plugins"
	"github.com/kleascm/hexaminer/pkg/reporting"
)

// brokenPlugin fails or panics at the configured lifecycle points
type brokenPlugin struct {
	plugins.Info
	initErr       error
	factoryPanics bool
	shutdownCalls *int
}

func (p *brokenPlugin) Initialize() error { return p.initErr }

func (p *brokenPlugin) Shutdown() error {
	if p.shutdownCalls != nil {
		*p.shutdownCalls++
	}
	panic("shutdown blew up")
}

func (p *brokenPlugin) CreateAnalyzer() (core.Analyzer, error) {
	if p.factoryPanics {
		panic("factory blew up")
	}
	return nil, errors.New("no analyzer today")
}

func named(name string) plugins.Info {
	return plugins.Info{PluginName: name, PluginVersion: "0.1.0", PluginAuthor: "tests"}
}

func TestLoadBuiltins(t *testing.T) {
	m := plugins.NewManager(nil)
	require.NoError(t, m.LoadBuiltins(plugins.BuiltinNames()))

	assert.Len(t, m.Loaded(), len(plugins.BuiltinNames()))
	assert.Len(t, m.ExportPlugins(), 4)
	assert.Len(t, m.VisualizationPlugins(), 1)

	analyzers := m.Analyzers()
	require.Len(t, analyzers, 1)
	assert.Equal(t, "MIME Type Analyzer", analyzers[0].Name())
}

func TestBuiltinNames(t *testing.T) {
	assert.Equal(t, []string{"highlight", "html", "json", "mime", "text", "yaml"}, plugins.BuiltinNames())

	p, err := plugins.NewBuiltin(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, "json", p.Name())
	assert.Equal(t, "1.0.0", p.Version())
	assert.Equal(t, "KleaSCM", p.Author())

	_, err = plugins.NewBuiltin("xml")
	assert.Error(t, err)
}

func TestLoadBuiltinsCollectsErrors(t *testing.T) {
	m := plugins.NewManager(nil)
	err := m.LoadBuiltins([]string{"json", "nope", "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown built-in plugin: nope")
	assert.ErrorIs(t, err, plugins.ErrDuplicatePlugin)
	assert.Len(t, m.Loaded(), 1)
}

func TestRegisterPluginInitializeFailure(t *testing.T) {
	m := plugins.NewManager(nil)
	err := m.RegisterPlugin(&brokenPlugin{Info: named("broken"), initErr: errors.New("missing resource")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing resource")
	assert.Empty(t, m.Loaded())

	assert.Error(t, m.RegisterPlugin(nil))
}

func TestAnalyzerFactoryFailuresAreSkipped(t *testing.T) {
	m := plugins.NewManager(nil)
	require.NoError(t, m.RegisterPlugin(&brokenPlugin{Info: named("panics"), factoryPanics: true}))
	require.NoError(t, m.RegisterPlugin(&brokenPlugin{Info: named("errors")}))
	require.NoError(t, m.LoadBuiltins([]string{"mime"}))

	analyzers := m.Analyzers()
	require.Len(t, analyzers, 1)
	assert.Equal(t, "MIME Type Analyzer", analyzers[0].Name())
}

func TestUnloadAll(t *testing.T) {
	calls := 0
	m := plugins.NewManager(nil)
	require.NoError(t, m.RegisterPlugin(&brokenPlugin{Info: named("a"), shutdownCalls: &calls}))
	require.NoError(t, m.RegisterPlugin(&brokenPlugin{Info: named("b"), shutdownCalls: &calls}))
	require.NoError(t, m.LoadBuiltins([]string{"json"}))

	m.UnloadAll()
	assert.Equal(t, 2, calls, "a panicking shutdown does not stop the rest")
	assert.Empty(t, m.Loaded())
	assert.Empty(t, m.Analyzers())
	assert.Nil(t, m.ExportPlugin("json"))
}

func TestExportPluginLookup(t *testing.T) {
	m := plugins.NewManager(nil)
	require.NoError(t, m.LoadBuiltins([]string{"json", "yaml", "text"}))

	yml := m.ExportPlugin("YML")
	require.NotNil(t, yml)
	assert.Equal(t, "yaml", yml.Name())
	assert.Nil(t, m.ExportPlugin("pdf"))

	report := reporting.NewReport("x.bin", 0, 4, nil)

	var buf bytes.Buffer
	require.NoError(t, m.ExportPlugin("txt").ExportResults(report, "TXT", &buf))
	assert.Contains(t, buf.String(), "=== Analysis Results for x.bin ===")

	jsonPlugin := m.ExportPlugin("json")
	require.NotNil(t, jsonPlugin)
	assert.Equal(t, []string{"json"}, jsonPlugin.SupportedFormats())
	assert.Error(t, jsonPlugin.ExportResults(report, "yaml", &buf))
	assert.Error(t, jsonPlugin.ExportResults(nil, "json", &buf))
}

func TestHighlightPlugin(t *testing.T) {
	m := plugins.NewManager(nil)
	require.NoError(t, m.LoadBuiltins([]string{"highlight"}))

	v := m.VisualizationPlugin("Highlight")
	require.NotNil(t, v)

	result := core.NewAnalysisResult("stub", "Stub", 0)
	result.AddStructure(core.Structure{Name: "Magic", Offset: 1, Size: 2})

	out, err := v.RenderVisualization(result, []byte{0x00, 0x4D, 0x5A, 0x90})
	require.NoError(t, err)
	assert.Contains(t, out, "[4d]")
	assert.Contains(t, out, " 5a ")

	_, err = v.RenderVisualization(nil, nil)
	assert.Error(t, err)
}
