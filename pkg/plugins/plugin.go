/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: plugin.go
Description: Plugin contracts. A plugin carries identity metadata and a lifecycle, and
may additionally contribute analyzers, visualizations or export formats.
*/

package plugins

import (
	"io"

	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/reporting"
)

// Plugin is the base contract every plugin implements
type Plugin interface {
	Name() string
	Version() string
	Author() string
	Description() string

	Initialize() error
	Shutdown() error
}

// AnalyzerPlugin contributes an analyzer to the engine
type AnalyzerPlugin interface {
	Plugin
	CreateAnalyzer() (core.Analyzer, error)
}

// VisualizationPlugin renders a result over the analyzed bytes
type VisualizationPlugin interface {
	Plugin
	RenderVisualization(result *core.AnalysisResult, data []byte) (string, error)
}

// ExportPlugin writes reports in one or more formats
type ExportPlugin interface {
	Plugin
	SupportedFormats() []string
	ExportResults(report *reporting.Report, format string, w io.Writer) error
}

// Info holds plugin metadata and provides no-op lifecycle hooks for embedding
type Info struct {
	PluginName        string
	PluginVersion     string
	PluginAuthor      string
	PluginDescription string
}

func (i Info) Name() string        { return i.PluginName }
func (i Info) Version() string     { return i.PluginVersion }
func (i Info) Author() string      { return i.PluginAuthor }
func (i Info) Description() string { return i.PluginDescription }
func (i Info) Initialize() error   { return nil }
func (i Info) Shutdown() error     { return nil }
