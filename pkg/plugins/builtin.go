/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: builtin.go
Description: Built-in plugins, registered by name. Plugins are compiled in and looked
up through this table instead of being discovered at runtime.
*/

package plugins

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kleascm/hexaminer/pkg/analyzers"
	"github.com/kleascm/hexaminer/pkg/core"
	"github.com/kleascm/hexaminer/pkg/reporting"
	"github.com/kleascm/hexaminer/pkg/visualization"
)

const (
	builtinVersion = "1.0.0"
	builtinAuthor  = "KleaSCM"
)

var builtins = map[string]func() Plugin{
	"mime": func() Plugin {
		return &MIMEPlugin{Info: info("mime", "MIME type detection backed by filetype matchers")}
	},
	"json": func() Plugin {
		return &exportPlugin{
			Info:    info("json", "Exports reports as ordered JSON"),
			formats: []string{"json"},
			encode:  reporting.EncodeJSON,
		}
	},
	"yaml": func() Plugin {
		return &exportPlugin{
			Info:    info("yaml", "Exports reports as YAML"),
			formats: []string{"yaml", "yml"},
			encode:  reporting.EncodeYAML,
		}
	},
	"text": func() Plugin {
		return &exportPlugin{
			Info:    info("text", "Exports reports as a plain text listing"),
			formats: []string{"text", "txt"},
			encode: func(w io.Writer, r *reporting.Report) error {
				return reporting.WriteText(w, r, true)
			},
		}
	},
	"html": func() Plugin {
		return &exportPlugin{
			Info:    info("html", "Exports reports as a standalone HTML page"),
			formats: []string{"html", "htm"},
			encode:  reporting.RenderHTML,
		}
	},
	"highlight": func() Plugin {
		return &HighlightPlugin{Info: info("highlight", "Hex dump with structure starts bracketed"), Width: visualization.DefaultWidth}
	},
}

func info(name, description string) Info {
	return Info{
		PluginName:        name,
		PluginVersion:     builtinVersion,
		PluginAuthor:      builtinAuthor,
		PluginDescription: description,
	}
}

// BuiltinNames lists the built-in plugin names in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltin creates a fresh instance of the named built-in plugin
func NewBuiltin(name string) (Plugin, error) {
	factory, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown built-in plugin: %s", name)
	}
	return factory(), nil
}

// MIMEPlugin contributes the MIME type analyzer
type MIMEPlugin struct {
	Info
}

// CreateAnalyzer returns a new MIME analyzer
func (p *MIMEPlugin) CreateAnalyzer() (core.Analyzer, error) {
	return analyzers.NewMIMEAnalyzer(), nil
}

// HighlightPlugin renders results as bracketed hex dumps
type HighlightPlugin struct {
	Info
	Width int
}

// RenderVisualization highlights the structures of result within data
func (p *HighlightPlugin) RenderVisualization(result *core.AnalysisResult, data []byte) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no result to render")
	}
	return visualization.HighlightStructures(data, result, p.Width), nil
}

// exportPlugin adapts a report encoder to the ExportPlugin contract
type exportPlugin struct {
	Info
	formats []string
	encode  func(io.Writer, *reporting.Report) error
}

func (p *exportPlugin) SupportedFormats() []string {
	return append([]string(nil), p.formats...)
}

func (p *exportPlugin) ExportResults(report *reporting.Report, format string, w io.Writer) error {
	supported := false
	for _, f := range p.formats {
		if strings.EqualFold(f, format) {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("plugin %s does not export %q", p.Name(), format)
	}
	if report == nil {
		return fmt.Errorf("nil report")
	}
	return p.encode(w, report)
}
