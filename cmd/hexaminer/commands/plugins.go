/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: plugins.go
Description: Plugins command group. Lists the built-in plugins with their capabilities
and whether the configuration enables them.
*/

package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kleascm/hexaminer/pkg/plugins"
)

// NewPluginsCommand creates the plugins command group
func NewPluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage plugins",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available plugins",
		Args:  cobra.NoArgs,
		RunE:  ListPlugins,
	})

	return cmd
}

// ListPlugins executes the plugins list command
func ListPlugins(cmd *cobra.Command, args []string) error {
	app, err := Setup()
	if err != nil {
		return err
	}
	defer app.Close()

	loaded := make(map[string]plugins.Plugin)
	for _, p := range app.Plugins.Loaded() {
		loaded[p.Name()] = p
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔌 Available plugins:")
	fmt.Fprintln(out)
	return WritePluginTable(out, loaded)
}

// WritePluginTable lists every built-in plugin. Plugins present in loaded are marked
// enabled.
func WritePluginTable(w io.Writer, loaded map[string]plugins.Plugin) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tSTATUS\tCAPABILITIES\tDESCRIPTION")

	for _, name := range plugins.BuiltinNames() {
		status := "enabled"
		p, ok := loaded[name]
		if !ok {
			status = "disabled"
			var err error
			if p, err = plugins.NewBuiltin(name); err != nil {
				continue
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name(), p.Version(), status, strings.Join(Capabilities(p), ","), p.Description())
	}

	return tw.Flush()
}

// Capabilities names the plugin interfaces p implements
func Capabilities(p plugins.Plugin) []string {
	caps := make([]string, 0, 3)
	if _, ok := p.(plugins.AnalyzerPlugin); ok {
		caps = append(caps, "analyzer")
	}
	if _, ok := p.(plugins.VisualizationPlugin); ok {
		caps = append(caps, "visualization")
	}
	if e, ok := p.(plugins.ExportPlugin); ok {
		caps = append(caps, "export:"+strings.Join(e.SupportedFormats(), "/"))
	}
	return caps
}
