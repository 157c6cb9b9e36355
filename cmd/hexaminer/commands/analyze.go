/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyze.go
Description: Analyze command. Reads a window of each file, runs the engine with the
built-in and plugin analyzers on a worker pool, prints the ranked results and
optionally exports a report or highlights the best match.
*/

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/hexaminer/pkg/batch"
	"github.com/kleascm/hexaminer/pkg/engine"
	"github.com/kleascm/hexaminer/pkg/reporting"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file> [file...]",
		Short: "Analyze binary data and detect file formats",
		Long: `Run every analyzer over each file and list the results ranked by confidence.
Without --length at most analysis.max_size bytes (10 MiB by default) are analyzed.
Several files are analyzed in parallel by a pool of --workers workers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunAnalyze,
	}

	cmd.Flags().Int64("offset", 0, "Starting offset")
	cmd.Flags().Int64("length", -1, "Length to analyze (-1 for the entire file)")
	cmd.Flags().BoolP("verbose", "v", false, "Show properties and structures")
	cmd.Flags().Bool("highlight", false, "Hex dump the best match with structure starts bracketed")
	cmd.Flags().Bool("export", false, "Write a report file")
	cmd.Flags().String("format", "", "Report format (json, yaml, text, html)")
	cmd.Flags().String("output", "", "Report output directory")
	cmd.Flags().IntP("workers", "w", 0, "Parallel workers for several files (0 = one per CPU)")

	viper.BindPFlag("analysis.verbose", cmd.Flags().Lookup("verbose"))
	viper.BindPFlag("analysis.workers", cmd.Flags().Lookup("workers"))
	viper.BindPFlag("export.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("export.output_dir", cmd.Flags().Lookup("output"))

	return cmd
}

// RunAnalyze executes the analyze command
func RunAnalyze(cmd *cobra.Command, args []string) error {
	app, err := Setup()
	if err != nil {
		return err
	}
	defer app.Close()

	offset, _ := cmd.Flags().GetInt64("offset")
	length, _ := cmd.Flags().GetInt64("length")
	highlight, _ := cmd.Flags().GetBool("highlight")
	export, _ := cmd.Flags().GetBool("export")

	runner := batch.NewRunner(batch.Config{
		Workers: app.Config.Analysis.Workers,
		Offset:  offset,
		Length:  length,
		MaxSize: app.Config.Analysis.MaxSize,
	}, EngineFactory(app), app.Log())

	summary, err := runner.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	// A lone file reports its read error directly
	if len(args) == 1 && summary.Outcomes[0].Err != nil {
		return summary.Outcomes[0].Err
	}

	out := cmd.OutOrStdout()
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(out, "\n❌ %s: %v\n", outcome.Path, outcome.Err)
			continue
		}
		logOutcome(app, outcome)

		input, report := outcome.Input, outcome.Report
		if input.Truncated && length < 0 {
			fmt.Fprintf(out, "📊 Note: Large file detected. Analyzing first %s bytes of %s byte file.\n",
				formatBytes(int64(len(input.Data))), formatBytes(input.FileSize))
		}

		fmt.Fprintln(out)
		if err := reporting.WriteText(out, report, app.Config.Analysis.Verbose); err != nil {
			return fmt.Errorf("failed to print results: %w", err)
		}

		if highlight {
			if err := printHighlight(out, app, report, input.Data); err != nil {
				return err
			}
		}

		if export {
			path, err := ExportReport(app, report, app.Config.Export.Format)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n📄 Report written to %s\n", path)
		}
	}

	if len(args) > 1 {
		fmt.Fprintf(out, "\n✅ Analyzed %d of %d files with %d workers in %v\n",
			summary.Analyzed, len(args), summary.Workers, summary.Duration.Round(time.Millisecond))
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", summary.Failed, len(args))
	}
	return nil
}

// EngineFactory builds engines with the built-in analyzers plus every analyzer the
// loaded plugins contribute
func EngineFactory(app *App) batch.EngineFactory {
	return func() *engine.Engine {
		eng := engine.NewEngine(app.Log())
		for _, a := range app.Plugins.Analyzers() {
			eng.RegisterAnalyzer(a)
		}
		return eng
	}
}

func logOutcome(app *App, outcome *batch.Outcome) {
	report := outcome.Report
	best, confidence := "none", 0.0
	if b := report.Best(); b != nil {
		best, confidence = b.DataType, b.Confidence
	}
	app.Logger.LogAnalysis(report.Source, int(report.Size), len(report.Results), best, confidence, outcome.Duration)
}

// ExportReport writes the report through the export plugin registered for format
func ExportReport(app *App, report *reporting.Report, format string) (string, error) {
	exporter := app.Plugins.ExportPlugin(format)
	if exporter == nil {
		return "", fmt.Errorf("no export plugin for format %q", format)
	}

	path, err := reporting.WriteReport(app.Config.Export.OutputDir, report.Source, format, func(w io.Writer) error {
		return exporter.ExportResults(report, format, w)
	})
	if err != nil {
		return "", err
	}

	app.Log().WithFields(logrus.Fields{
		"component": "analysis",
		"format":    format,
		"path":      path,
	}).Info("Report exported")
	return path, nil
}

func printHighlight(w io.Writer, app *App, report *reporting.Report, data []byte) error {
	best := report.Best()
	if best == nil {
		return nil
	}
	v := app.Plugins.VisualizationPlugin("highlight")
	if v == nil {
		return fmt.Errorf("highlight plugin is not enabled")
	}

	window := data[:min(len(data), app.Config.Dump.Length)]
	dump, err := v.RenderVisualization(best, window)
	if err != nil {
		return fmt.Errorf("failed to render highlight: %w", err)
	}

	fmt.Fprintf(w, "\n🔢 === %s structures ===\n%s", best.AnalyzerName, dump)
	return nil
}
