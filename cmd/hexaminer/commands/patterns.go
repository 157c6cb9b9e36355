/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: patterns.go
Description: Patterns command. Scans a file for strings, email addresses, URLs, card
numbers and entropy anomalies and prints the matches per category.
*/

package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/hexaminer/pkg/batch"
	"github.com/kleascm/hexaminer/pkg/patterns"
)

// categoryStyle is the heading and offset colour for each finder
var categoryStyle = map[patterns.Kind]struct {
	icon  string
	title string
	color color.Attribute
}{
	patterns.KindStrings: {"📝", "ASCII strings", color.FgGreen},
	patterns.KindEmails:  {"📧", "email addresses", color.FgYellow},
	patterns.KindURLs:    {"🌐", "URLs", color.FgBlue},
	patterns.KindCards:   {"💳", "card numbers", color.FgRed},
	patterns.KindEntropy: {"🔢", "entropy anomalies", color.FgMagenta},
}

// NewPatternsCommand creates the patterns command
func NewPatternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns <file>",
		Short: "Find interesting data patterns",
		Long: `Scan the file for printable strings, email addresses, URLs, Luhn-valid card
numbers and windows of unusually high or low entropy. At most patterns.max_size bytes
(100 MiB by default) are scanned.`,
		Args: cobra.ExactArgs(1),
		RunE: RunPatterns,
	}

	cmd.Flags().Bool("strings", false, "Find ASCII strings")
	cmd.Flags().Bool("emails", false, "Find email addresses")
	cmd.Flags().Bool("urls", false, "Find URLs")
	cmd.Flags().Bool("cards", false, "Find credit card numbers")
	cmd.Flags().Bool("entropy", false, "Find entropy anomalies")
	cmd.Flags().Bool("all", false, "Find all patterns")
	cmd.Flags().Int("min-length", patterns.DefaultMinStringLength, "Minimum ASCII string length")
	cmd.Flags().Int("window", patterns.DefaultEntropyWindow, "Entropy window size in bytes")
	cmd.Flags().Bool("no-color", false, "Disable coloured output")

	viper.BindPFlag("patterns.min_string_length", cmd.Flags().Lookup("min-length"))
	viper.BindPFlag("patterns.entropy_window", cmd.Flags().Lookup("window"))

	return cmd
}

// SelectedKinds maps the finder flags onto scanner kinds, in report order
func SelectedKinds(cmd *cobra.Command) []patterns.Kind {
	all, _ := cmd.Flags().GetBool("all")

	kinds := make([]patterns.Kind, 0, len(patterns.AllKinds))
	for _, kind := range patterns.AllKinds {
		enabled, _ := cmd.Flags().GetBool(string(kind))
		if all || enabled {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// RunPatterns executes the patterns command
func RunPatterns(cmd *cobra.Command, args []string) error {
	kinds := SelectedKinds(cmd)
	if len(kinds) == 0 {
		return fmt.Errorf("select at least one of --strings, --emails, --urls, --cards, --entropy or --all")
	}

	app, err := Setup()
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config.Patterns
	input, err := batch.ReadInput(args[0], 0, -1, cfg.MaxSize)
	if err != nil {
		return err
	}

	scanner := patterns.NewScanner(cfg.ScanConfig(), app.Log())
	report := scanner.Scan(input.Data, kinds...)

	counts := make(map[string]int, len(report.Categories))
	for _, c := range report.Categories {
		counts[string(c.Kind)] = len(c.Matches)
	}
	app.Logger.LogPatternScan(input.Name, len(input.Data), counts, report.Duration)

	noColor, _ := cmd.Flags().GetBool("no-color")
	out := cmd.OutOrStdout()
	if input.Truncated {
		fmt.Fprintf(out, "📊 Note: Scanning first %s bytes of %s byte file.\n",
			formatBytes(int64(len(input.Data))), formatBytes(input.FileSize))
	}
	fmt.Fprintf(out, "\n🔍 === Pattern Analysis: %s ===\n", input.Name)
	WritePatternReport(out, report, cfg.DisplayLimit, !noColor)
	return nil
}

// WritePatternReport prints each scanned category. Only the strings category is cut
// to limit entries; limit 0 prints everything.
func WritePatternReport(w io.Writer, report *patterns.Report, limit int, colors bool) {
	for _, c := range report.Categories {
		style := categoryStyle[c.Kind]
		offsetColor := color.New(style.color)
		if colors {
			offsetColor.EnableColor()
		} else {
			offsetColor.DisableColor()
		}

		fmt.Fprintf(w, "\n%s Found %d %s:\n", style.icon, len(c.Matches), style.title)

		matches := c.Matches
		if c.Kind == patterns.KindStrings && limit > 0 && len(matches) > limit {
			matches = matches[:limit]
		}
		for _, m := range matches {
			fmt.Fprintf(w, "  %s ", offsetColor.Sprintf("0x%08X:", m.Offset))
			if c.Kind == patterns.KindEntropy {
				fmt.Fprintf(w, "%s - %s\n", m.Type, m.Value)
			} else {
				fmt.Fprintln(w, m.Value)
			}
		}
		if len(matches) < len(c.Matches) {
			fmt.Fprintf(w, "  ... %d more\n", len(c.Matches)-len(matches))
		}
	}
}
