/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dump.go
Description: Dump command. Prints a colourised hex dump of a file window.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/hexaminer/pkg/batch"
	"github.com/kleascm/hexaminer/pkg/visualization"
)

// NewDumpCommand creates the dump command
func NewDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Display hex dump of file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDump,
	}

	cmd.Flags().Int64("offset", 0, "Starting offset")
	cmd.Flags().Int("length", 512, "Number of bytes to dump")
	cmd.Flags().Int("width", visualization.DefaultWidth, "Bytes per line")
	cmd.Flags().Bool("no-color", false, "Disable coloured output")

	viper.BindPFlag("dump.length", cmd.Flags().Lookup("length"))
	viper.BindPFlag("dump.width", cmd.Flags().Lookup("width"))

	return cmd
}

// RunDump executes the dump command
func RunDump(cmd *cobra.Command, args []string) error {
	app, err := Setup()
	if err != nil {
		return err
	}
	defer app.Close()

	offset, _ := cmd.Flags().GetInt64("offset")
	noColor, _ := cmd.Flags().GetBool("no-color")
	cfg := app.Config.Dump

	input, err := batch.ReadInput(args[0], offset, int64(cfg.Length), 0)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n🔢 === Hex Dump: %s ===\n", input.Name)
	return visualization.ColorizedHexDump(out, input.Data, input.Offset, cfg.Width, cfg.Colors && !noColor)
}
