/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for Hexaminer. Wires the analyze, dump, patterns,
plugins and signatures commands, binds their flags into the configuration layer and
reports command errors.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/hexaminer/cmd/hexaminer/commands"
)

var (
	// Configuration
	configFile string

	// Logging configuration
	logLevel  string
	logFormat string
	logDir    string
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "hexaminer",
		Short: "Hexaminer - Digital forensics data exploitation tool",
		Long: `Hexaminer inspects raw binary data. It identifies file formats from magic
signatures, decodes PE and ELF headers into named structures, renders hex dumps and
scans buffers for strings, contact data, card numbers and entropy anomalies.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path (yaml, json, toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Also write logs to a file in this directory")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("logging.dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	rootCmd.AddCommand(
		commands.NewAnalyzeCommand(),
		commands.NewDumpCommand(),
		commands.NewPatternsCommand(),
		commands.NewPluginsCommand(),
		commands.NewSignaturesCommand(),
	)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
