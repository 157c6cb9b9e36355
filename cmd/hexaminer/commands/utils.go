/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Hexaminer commands. Provides configuration loading,
logging setup and plugin loading used by every command.
*/

package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kleascm/hexaminer/pkg/config"
	"github.com/kleascm/hexaminer/pkg/logging"
	"github.com/kleascm/hexaminer/pkg/plugins"
)

// App bundles what a command needs once configuration has been resolved
type App struct {
	Config  *config.Config
	Logger  *logging.Logger
	Plugins *plugins.Manager
}

// LoadConfig loads configuration from the optional config file, the environment and
// bound flags
func LoadConfig() (*config.Config, error) {
	v := viper.GetViper()

	// Set config file if specified
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return config.Load(v)
}

// SetupLogging configures the logging system
func SetupLogging(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// Setup loads configuration, logging and the enabled plugins
func Setup() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cfg)
	if err != nil {
		return nil, err
	}

	manager := plugins.NewManager(logger.GetLogger())
	if err := manager.LoadBuiltins(cfg.Plugins.Enabled); err != nil {
		logger.GetLogger().WithError(err).Warn("Some plugins failed to load")
	}

	return &App{Config: cfg, Logger: logger, Plugins: manager}, nil
}

// Log returns the underlying logrus logger
func (a *App) Log() *logrus.Logger {
	return a.Logger.GetLogger()
}

// Close shuts the plugins down and flushes the log file
func (a *App) Close() {
	for _, p := range a.Plugins.Loaded() {
		a.Logger.LogPlugin(p.Name(), p.Version(), "Plugin unloaded")
	}
	a.Plugins.UnloadAll()
	a.Logger.Close()
}

var printer = message.NewPrinter(language.English)

// formatBytes renders a byte count with thousands separators
func formatBytes(n int64) string {
	return printer.Sprintf("%d", n)
}
