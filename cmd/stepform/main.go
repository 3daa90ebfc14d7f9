package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepform"
	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/internal/logging"
	"github.com/goliatone/go-stepform/pkg/onboarding"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	config   string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:           "stepform",
	Short:         "Multi-step onboarding wizards for the web and the terminal",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `stepform serves the onboarding wizards of a tax return application.

Each flow is a sequence of steps validated on the way and submitted to the
backend API once the last step is done. Flows run in the browser (serve) or
in the terminal (run).`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.config, "config", "c", "", "Config file (defaults to ./"+config.FileName+" when present)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(flowsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(expensesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "stepform:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the logger it describes.
func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(rootFlags.config)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return *cfg, logger, nil
}

func loadApp(extra ...onboarding.Definition) (*stepform.App, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return stepform.NewApp(cfg, logger, extra...)
}
