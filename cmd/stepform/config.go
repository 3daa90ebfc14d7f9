package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepform/internal/config"
)

var configFlags struct {
	path  string
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the stepform configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", cfg)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVarP(&configFlags.path, "path", "p", config.FileName, "Where to write the file")
	configInitCmd.Flags().BoolVarP(&configFlags.force, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFlags.path); err == nil && !configFlags.force {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", configFlags.path)
	}
	if err := config.Write(configFlags.path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", configFlags.path)
	return nil
}
