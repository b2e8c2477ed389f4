package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/config"
)

var initOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the admin configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configValidateCmd, configInitCmd)

	configInitCmd.Flags().StringVar(&initOutput, "output", "config.yaml", "path of the file to write")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(afero.NewOsFs(), configFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(redactConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(afero.NewOsFs(), configFile)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
		fmt.Sprintf("Configuration is valid (engine %s, database %s, %d policies)",
			cfg.Cache.Engine, cfg.Database.Driver, len(cfg.Cache.Policies))))
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	if exists, _ := afero.Exists(fs, initOutput); exists {
		return fmt.Errorf("%s already exists", initOutput)
	}
	if err := config.SaveToFile(fs, config.DefaultConfig(), initOutput); err != nil {
		return err
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote default configuration to "+initOutput))
	return err
}

func redactConfig(cfg *config.Config) *config.Config {
	out := cfg.DeepCopy()
	if out.Cache.Redis.Password != "" {
		out.Cache.Redis.Password = cachemgmt.RedactedValue
	}
	if out.Database.DSN != "" {
		out.Database.DSN = cachemgmt.RedactedValue
	}
	return out
}
