package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configapp "github.com/bnrubin/discord-logbot/internal/application/config"
	configinfra "github.com/bnrubin/discord-logbot/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(deps *Deps) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect logbot configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), deps.ConfigLoader())
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(deps),
		newConfigPathCommand(deps),
		newConfigValidateCommand(deps),
		newConfigDiffCommand(deps),
	)

	return configCmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), deps.ConfigLoader())
		},
	}
}

// newConfigPathCommand creates the 'config path' subcommand
func newConfigPathCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), deps.ConfigLoader().Path())
			return nil
		},
	}
}

// newConfigValidateCommand creates the 'config validate' subcommand
func newConfigValidateCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.ConfigLoader().Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := configapp.Validate(cfg); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
			return nil
		},
	}
}

// newConfigDiffCommand creates the 'config diff' subcommand
func newConfigDiffCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show diff versus default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigurationDiff(cmd.Context(), cmd.OutOrStdout(), deps.ConfigLoader())
		},
	}
}

// showConfiguration displays the full configuration in YAML format
func showConfiguration(ctx context.Context, out io.Writer, loader *configinfra.FileLoader) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	fmt.Fprint(out, string(data))
	return nil
}

// showConfigurationDiff shows the difference between current and default configuration
func showConfigurationDiff(ctx context.Context, out io.Writer, loader *configinfra.FileLoader) error {
	currentConfig, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current configuration: %w", err)
	}

	diff := cmp.Diff(configinfra.DefaultConfig(), currentConfig.Redacted())
	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}

	fmt.Fprintln(out, diff)
	return nil
}
