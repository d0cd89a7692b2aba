package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kouri/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigSetCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a configuration file with default values",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set api_key with `kouri config set api_key <key>` before running other commands.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, ctx, reveal)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the API key in full")
	return cmd
}

func showConfig(cmd *cobra.Command, ctx *commandContext, reveal bool) error {
	cfg := ctx.configValue()
	if !reveal {
		cfg.APIKey = maskSecret(cfg.APIKey)
	}
	if ctx.flags.json {
		return writeJSON(cmd, cfg)
	}
	timeout := "unbounded"
	if cfg.RequestTimeoutSeconds > 0 {
		timeout = strconv.Itoa(cfg.RequestTimeoutSeconds) + "s"
	}
	rows := [][]string{
		{"real_server_base_url", cfg.BaseURL},
		{"api_key", cfg.APIKey},
		{"model", cfg.Model},
		{"image_config.generate_size", cfg.ImageConfig.GenerateSize},
		{"theme", string(cfg.Theme)},
		{"request_timeout_seconds", timeout},
	}
	out := cmd.OutOrStdout()
	if ctx.store != nil {
		fmt.Fprintf(out, "Config path: %s\n", ctx.store.Path())
	}
	fmt.Fprintln(out, renderTable([]string{"Key", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.store.Path())
			if !ctx.store.Exists() {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if missing := cfg.Missing(); len(missing) > 0 {
				fmt.Fprintf(out, "Missing: %s\n", strings.Join(missing, ", "))
				return ctx.report(operationContext(cmd, "config validate"), cmd, "", cfg.Complete())
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one configuration value",
		Long:  "Update one configuration value. Keys: " + strings.Join(config.SettableKeys, ", "),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd, ctx, args[0], strings.Join(args[1:], " "))
		},
	}
}

func setConfigValue(cmd *cobra.Command, ctx *commandContext, key, value string) error {
	cfg := ctx.configValue()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := ctx.saveConfig(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "已保存 %s\n", strings.TrimSpace(key))
	return nil
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), ctx.store.Path())
			return nil
		},
	}
}

// maskSecret keeps the first and last four characters of long secrets.
func maskSecret(value string) string {
	runes := []rune(value)
	switch {
	case len(runes) == 0:
		return ""
	case len(runes) <= 8:
		return strings.Repeat("*", len(runes))
	default:
		return string(runes[:4]) + strings.Repeat("*", len(runes)-8) + string(runes[len(runes)-4:])
	}
}
