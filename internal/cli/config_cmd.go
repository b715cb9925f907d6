// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Inspect and edit the configuration file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/voxtable/internal/config"
	"github.com/jeranaias/voxtable/internal/util"
)

func newConfigCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
		Long: `Shows or changes voxtable configuration.

Keys use dot notation matching the TOML sections, e.g. export.format.

Examples:
  voxtable config show
  voxtable config get export.format
  voxtable config set export.format markdown
  voxtable config set input.source vosk
  voxtable config path`,
	}
	cmd.AddCommand(
		newConfigShowCommand(g),
		newConfigGetCommand(g),
		newConfigSetCommand(g),
		newConfigPathCommand(g),
	)
	return cmd
}

func newConfigShowCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return NewJSONResponse("config show", cfg).Print(out)
			}
			path, _ := g.configFile()
			printConfig(out, cfg, path)
			return nil
		},
	}
}

func newConfigGetCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return unknownKey(args[0], err)
			}
			out := cmd.OutOrStdout()
			if g.jsonOut {
				return NewJSONResponse("config get", map[string]interface{}{args[0]: value}).Print(out)
			}
			fmt.Fprintln(out, value)
			return nil
		},
	}
}

func newConfigSetCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the configuration file",
		Long: `Changes one value and writes the configuration file.

Only the file is edited: environment overrides are not saved. The result
is validated before it is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.configFile()
			if err != nil {
				return &ConfigError{Err: err}
			}

			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if err := config.LoadTOML(cfg, path); err != nil {
					return &ConfigError{Path: path, Err: err}
				}
			} else if !errors.Is(statErr, os.ErrNotExist) {
				return &ConfigError{Path: path, Err: statErr}
			}

			if err := cfg.Set(args[0], args[1]); err != nil {
				return unknownKey(args[0], err)
			}
			cfg.Migrate()
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}

			out := cmd.OutOrStdout()
			value, _ := cfg.Get(args[0])
			if g.jsonOut {
				return NewJSONResponse("config set", map[string]interface{}{args[0]: value}).Print(out)
			}
			fmt.Fprintf(out, "%s %s = %v\n", styles(out).success.Render("Set"), args[0], value)
			return nil
		},
	}
}

func newConfigPathCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.configFile()
			if err != nil {
				return &ConfigError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func unknownKey(key string, err error) error {
	return &ValidationError{
		Field:   "key",
		Value:   key,
		Reason:  err.Error(),
		Example: "valid keys: " + strings.Join(config.GetAllKeys(), ", "),
	}
}

// printConfig prints every key grouped by section.
func printConfig(w io.Writer, cfg *config.Config, path string) {
	st := styles(w)
	fmt.Fprintln(w, st.title.Render("voxtable configuration"))
	fmt.Fprintln(w, st.rule(48))

	section := ""
	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		name := key
		if i := strings.IndexByte(key, '.'); i >= 0 {
			if s := key[:i]; s != section {
				section = s
				fmt.Fprintln(w)
				fmt.Fprintln(w, st.section.Render("["+s+"]"))
			}
			name = key[i+1:]
		}
		fmt.Fprintf(w, "  %s %s\n", st.label.Render(util.PadRight(name+":", 20)), st.value.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.rule(48))
	fmt.Fprintf(w, "Config file: %s\n", path)
}
