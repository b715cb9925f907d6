// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Root command, global flags and shared helpers.

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/voxtable/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	verbose    bool
	jsonOut    bool
}

// NewRootCommand builds the voxtable command tree. Running it without a
// subcommand starts a dictation session.
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}
	run := newRunCommand(g)

	root := &cobra.Command{
		Use:   "voxtable",
		Short: "Dictate tables by voice or keyboard",
		Long: `voxtable builds tables from spoken or typed commands.

Create a table, say the values cell by cell, correct mistakes with undo,
edit and delete, then save it as CSV, TSV, JSON, Markdown or HTML.

Run without arguments to start a session on the console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run.RunE,
	}
	root.Flags().AddFlagSet(run.Flags())

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (default ~/.voxtable/config.toml)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log progress to stderr")
	pf.BoolVar(&g.jsonOut, "json", false, "machine-readable output where supported")

	root.AddCommand(
		run,
		newTemplatesCommand(g),
		newHistoryCommand(g),
		newConfigCommand(g),
		newVersionCommand(g),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
// SIGINT and SIGTERM cancel the running command.
func Execute(ctx context.Context, args []string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	jsonMode, _ := root.PersistentFlags().GetBool("json")
	DisplayError(root.ErrOrStderr(), err, jsonMode)
	return GetExitCode(err)
}

// =============================================================================
// CONFIG LOADING
// =============================================================================

// loadConfig loads the file named by --config, or the default file.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	if g.configPath != "" {
		cfg, err := config.LoadFromPath(g.configPath)
		if err != nil {
			return nil, &ConfigError{Path: g.configPath, Err: err}
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		path, _ := config.ConfigPathTOML()
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// configFile returns the file config set writes to.
func (g *globalOptions) configFile() (string, error) {
	if g.configPath != "" {
		return g.configPath, nil
	}
	return config.ConfigPathTOML()
}

// resolveDir anchors a relative directory at the config directory.
func resolveDir(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	base, err := config.ConfigDir()
	if err != nil {
		return dir
	}
	return filepath.Join(base, dir)
}
