// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for voxtable.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - InputConfig: Utterance source (console, script, vosk) and audio capture
//   - ExportConfig: Output directory, format and theme for saved tables
//   - FileWatcher: Debounced fsnotify watcher used to reload templates
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (VOXTABLE_*)
//   - ~/.voxtable/config.toml or the file named by --config
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	format := cfg.Export.Format
package config
