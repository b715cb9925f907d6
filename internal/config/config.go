// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/voxtable/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete voxtable configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Language selects the keyword set and numeral vocabulary: "en" or "ru".
	Language string `toml:"language" json:"language"`

	Input     InputConfig     `toml:"input" json:"input"`
	Export    ExportConfig    `toml:"export" json:"export"`
	Templates TemplatesConfig `toml:"templates" json:"templates"`
	Journal   JournalConfig   `toml:"journal" json:"journal"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
	Session   SessionConfig   `toml:"session" json:"session"`
}

// InputConfig selects where utterances come from.
type InputConfig struct {
	// Source is one of "console", "script", "vosk"
	Source string `toml:"source" json:"source"`
	// ScriptPath is the utterance file read by the script source
	ScriptPath string `toml:"script_path" json:"script_path"`
	// HistoryFile keeps console line-editor history between runs
	HistoryFile string `toml:"history_file" json:"history_file"`
	// VoskURL is the websocket address of a vosk-server
	VoskURL string `toml:"vosk_url" json:"vosk_url"`
	// Capture is a PCM file path, "-" for stdin, or empty to run CaptureCommand
	Capture string `toml:"capture" json:"capture"`
	// CaptureCommand records mono 16 kHz S16LE PCM to stdout
	CaptureCommand string `toml:"capture_command" json:"capture_command"`
	// SampleRate is announced to the speech server
	SampleRate int `toml:"sample_rate" json:"sample_rate"`
}

// ExportConfig controls how saved tables are written.
type ExportConfig struct {
	Dir             string `toml:"dir" json:"dir"`
	Format          string `toml:"format" json:"format"`
	OpenAfterExport bool   `toml:"open_after_export" json:"open_after_export"`
	IncludeMetadata bool   `toml:"include_metadata" json:"include_metadata"`
	// Theme applies to HTML output: "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
}

// TemplatesConfig points at an optional YAML template catalogue.
type TemplatesConfig struct {
	// File replaces the built-in templates when set
	File string `toml:"file" json:"file"`
	// Watch reloads File whenever it changes on disk
	Watch bool `toml:"watch" json:"watch"`
}

// JournalConfig controls the SQLite session journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// LoggingConfig controls the log file and console verbosity.
type LoggingConfig struct {
	// Level is the file log level: "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Dir receives one timestamped log file per run
	Dir string `toml:"dir" json:"dir"`
	// Verbose lowers the console threshold from warn to info
	Verbose bool `toml:"verbose" json:"verbose"`
}

// SessionConfig controls per-run session behavior.
type SessionConfig struct {
	// AutosaveEvery writes a draft after this many applied commands; 0 disables
	AutosaveEvery int `toml:"autosave_every" json:"autosave_every"`
	// DraftPath is where the draft CSV is written
	DraftPath string `toml:"draft_path" json:"draft_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultCaptureCommand records from the default ALSA device.
const DefaultCaptureCommand = "arecord -q -f S16_LE -r 16000 -c 1 -t raw"

// Default returns a Config with sensible default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".voxtable"
	}

	return &Config{
		Version:  "1.0.0",
		Language: "en",

		Input: InputConfig{
			Source:         "console",
			HistoryFile:    filepath.Join(dir, "history"),
			VoskURL:        "ws://127.0.0.1:2700",
			CaptureCommand: DefaultCaptureCommand,
			SampleRate:     16000,
		},

		Export: ExportConfig{
			Dir:             ".",
			Format:          "csv",
			OpenAfterExport: false,
			IncludeMetadata: true,
			Theme:           "dark",
		},

		Templates: TemplatesConfig{
			File:  "",
			Watch: true,
		},

		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "journal.db"),
		},

		Logging: LoggingConfig{
			Level:   "info",
			Dir:     "logs",
			Verbose: false,
		},

		Session: SessionConfig{
			AutosaveEvery: 0,
			DraftPath:     filepath.Join(dir, "draft.csv"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the voxtable configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".voxtable"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.voxtable/config.toml, falling back to defaults when the file
// does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys not present in the file keep
// whatever cfg already holds.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides, migration, defaults and validation.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.Migrate()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# voxtable configuration file\n")
	buf.WriteString("# Generated by voxtable - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLanguages = map[string]bool{"en": true, "ru": true}
	validSources   = map[string]bool{"console": true, "script": true, "vosk": true}
	validFormats   = map[string]bool{"csv": true, "tsv": true, "json": true, "markdown": true, "md": true, "html": true}
	validThemes    = map[string]bool{"dark": true, "light": true}
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !validLanguages[c.Language] {
		errs = append(errs, ValidationError{
			Field:   "language",
			Message: fmt.Sprintf("invalid language '%s', must be one of: en, ru", c.Language),
		})
	}

	// ==========================================================================
	// Input
	// ==========================================================================

	if !validSources[c.Input.Source] {
		errs = append(errs, ValidationError{
			Field:   "input.source",
			Message: fmt.Sprintf("invalid source '%s', must be one of: console, script, vosk", c.Input.Source),
		})
	}
	if c.Input.Source == "script" && c.Input.ScriptPath == "" {
		errs = append(errs, ValidationError{
			Field:   "input.script_path",
			Message: "required when input.source is script",
		})
	}
	if c.Input.Source == "vosk" {
		u, err := url.Parse(c.Input.VoskURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "input.vosk_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "ws" && u.Scheme != "wss" {
			errs = append(errs, ValidationError{
				Field:   "input.vosk_url",
				Message: fmt.Sprintf("scheme must be ws or wss, got '%s'", u.Scheme),
			})
		}
		if c.Input.Capture == "" && strings.TrimSpace(c.Input.CaptureCommand) == "" {
			errs = append(errs, ValidationError{
				Field:   "input.capture",
				Message: "either capture or capture_command must be set for vosk input",
			})
		}
	}
	if c.Input.SampleRate < 8000 || c.Input.SampleRate > 48000 {
		errs = append(errs, ValidationError{
			Field:   "input.sample_rate",
			Message: fmt.Sprintf("must be 8000-48000, got %d", c.Input.SampleRate),
		})
	}

	// ==========================================================================
	// Export
	// ==========================================================================

	if !validFormats[strings.ToLower(c.Export.Format)] {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: csv, tsv, json, markdown, html", c.Export.Format),
		})
	}
	if !validThemes[strings.ToLower(c.Export.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "export.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.Export.Theme),
		})
	}

	// ==========================================================================
	// Journal, logging, session
	// ==========================================================================

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "journal.path",
			Message: "required when the journal is enabled",
		})
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	if c.Session.AutosaveEvery < 0 {
		errs = append(errs, ValidationError{
			Field:   "session.autosave_every",
			Message: "must be non-negative",
		})
	}
	if c.Session.AutosaveEvery > 0 && c.Session.DraftPath == "" {
		errs = append(errs, ValidationError{
			Field:   "session.draft_path",
			Message: "required when autosave is enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Language == "" {
		c.Language = defaults.Language
	}

	if c.Input.Source == "" {
		c.Input.Source = defaults.Input.Source
	}
	if c.Input.VoskURL == "" {
		c.Input.VoskURL = defaults.Input.VoskURL
	}
	if c.Input.SampleRate == 0 {
		c.Input.SampleRate = defaults.Input.SampleRate
	}

	if c.Export.Dir == "" {
		c.Export.Dir = defaults.Export.Dir
	}
	if c.Export.Format == "" {
		c.Export.Format = defaults.Export.Format
	}
	if c.Export.Theme == "" {
		c.Export.Theme = defaults.Export.Theme
	}

	if c.Journal.Path == "" {
		c.Journal.Path = defaults.Journal.Path
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaults.Logging.Dir
	}

	if c.Session.DraftPath == "" {
		c.Session.DraftPath = defaults.Session.DraftPath
	}
}

// Migrate normalizes older spellings of enumerated values.
func (c *Config) Migrate() {
	c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	switch c.Language {
	case "english":
		c.Language = "en"
	case "russian", "рус", "русский":
		c.Language = "ru"
	}

	c.Input.Source = strings.ToLower(strings.TrimSpace(c.Input.Source))
	if c.Input.Source == "voice" || c.Input.Source == "mic" {
		c.Input.Source = "vosk"
	}

	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "md" {
		c.Export.Format = "markdown"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - VOXTABLE_LANG: overrides language
//   - VOXTABLE_INPUT: overrides input.source
//   - VOXTABLE_SCRIPT: overrides input.script_path
//   - VOXTABLE_VOSK_URL: overrides input.vosk_url
//   - VOXTABLE_EXPORT_DIR: overrides export.dir
//   - VOXTABLE_EXPORT_FORMAT: overrides export.format
//   - VOXTABLE_LOG_LEVEL: overrides logging.level
//   - VOXTABLE_NO_JOURNAL: set to "1" or "true" to disable the journal
func (c *Config) ApplyEnvOverrides() {
	if lang := os.Getenv("VOXTABLE_LANG"); lang != "" {
		c.Language = lang
	}
	if source := os.Getenv("VOXTABLE_INPUT"); source != "" {
		c.Input.Source = source
	}
	if script := os.Getenv("VOXTABLE_SCRIPT"); script != "" {
		c.Input.ScriptPath = script
	}
	if u := os.Getenv("VOXTABLE_VOSK_URL"); u != "" {
		c.Input.VoskURL = u
	}
	if dir := os.Getenv("VOXTABLE_EXPORT_DIR"); dir != "" {
		c.Export.Dir = dir
	}
	if format := os.Getenv("VOXTABLE_EXPORT_FORMAT"); format != "" {
		c.Export.Format = format
	}
	if level := os.Getenv("VOXTABLE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if off := os.Getenv("VOXTABLE_NO_JOURNAL"); off != "" {
		c.Journal.Enabled = !(off == "1" || strings.ToLower(off) == "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "export.format").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "export.format").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"language",
		"input.source",
		"input.script_path",
		"input.history_file",
		"input.vosk_url",
		"input.capture",
		"input.capture_command",
		"input.sample_rate",
		"export.dir",
		"export.format",
		"export.open_after_export",
		"export.include_metadata",
		"export.theme",
		"templates.file",
		"templates.watch",
		"journal.enabled",
		"journal.path",
		"logging.level",
		"logging.dir",
		"logging.verbose",
		"session.autosave_every",
		"session.draft_path",
	}
}

// Clone returns a copy of the configuration. Config holds only value fields.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns an indented JSON rendition for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
