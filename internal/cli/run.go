// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - The dictation session command.

package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/voxtable/internal/commands"
	"github.com/jeranaias/voxtable/internal/config"
	"github.com/jeranaias/voxtable/internal/export"
	"github.com/jeranaias/voxtable/internal/logging"
	"github.com/jeranaias/voxtable/internal/numwords"
	"github.com/jeranaias/voxtable/internal/render"
	"github.com/jeranaias/voxtable/internal/session"
	"github.com/jeranaias/voxtable/internal/speech"
	"github.com/jeranaias/voxtable/internal/storage"
)

// prompt is printed before every typed or replayed utterance.
const prompt = "> "

type runOptions struct {
	input     string
	script    string
	lang      string
	format    string
	exportDir string
	voskURL   string
	capture   string
	noJournal bool
	autosave  int
}

func newRunCommand(g *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a dictation session",
		Long: `Starts a session that listens for utterances and edits a table.

Input sources:
  console  type utterances with line editing, history and tab completion
  script   replay utterances from a file, one per line ("-" for stdin)
  vosk     stream microphone audio to a Vosk speech server

Examples:
  voxtable run
  voxtable run --script scores.txt --format markdown
  voxtable run --input vosk --vosk-url ws://localhost:2700 --lang ru`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, g, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "input source: console, script or vosk")
	f.StringVarP(&o.script, "script", "s", "", "replay utterances from a file (implies --input script)")
	f.StringVarP(&o.lang, "lang", "l", "", "command language: en or ru")
	f.StringVarP(&o.format, "format", "f", "", "save format: csv, tsv, json, markdown or html")
	f.StringVarP(&o.exportDir, "output", "o", "", "directory saved tables are written to")
	f.StringVar(&o.voskURL, "vosk-url", "", "Vosk websocket server URL")
	f.StringVar(&o.capture, "capture", "", `raw 16 kHz PCM file to stream instead of the capture command ("-" for stdin)`)
	f.BoolVar(&o.noJournal, "no-journal", false, "do not record the session in the journal")
	f.IntVar(&o.autosave, "autosave", 0, "write a draft every N changes (0 disables)")
	return cmd
}

// apply copies the flags that were set onto cfg.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("script") {
		cfg.Input.ScriptPath = o.script
		if !f.Changed("input") {
			cfg.Input.Source = "script"
		}
	}
	if f.Changed("input") {
		cfg.Input.Source = o.input
	}
	if f.Changed("lang") {
		cfg.Language = o.lang
	}
	if f.Changed("format") {
		cfg.Export.Format = o.format
	}
	if f.Changed("output") {
		cfg.Export.Dir = o.exportDir
	}
	if f.Changed("vosk-url") {
		cfg.Input.VoskURL = o.voskURL
	}
	if f.Changed("capture") {
		cfg.Input.Capture = o.capture
	}
	if f.Changed("no-journal") {
		cfg.Journal.Enabled = !o.noJournal
	}
	if f.Changed("autosave") {
		cfg.Session.AutosaveEvery = o.autosave
	}
}

func runSession(cmd *cobra.Command, g *globalOptions, o *runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	o.apply(cmd, cfg)
	cfg.Migrate()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: err}
	}

	log, err := logging.New(logging.Options{
		Dir:     resolveDir(cfg.Logging.Dir),
		Level:   cfg.Logging.Level,
		Verbose: g.verbose || cfg.Logging.Verbose,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return &ConfigError{Err: err}
	}
	defer log.Close()
	logger := log.Logger
	logger.Info("starting",
		zap.String("version", Version),
		zap.String("language", cfg.Language),
		zap.String("input", cfg.Input.Source),
		zap.String("log_file", log.Path()))

	// Grammar
	keywords, err := commands.KeywordsFor(cfg.Language)
	if err != nil {
		return err
	}
	vocab, err := numwords.ForLanguage(cfg.Language)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	if cfg.Templates.File != "" && cfg.Templates.Watch {
		watcher, err := watchCatalog(ctx, cfg.Templates.File, catalog, logger)
		if err != nil {
			logger.Warn("template file will not be reloaded", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}
	interp := commands.NewInterpreter(keywords, numwords.New(vocab), catalog)

	// Output
	labels, err := render.LabelsFor(cfg.Language)
	if err != nil {
		return err
	}
	renderer := render.New(stdout, labels)

	// Journal
	var journal *storage.Journal
	if cfg.Journal.Enabled {
		journal, err = storage.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal unavailable", zap.String("path", cfg.Journal.Path), zap.Error(err))
			journal = nil
		} else {
			defer journal.Close()
		}
	}

	// Input
	completer := commands.NewCompleter(keywords)
	listener, err := openListener(ctx, cfg, stdout, completer, logger)
	if err != nil {
		return err
	}
	if cfg.Input.Source == "vosk" {
		renderer.Info("%s", labels.Listening)
	}

	ctrl, err := session.New(listener, interp, renderer, journal, logger, session.Options{
		Language: cfg.Language,
		Input:    cfg.Input.Source,
		Format:   cfg.Export.Format,
		Export: &export.Options{
			OutputDir:       cfg.Export.Dir,
			OpenAfterExport: cfg.Export.OpenAfterExport,
			IncludeMetadata: cfg.Export.IncludeMetadata,
			Theme:           cfg.Export.Theme,
		},
		AutoSaveEvery: cfg.Session.AutosaveEvery,
		DraftPath:     cfg.Session.DraftPath,
	})
	if err != nil {
		listener.Close()
		return err
	}
	completer.HeadersFn = func() []string {
		ws := ctrl.Workspace()
		if !ws.HasTable() {
			return nil
		}
		return ws.Table().Headers()
	}

	return ctrl.Run(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func loadCatalog(cfg *config.Config) (*commands.Catalog, error) {
	if cfg.Templates.File == "" {
		return commands.BuiltinCatalog(cfg.Language), nil
	}
	catalog, err := commands.LoadCatalog(cfg.Templates.File)
	if err != nil {
		return nil, &ConfigError{Path: cfg.Templates.File, Err: err}
	}
	return catalog, nil
}

// watchCatalog reloads the catalogue whenever its file changes. A file that
// fails to parse leaves the previous templates in place.
func watchCatalog(ctx context.Context, path string, catalog *commands.Catalog, logger *zap.Logger) (*config.FileWatcher, error) {
	watcher, err := config.NewFileWatcher(path, config.DefaultDebounce, logger, func(p string) {
		if err := catalog.Reload(p); err != nil {
			logger.Warn("template reload failed", zap.String("path", p), zap.Error(err))
			return
		}
		logger.Info("templates reloaded", zap.String("path", p), zap.Int("count", catalog.Len()))
	})
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// openListener builds the utterance source named by the config.
func openListener(ctx context.Context, cfg *config.Config, echo io.Writer, completer *commands.Completer, logger *zap.Logger) (speech.Listener, error) {
	switch cfg.Input.Source {
	case "console":
		return speech.NewConsoleListener(prompt, cfg.Input.HistoryFile, completer.Lines), nil

	case "script":
		return speech.OpenScript(cfg.Input.ScriptPath, echo, prompt)

	case "vosk":
		audio, err := speech.OpenCapture(ctx, cfg.Input.Capture, cfg.Input.CaptureCommand)
		if err != nil {
			return nil, err
		}
		listener, err := speech.DialVosk(ctx, cfg.Input.VoskURL, audio, speech.VoskOptions{
			SampleRate: cfg.Input.SampleRate,
			Logger:     logger,
		})
		if err != nil {
			audio.Close()
			return nil, err
		}
		return listener, nil

	default:
		return nil, &ValidationError{
			Field:   "input",
			Value:   cfg.Input.Source,
			Reason:  "unknown input source",
			Example: "voxtable run --input console",
		}
	}
}
