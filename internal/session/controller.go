// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/voxtable/internal/commands"
	"github.com/jeranaias/voxtable/internal/export"
	"github.com/jeranaias/voxtable/internal/grid"
	"github.com/jeranaias/voxtable/internal/render"
	"github.com/jeranaias/voxtable/internal/speech"
	"github.com/jeranaias/voxtable/internal/storage"
	"github.com/jeranaias/voxtable/internal/undo"
	"github.com/jeranaias/voxtable/internal/util"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Controller.
type Options struct {
	// SessionID identifies the session in the journal. Generated when empty.
	SessionID string

	// Language and Input are recorded in the journal.
	Language string
	Input    string

	// Format names the exporter used by save (csv, tsv, json, markdown, html).
	Format string
	Export *export.Options

	// AutoSaveEvery writes a CSV draft of the active table to DraftPath
	// after that many changes. Zero disables drafts.
	AutoSaveEvery int
	DraftPath     string

	// Now defaults to time.Now.
	Now func() time.Time
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs the utterance loop: listen, interpret, apply, render.
//
// Only the goroutine calling Run touches the workspace; the listener is the
// single blocking point.
type Controller struct {
	listener  speech.Listener
	interp    *commands.Interpreter
	workspace *undo.Workspace
	render    *render.Renderer
	journal   *storage.Journal
	logger    *zap.Logger

	exporter export.Exporter
	drafts   export.Exporter
	opts     Options
	state    *State
}

// New creates a controller. journal may be nil.
func New(listener speech.Listener, interp *commands.Interpreter, renderer *render.Renderer,
	journal *storage.Journal, logger *zap.Logger, opts Options) (*Controller, error) {
	if listener == nil || interp == nil || renderer == nil {
		return nil, errors.New("session: listener, interpreter and renderer are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Export == nil {
		opts.Export = export.DefaultOptions()
	}
	if opts.Format == "" {
		opts.Format = "csv"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AutoSaveEvery > 0 && opts.DraftPath == "" {
		return nil, errors.New("session: autosave needs a draft path")
	}

	exporter, err := export.ForFormat(opts.Format, opts.Export)
	if err != nil {
		return nil, err
	}
	drafts, err := export.ForFormat("csv", opts.Export)
	if err != nil {
		return nil, err
	}

	state := NewState(opts.SessionID, opts.AutoSaveEvery, opts.Now)
	logger = logger.Named("session").With(zap.String("session", state.SessionID()))

	return &Controller{
		listener:  listener,
		interp:    interp,
		workspace: undo.NewWorkspace(logger),
		render:    renderer,
		journal:   journal,
		logger:    logger,
		exporter:  exporter,
		drafts:    drafts,
		opts:      opts,
		state:     state,
	}, nil
}

// State returns the session bookkeeping.
func (c *Controller) State() *State { return c.state }

// Workspace returns the table and its history.
func (c *Controller) Workspace() *undo.Workspace { return c.workspace }

// Run loops until exit is said, the listener runs dry or ctx is cancelled.
// The listener is closed on every return path. Cancellation and an exhausted
// listener are normal endings and return nil.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if cerr := c.listener.Close(); cerr != nil {
			c.logger.Warn("failed to close listener", zap.Error(cerr))
		}
		c.finish(ctx)
	}()

	c.begin(ctx)

	for {
		text, err := c.listener.Listen(ctx)
		if err != nil {
			return c.endErr(err)
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			continue
		}

		cmd, err := c.interp.Interpret(text, c.headers())
		if err != nil {
			c.record(ctx, text, "", err)
			c.report(err)
			continue
		}

		switch cmd.(type) {
		case commands.Exit:
			c.record(ctx, text, cmd.Kind(), nil)
			return nil

		case commands.Pause:
			c.record(ctx, text, cmd.Kind(), nil)
			if err := c.pause(ctx); err != nil {
				return c.endErr(err)
			}

		default:
			err := c.apply(cmd)
			c.record(ctx, text, cmd.Kind(), err)
			if err != nil {
				c.report(err)
			}
			c.autoSave()
		}
	}
}

func (c *Controller) endErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("listen: %w", err)
}

func (c *Controller) headers() []string {
	if !c.workspace.HasTable() {
		return nil
	}
	return c.workspace.Table().Headers()
}

// pause discards utterances until the resume phrase.
func (c *Controller) pause(ctx context.Context) error {
	kw := c.interp.Keywords()
	c.render.Info(c.render.Labels().Paused, first(kw.Resume))
	c.logger.Info("paused")

	for {
		text, err := c.listener.Listen(ctx)
		if err != nil {
			return err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if c.interp.IsResume(text) {
			c.record(ctx, text, "resume", nil)
			c.render.Info("%s", c.render.Labels().Resumed)
			c.logger.Info("resumed")
			return nil
		}
		c.logger.Debug("ignored while paused", zap.String("text", text))
		c.recordOutcome(ctx, text, "", storage.OutcomeIgnored, "paused")
	}
}

// =============================================================================
// APPLY
// =============================================================================

// apply executes one command against the workspace and renders the result.
func (c *Controller) apply(cmd commands.Command) error {
	labels := c.render.Labels()
	w := c.workspace

	switch cmd := cmd.(type) {
	case commands.Help:
		c.render.Help(c.interp.Keywords().Usage)
		return nil

	case commands.CreateTable:
		if err := w.Create(cmd.Name, cmd.Headers); err != nil {
			return err
		}
		c.render.Success(labels.Created, cmd.Name)

	case commands.CreateFromTemplate:
		if err := w.Create(cmd.Name, cmd.Headers); err != nil {
			return err
		}
		c.render.Success(labels.Created, cmd.Name)

	case commands.SetValue:
		if _, err := w.SetValue(cmd.Text); err != nil {
			return err
		}

	case commands.SkipCell:
		if _, err := w.SkipCell(); err != nil {
			return err
		}

	case commands.NextRow:
		if err := w.NextRow(); err != nil {
			return err
		}

	case commands.InsertRow:
		if err := w.InsertRow(cmd.Row); err != nil {
			return err
		}

	case commands.DeleteRow:
		if err := w.DeleteRow(cmd.Row); err != nil {
			return err
		}

	case commands.EditAt:
		if err := w.EditAt(cmd.Row, cmd.Col); err != nil {
			return err
		}
		c.show()
		return nil

	case commands.ReturnToPrevious:
		if err := w.ReturnToPrevious(); err != nil {
			return err
		}
		c.show()
		return nil

	case commands.Undo:
		r, err := w.Undo()
		if err != nil {
			return err
		}
		c.render.Info(labels.Undone, strings.ReplaceAll(r.Kind(), "_", " "))
		if !w.HasTable() {
			c.state.MarkClean()
			return nil
		}

	case commands.Save:
		return c.save(cmd.FileName)

	default:
		return fmt.Errorf("unsupported command %q", cmd.Kind())
	}

	if w.HasTable() {
		c.state.MarkDirty()
	}
	c.show()
	return nil
}

func (c *Controller) show() {
	if c.workspace.HasTable() {
		c.render.Show(c.workspace.Table().Render())
	}
}

// save exports the active table, journals it and releases it.
func (c *Controller) save(fileName string) error {
	if !c.workspace.HasTable() {
		return &grid.NoActiveTableError{Action: "save"}
	}
	doc := c.document(c.workspace.Table())

	path, err := export.ExportToFile(doc, c.exporter, fileName, c.opts.Export)
	if err != nil && path == "" {
		return err
	}
	if err != nil {
		// The file exists; only opening it failed.
		c.render.Warn("%v", err)
	}

	if c.journal != nil {
		rec := storage.SavedTable{
			SessionID: c.state.SessionID(),
			Name:      doc.Name,
			Path:      path,
			Format:    c.opts.Format,
			Records:   doc.Records,
			SavedAt:   c.opts.Now(),
		}
		if jerr := c.journal.RecordSave(context.Background(), rec); jerr != nil {
			c.logger.Warn("failed to journal save", zap.Error(jerr))
		}
	}

	if _, err := c.workspace.Release(); err != nil {
		return err
	}
	c.state.MarkClean()
	c.logger.Info("table saved", zap.String("path", path), zap.Int("rows", len(doc.Records)-1))
	c.render.Success(c.render.Labels().Saved, path)
	return nil
}

func (c *Controller) document(t *grid.Table) *export.Document {
	return &export.Document{
		Name:      t.Name(),
		Records:   t.Export(),
		SessionID: c.state.SessionID(),
		CreatedAt: c.opts.Now(),
	}
}

// autoSave writes a CSV draft when enough changes have accumulated.
func (c *Controller) autoSave() {
	if !c.state.ShouldAutoSave() || !c.workspace.HasTable() {
		return
	}
	if err := c.writeDraft(); err != nil {
		c.logger.Warn("autosave failed", zap.String("path", c.opts.DraftPath), zap.Error(err))
		return
	}
	c.state.AutoSaved()
}

func (c *Controller) writeDraft() error {
	content, err := c.drafts.Export(c.document(c.workspace.Table()))
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(c.opts.DraftPath, content, 0600); err != nil {
		return err
	}
	c.logger.Debug("draft written", zap.String("path", c.opts.DraftPath))
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// report renders an error. Domain errors are warnings; the session goes on.
func (c *Controller) report(err error) {
	switch {
	case grid.IsNoActiveTable(err):
		c.render.Warn(c.render.Labels().NoTable, c.interp.Keywords().Example(commands.KindCreateTable))
	case grid.IsUsage(err), grid.IsRange(err), grid.IsLookup(err), grid.IsEmptyHistory(err),
		errors.Is(err, grid.ErrRowFull):
		c.render.Warn("%v", err)
	default:
		c.render.Error(err)
	}
}

// =============================================================================
// JOURNAL
// =============================================================================

func (c *Controller) begin(ctx context.Context) {
	kw := c.interp.Keywords()
	c.render.Info(c.render.Labels().Banner, first(kw.Help))
	c.logger.Info("session started",
		zap.String("language", c.opts.Language),
		zap.String("input", c.opts.Input))

	if c.journal == nil {
		return
	}
	st := c.state.GetStatus()
	if err := c.journal.StartSession(ctx, st.journalRecord(c.opts.Language, c.opts.Input, time.Time{})); err != nil {
		c.logger.Warn("journal disabled for this session", zap.Error(err))
		c.journal = nil
	}
}

func (c *Controller) finish(ctx context.Context) {
	if c.state.IsDirty() && c.workspace.HasTable() && c.opts.DraftPath != "" {
		if err := c.writeDraft(); err != nil {
			c.logger.Warn("failed to write draft on exit", zap.Error(err))
		} else {
			c.render.Warn(c.render.Labels().Draft, c.workspace.Table().Name(), c.opts.DraftPath)
		}
	}

	st := c.state.GetStatus()
	if c.journal != nil {
		ctx = context.WithoutCancel(ctx)
		if err := c.journal.EndSession(ctx, st.journalRecord(c.opts.Language, c.opts.Input, c.opts.Now())); err != nil {
			c.logger.Warn("failed to journal session end", zap.Error(err))
		}
	}

	c.logger.Info("session ended",
		zap.String("duration", FormatDuration(st.Duration)),
		zap.Int("utterances", st.Utterances),
		zap.Int("applied", st.Applied),
		zap.Int("failed", st.Failed))
	c.render.Info("%s", c.render.Labels().Goodbye)
}

// record counts an utterance and journals it with the outcome err implies.
func (c *Controller) record(ctx context.Context, text string, kind commands.Kind, err error) {
	if err != nil {
		c.recordOutcome(ctx, text, kind, storage.OutcomeFailed, err.Error())
		return
	}
	c.recordOutcome(ctx, text, kind, storage.OutcomeApplied, "")
}

func (c *Controller) recordOutcome(ctx context.Context, text string, kind commands.Kind, outcome storage.Outcome, msg string) {
	seq := c.state.RecordUtterance(outcome)
	c.logger.Debug("utterance",
		zap.Int("seq", seq),
		zap.String("text", text),
		zap.String("kind", string(kind)),
		zap.String("outcome", string(outcome)))

	if c.journal == nil {
		return
	}
	u := storage.Utterance{
		SessionID: c.state.SessionID(),
		Seq:       seq,
		At:        c.opts.Now(),
		Text:      text,
		Kind:      string(kind),
		Outcome:   outcome,
		Message:   msg,
	}
	if err := c.journal.RecordUtterance(context.WithoutCancel(ctx), u); err != nil {
		c.logger.Warn("failed to journal utterance", zap.Error(err))
	}
}

func first(phrases []string) string {
	if len(phrases) == 0 {
		return ""
	}
	return phrases[0]
}
