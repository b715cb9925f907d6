// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Browse the session journal.

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/voxtable/internal/storage"
	"github.com/jeranaias/voxtable/internal/util"
)

func newHistoryCommand(g *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [session]",
		Short: "List past sessions or show one in detail",
		Long: `Lists the sessions recorded in the journal, newest first.

With a session id (or a unique prefix of one) every utterance of that
session is shown together with the tables it saved.

Examples:
  voxtable history
  voxtable history --limit 5
  voxtable history 3f2a`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := g.openJournal()
			if err != nil {
				return err
			}
			defer journal.Close()

			if len(args) == 0 {
				return listSessions(cmd, g, journal, limit)
			}
			return showSession(cmd, g, journal, args[0])
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to list (0 for all)")
	return cmd
}

// openJournal opens the journal named by the config.
func (g *globalOptions) openJournal() (*storage.Journal, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, &CommandError{Command: "history", Action: "open journal", Err: errors.New("the journal is disabled (journal.enabled = false)")}
	}
	journal, err := storage.Open(cfg.Journal.Path)
	if err != nil {
		return nil, &CommandError{Command: "history", Action: "open journal", Err: err}
	}
	return journal, nil
}

func listSessions(cmd *cobra.Command, g *globalOptions, journal *storage.Journal, limit int) error {
	sessions, err := journal.Sessions(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if g.jsonOut {
		data := make([]SessionData, len(sessions))
		for i, s := range sessions {
			data[i] = sessionData(s)
		}
		return NewJSONResponse("history", data).Print(out)
	}

	fmt.Fprint(out, storage.FormatSessionList(sessions))
	return nil
}

func showSession(cmd *cobra.Command, g *globalOptions, journal *storage.Journal, prefix string) error {
	ctx := cmd.Context()
	id, err := journal.FindSession(ctx, prefix)
	if err != nil {
		return err
	}

	sessions, err := journal.Sessions(ctx, 0)
	if err != nil {
		return err
	}
	var meta storage.SessionMeta
	for _, s := range sessions {
		if s.ID == id {
			meta = s
			break
		}
	}

	utterances, err := journal.Utterances(ctx, id)
	if err != nil {
		return err
	}
	saved, err := journal.SavedTables(ctx, id)
	if err != nil {
		return err
	}

	detail := SessionDetailData{
		Session:    sessionData(meta),
		Utterances: make([]UtteranceData, len(utterances)),
		Saved:      make([]SavedTableData, len(saved)),
	}
	for i, u := range utterances {
		detail.Utterances[i] = UtteranceData{
			Seq:     u.Seq,
			At:      u.At,
			Text:    u.Text,
			Kind:    u.Kind,
			Outcome: string(u.Outcome),
			Message: u.Message,
		}
	}
	for i, t := range saved {
		detail.Saved[i] = SavedTableData{
			Name:    t.Name,
			Path:    t.Path,
			Format:  t.Format,
			Records: t.Records,
			SavedAt: t.SavedAt,
		}
	}

	out := cmd.OutOrStdout()
	if g.jsonOut {
		return NewJSONResponse("history", detail).Print(out)
	}
	printSessionDetail(out, detail)
	return nil
}

func printSessionDetail(w io.Writer, d SessionDetailData) {
	st := styles(w)
	s := d.Session

	fmt.Fprintln(w, st.title.Render("Session "+s.ID))
	fmt.Fprintln(w, st.rule(64))
	fmt.Fprintf(w, "%s %s\n", st.label.Render(util.PadRight("Started:", 12)), st.value.Render(s.StartedAt.Format("2006-01-02 15:04:05")))
	if s.EndedAt != nil {
		fmt.Fprintf(w, "%s %s\n", st.label.Render(util.PadRight("Duration:", 12)), st.value.Render(s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()))
	}
	fmt.Fprintf(w, "%s %s\n", st.label.Render(util.PadRight("Language:", 12)), st.value.Render(s.Language))
	fmt.Fprintf(w, "%s %s\n", st.label.Render(util.PadRight("Input:", 12)), st.value.Render(s.Input))
	fmt.Fprintf(w, "%s %d heard, %d applied, %d failed\n", st.label.Render(util.PadRight("Utterances:", 12)), s.Utterances, s.Applied, s.Failed)

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.section.Render("Utterances"))
	for _, u := range d.Utterances {
		line := util.PadRight(util.IntToString(u.Seq), 4) + " " +
			u.At.Format("15:04:05") + " " +
			util.PadRight(u.Outcome, 8) + " " +
			util.PadRight(u.Kind, 20) + " " + u.Text
		switch u.Outcome {
		case string(storage.OutcomeFailed):
			fmt.Fprintln(w, st.err.Render(line))
			fmt.Fprintln(w, st.dim.Render("     "+u.Message))
		case string(storage.OutcomeIgnored):
			fmt.Fprintln(w, st.dim.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}

	if len(d.Saved) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.section.Render("Saved tables"))
	for _, t := range d.Saved {
		rows := len(t.Records) - 1
		fmt.Fprintf(w, "%s  %s (%s, %d rows, columns: %s)\n",
			st.success.Render(t.Name), t.Path, t.Format, rows, strings.Join(t.Records[0], ", "))
	}
}

func sessionData(s storage.SessionMeta) SessionData {
	d := SessionData{
		ID:         s.ID,
		StartedAt:  s.StartedAt,
		Language:   s.Language,
		Input:      s.Input,
		Utterances: s.Utterances,
		Applied:    s.Applied,
		Failed:     s.Failed,
		Saved:      s.Saved,
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		d.EndedAt = &ended
	}
	return d
}
