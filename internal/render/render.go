// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render draws the active table, the cursor status line and
// session messages to the terminal.
//
// Output is plain text whenever the destination is not a terminal or
// NO_COLOR is set, so scripted runs produce stable transcripts.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jeranaias/voxtable/internal/commands"
	"github.com/jeranaias/voxtable/internal/grid"
	"github.com/jeranaias/voxtable/internal/util"
	"github.com/muesli/termenv"
)

// DefaultMaxCellWidth bounds the display width of one cell.
const DefaultMaxCellWidth = 24

// Renderer writes everything the user sees.
type Renderer struct {
	out    io.Writer
	labels Labels
	color  bool
	width  int

	// MaxCellWidth truncates long values in the grid.
	MaxCellWidth int

	lg     *lipgloss.Renderer
	styles styles
}

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	cell    lipgloss.Style
	cursor  lipgloss.Style
	border  lipgloss.Style
	status  lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
}

// New creates a renderer for out, detecting color support.
func New(out io.Writer, labels Labels) *Renderer {
	r := &Renderer{
		out:          out,
		labels:       labels,
		width:        Width(out),
		MaxCellWidth: DefaultMaxCellWidth,
	}
	r.SetColor(ColorsEnabled(out))
	return r
}

// SetColor switches colored output on or off.
func (r *Renderer) SetColor(enabled bool) {
	r.color = enabled
	r.lg = lipgloss.NewRenderer(r.out)
	if enabled {
		r.lg.SetColorProfile(ColorProfile(r.out))
		if r.lg.ColorProfile() == termenv.Ascii {
			r.lg.SetColorProfile(termenv.ANSI256)
		}
	} else {
		r.lg.SetColorProfile(termenv.Ascii)
	}
	r.styles = newStyles(r.lg)
}

// Labels returns the renderer's labels.
func (r *Renderer) Labels() Labels { return r.labels }

func newStyles(lg *lipgloss.Renderer) styles {
	return styles{
		title:   lg.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header:  lg.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 1),
		label:   lg.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		cell:    lg.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
		cursor:  lg.NewStyle().Reverse(true).Padding(0, 1),
		border:  lg.NewStyle().Foreground(lipgloss.Color("240")),
		status:  lg.NewStyle().Foreground(lipgloss.Color("245")),
		info:    lg.NewStyle().Foreground(lipgloss.Color("252")),
		success: lg.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warning: lg.NewStyle().Foreground(lipgloss.Color("214")),
		err:     lg.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// =============================================================================
// TABLE
// =============================================================================

// RowLabel returns the display label of a 0-based row.
func (r *Renderer) RowLabel(row int) string {
	return fmt.Sprintf("%s %d", r.labels.Row, row+1)
}

// TableString renders the grid with a label column and the cursor cell
// highlighted.
func (r *Renderer) TableString(v grid.View) string {
	headers := make([]string, 0, len(v.Headers)+1)
	headers = append(headers, "")
	for _, h := range v.Headers {
		headers = append(headers, util.TruncateWidth(h, r.MaxCellWidth))
	}

	rows := make([][]string, len(v.Rows))
	for i, row := range v.Rows {
		line := make([]string, 0, len(row)+1)
		line = append(line, r.RowLabel(i))
		for _, cell := range row {
			line = append(line, util.TruncateWidth(cell, r.MaxCellWidth))
		}
		rows[i] = line
	}

	st := r.styles
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case col == 0:
				return st.label
			case row == v.Cursor.Row && col-1 == v.Cursor.Col:
				return st.cursor
			default:
				return st.cell
			}
		})

	return st.title.Render(v.Name) + "\n" + t.String()
}

// StatusLine returns "Position: Row N, <column>".
func (r *Renderer) StatusLine(v grid.View) string {
	column := v.CursorColumn
	if column == "" {
		column = r.labels.RowFull
	}
	return fmt.Sprintf("%s: %s, %s", r.labels.Position, r.RowLabel(v.Cursor.Row), column)
}

// Show prints the table followed by the status line.
func (r *Renderer) Show(v grid.View) {
	fmt.Fprintln(r.out, r.TableString(v))
	fmt.Fprintln(r.out, r.styles.status.Render(r.StatusLine(v)))
}

// =============================================================================
// MESSAGES
// =============================================================================

// Info prints a neutral message.
func (r *Renderer) Info(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.styles.info.Render(fmt.Sprintf(format, args...)))
}

// Success prints a confirmation.
func (r *Renderer) Success(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.styles.success.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a recoverable problem.
func (r *Renderer) Warn(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.styles.warning.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, r.styles.err.Render(err.Error()))
}

// =============================================================================
// HELP AND TEMPLATES
// =============================================================================

// HelpMarkdown builds the command reference as a Markdown table.
func (r *Renderer) HelpMarkdown(usage []commands.Usage) string {
	var sb strings.Builder
	sb.WriteString("# " + r.labels.HelpTitle + "\n\n")
	sb.WriteString("| | |\n|---|---|\n")
	for _, u := range usage {
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", u.Example, u.Description))
	}
	return sb.String()
}

// Help prints the command reference through glamour, falling back to the
// raw Markdown when it cannot be rendered.
func (r *Renderer) Help(usage []commands.Usage) {
	md := r.HelpMarkdown(usage)

	style := "notty"
	if r.color {
		style = "dark"
		if !termenv.HasDarkBackground() {
			style = "light"
		}
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		fmt.Fprint(r.out, md)
		return
	}
	out, err := tr.Render(md)
	if err != nil {
		fmt.Fprint(r.out, md)
		return
	}
	fmt.Fprint(r.out, out)
}

// Templates prints the template catalogue.
func (r *Renderer) Templates(templates []commands.Template) {
	rows := make([][]string, len(templates))
	for i, tpl := range templates {
		rows[i] = []string{
			util.IntToString(tpl.ID),
			tpl.Name,
			util.TruncateWidth(strings.Join(tpl.Headers, ", "), r.width/2),
		}
	}

	st := r.styles
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers(r.labels.TemplateID, r.labels.Name, r.labels.Columns).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return st.cell
		})

	fmt.Fprintln(r.out, st.title.Render(r.labels.Templates))
	fmt.Fprintln(r.out, t.String())
}
