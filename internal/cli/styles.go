// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Styling for command output outside the session view.
//
// Colors follow the destination writer: disabled when it is not a terminal
// or NO_COLOR is set, forced on by FORCE_COLOR.

package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/voxtable/internal/render"
)

// cliStyles holds the styles bound to one writer.
type cliStyles struct {
	title     lipgloss.Style
	section   lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	success   lipgloss.Style
	err       lipgloss.Style
	warning   lipgloss.Style
	dim       lipgloss.Style
	separator lipgloss.Style
}

// styles returns styles rendering for w.
func styles(w io.Writer) cliStyles {
	r := lipgloss.NewRenderer(w)
	if render.ColorsEnabled(w) {
		r.SetColorProfile(render.ColorProfile(w))
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return cliStyles{
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		section:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		label:     r.NewStyle().Foreground(lipgloss.Color("245")),
		value:     r.NewStyle().Foreground(lipgloss.Color("252")),
		success:   r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		err:       r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warning:   r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:       r.NewStyle().Foreground(lipgloss.Color("242")),
		separator: r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// rule renders a horizontal rule of the given width.
func (s cliStyles) rule(width int) string {
	if width <= 0 {
		width = 40
	}
	return s.separator.Render(strings.Repeat("-", width))
}
