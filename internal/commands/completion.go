// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETION
// =============================================================================

// Completion is a single completion candidate.
type Completion struct {
	// Value is the full line after accepting the completion
	Value string

	// Display is the word being completed
	Display string

	// Description explains the candidate
	Description string

	// Score for ranking (higher = better match)
	Score int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer offers tab completion for typed utterances: command phrases at
// the start of a line and column names after the column marker.
type Completer struct {
	keywords *Keywords

	// HeadersFn returns the active table headers, or nil.
	HeadersFn func() []string
}

// NewCompleter creates a completer for a keyword set.
func NewCompleter(keywords *Keywords) *Completer {
	return &Completer{keywords: keywords}
}

// Complete returns ranked completions for a partially typed line.
func (c *Completer) Complete(line string) []Completion {
	lower := strings.ToLower(line)
	fields := strings.Fields(lower)
	trailingSpace := strings.HasSuffix(lower, " ")

	// Column names after "... column".
	if c.HeadersFn != nil {
		if headers := c.HeadersFn(); headers != nil {
			if comps := c.completeColumn(line, fields, trailingSpace, headers); comps != nil {
				return comps
			}
		}
	}

	return c.completePhrases(lower)
}

// Lines adapts Complete to the line editor's completer signature.
func (c *Completer) Lines(line string) []string {
	comps := c.Complete(line)
	out := make([]string, len(comps))
	for i, comp := range comps {
		out[i] = comp.Value
	}
	return out
}

// completePhrases completes the whole line against command phrases.
func (c *Completer) completePhrases(lower string) []Completion {
	partial := strings.TrimLeft(lower, " ")
	if partial == "" {
		return nil
	}

	var completions []Completion
	seen := make(map[string]bool)
	for _, entry := range c.candidates() {
		if seen[entry.phrase] || !strings.HasPrefix(entry.phrase, partial) || entry.phrase == partial {
			continue
		}
		seen[entry.phrase] = true
		completions = append(completions, Completion{
			Value:       entry.phrase + entry.suffix,
			Display:     entry.phrase,
			Description: entry.description,
			Score:       calculateScore(entry.phrase, partial),
		})
	}

	sortCompletions(completions)
	return completions
}

// completeColumn completes the word after the column marker.
func (c *Completer) completeColumn(line string, fields []string, trailingSpace bool, headers []string) []Completion {
	markerAt := -1
	for i, f := range fields {
		for _, m := range c.keywords.ColumnMarker {
			if f == m {
				markerAt = i
			}
		}
	}
	if markerAt < 0 {
		return nil
	}

	partial := ""
	switch {
	case markerAt == len(fields)-1 && trailingSpace:
	case markerAt == len(fields)-2 && !trailingSpace:
		partial = fields[len(fields)-1]
	default:
		return nil
	}

	prefix := strings.TrimSuffix(line, partial)
	return c.completeFromList(prefix, headers, partial)
}

// completeFromList returns completions of partial from values.
func (c *Completer) completeFromList(prefix string, values []string, partial string) []Completion {
	var completions []Completion

	partial = strings.ToLower(partial)

	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), partial) {
			completions = append(completions, Completion{
				Value:   prefix + value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}

	sortCompletions(completions)
	return completions
}

type candidate struct {
	phrase      string
	suffix      string
	description string
}

// candidates lists every trigger phrase with the help text of its command.
func (c *Completer) candidates() []candidate {
	kw := c.keywords
	groups := []struct {
		kind    Kind
		phrases []string
		suffix  string
	}{
		{KindPause, kw.Pause, ""},
		{KindExit, kw.Exit, ""},
		{KindHelp, kw.Help, ""},
		{KindCreateFromTemplate, kw.Template, " "},
		{KindCreateTable, kw.CreateTable, " "},
		{KindNextRow, kw.NextRow, ""},
		{KindSkipCell, kw.SkipCell, ""},
		{KindUndo, kw.Undo, ""},
		{KindInsertRow, kw.InsertRow, " "},
		{KindSave, kw.Save, ""},
		{KindEditAt, kw.Edit, " "},
		{KindReturnToPrevious, kw.Return, ""},
		{KindDeleteRow, kw.DeleteRow, " "},
	}

	var out []candidate
	for _, g := range groups {
		desc := ""
		for _, u := range kw.Usage {
			if u.Kind == g.kind {
				desc = u.Description
			}
		}
		for _, p := range g.phrases {
			out = append(out, candidate{phrase: p, suffix: g.suffix, description: desc})
		}
	}
	return out
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100

	// Exact match
	if value == partial {
		return score + 100
	}

	// Prefix match bonus
	if strings.HasPrefix(value, partial) {
		score += 50
		// Bonus for shorter completions
		score += 20 - len([]rune(value))
	}

	// Length penalty
	score -= len([]rune(value)) / 2

	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}
