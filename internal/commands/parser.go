// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"slices"
	"strings"
)

// =============================================================================
// PHRASES
// =============================================================================

// phrase is a keyword split into words.
type phrase []string

// phrases splits every alternative into words, dropping empty ones.
func phrases(alternatives []string) []phrase {
	out := make([]phrase, 0, len(alternatives))
	for _, alt := range alternatives {
		if words := strings.Fields(strings.ToLower(alt)); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

// =============================================================================
// UTTERANCE
// =============================================================================

// utterance is one tokenized input together with the active headers.
type utterance struct {
	text    string
	words   []string
	headers []string // nil when no table is active
}

// find returns the word index and length of the earliest occurrence of any
// alternative at or after from, or -1.
func (u *utterance) find(alternatives []phrase, from int) (int, int) {
	for i := max(from, 0); i < len(u.words); i++ {
		for _, p := range alternatives {
			if i+len(p) <= len(u.words) && slices.Equal(u.words[i:i+len(p)], p) {
				return i, len(p)
			}
		}
	}
	return -1, 0
}

// has reports whether any alternative occurs on word boundaries.
func (u *utterance) has(alternatives []phrase) bool {
	i, _ := u.find(alternatives, 0)
	return i >= 0
}

// after returns the words following the first occurrence of any alternative
// at or after from, and the index right after the match.
func (u *utterance) after(alternatives []phrase, from int) ([]string, int, bool) {
	i, n := u.find(alternatives, from)
	if i < 0 {
		return nil, -1, false
	}
	return u.words[i+n:], i + n, true
}

// join renders a word slice back into text.
func join(words []string) string {
	return strings.Join(words, " ")
}
