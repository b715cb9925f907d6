// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package numwords rewrites spoken number words into digit tokens.
package numwords

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DecimalSeparator is the one decimal marker every value is written with.
const DecimalSeparator = ","

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer replaces runs of number words with canonical numeric tokens.
// It is stateless after construction and safe for concurrent use.
type Normalizer struct {
	vocab *Vocabulary
	tag   language.Tag
}

// New creates a normalizer for the given vocabulary.
func New(vocab *Vocabulary) *Normalizer {
	tag, err := language.Parse(vocab.Language)
	if err != nil {
		tag = language.Und
	}
	return &Normalizer{vocab: vocab, tag: tag}
}

// Vocabulary returns the vocabulary the normalizer was built with.
func (n *Normalizer) Vocabulary() *Vocabulary { return n.vocab }

// Normalize rewrites text, keeping every non-number word in place.
//
// Rules, first match wins at each position:
//  1. the "one and a half" idiom becomes 1,5
//  2. a run of cardinals is summed ("twenty eight" -> 28)
//  3. run, fraction marker, run and optional scale -> 28,3 / 28,03
//  4. "four and three" becomes the literal pair 4,3; with a longer right-hand
//     run or a scale word the conjunction acts as a fraction marker
//  5. digit tokens keep their value with the separator normalized
func (n *Normalizer) Normalize(text string) string {
	words := n.Tokenize(text)
	out := make([]string, 0, len(words))

	for i := 0; i < len(words); {
		if k := n.idiomAt(words, i); k > 0 {
			out = append(out, "1"+DecimalSeparator+"5")
			i += k
			continue
		}

		word := words[i]
		switch {
		case n.isTrigger(word):
			token, next := n.number(words, i)
			out = append(out, token)
			i = next
		case isNumeric(word):
			out = append(out, strings.ReplaceAll(word, ".", DecimalSeparator))
			i++
		default:
			out = append(out, word)
			i++
		}
	}

	return strings.Join(out, " ")
}

// Integer normalizes text and parses its first token as an integer.
// "twenty one column name" -> 21, true.
func (n *Normalizer) Integer(text string) (int, bool) {
	fields := strings.Fields(n.Normalize(text))
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return v, true
}

// Tokenize lower-cases and NFC-normalizes text, then splits it into words.
// Hyphenated compounds made only of number words are split ("twenty-eight").
func (n *Normalizer) Tokenize(text string) []string {
	text = cases.Lower(n.tag).String(norm.NFC.String(text))
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if parts := strings.Split(f, "-"); len(parts) > 1 && n.allTriggers(parts) {
			words = append(words, parts...)
			continue
		}
		words = append(words, f)
	}
	return words
}

// =============================================================================
// NUMBER PARSING
// =============================================================================

// number parses the number starting at words[i] and returns its token and
// the index after it.
func (n *Normalizer) number(words []string, i int) (string, int) {
	// Single word, conjunction, number. One bare cardinal on the right is the
	// literal pair "4,3"; a longer run or a scale word makes the conjunction
	// a fraction marker ("four and twenty five hundredths" -> 4,25).
	if i+2 < len(words) && slices.Contains(n.vocab.Conjunctions, words[i+1]) {
		if left, ok := n.vocab.Cardinals[words[i]]; ok && n.isTrigger(words[i+2]) {
			right, single := n.vocab.Cardinals[words[i+2]]
			if frac, k, ok := n.run(words, i+2); ok {
				if token, next, scaled := n.fraction(left, frac, words, k); scaled || k > i+3 {
					return token, next
				}
				if single {
					return fmt.Sprintf("%d%s%d", left, DecimalSeparator, right), i + 3
				}
			}
		}
	}

	whole, j, ok := n.run(words, i)
	if !ok {
		return words[i], i + 1
	}

	if j+1 < len(words) && slices.Contains(n.vocab.FractionMarkers, words[j]) && n.isTrigger(words[j+1]) {
		if frac, k, ok := n.run(words, j+1); ok {
			token, next, _ := n.fraction(whole, frac, words, k)
			return token, next
		}
	}

	return strconv.Itoa(whole), j
}

// fraction formats whole,frac, padding frac to the width of the scale word at
// words[k] when there is one (default width 1). It returns the index after
// the consumed words and whether a scale word was found.
func (n *Normalizer) fraction(whole, frac int, words []string, k int) (string, int, bool) {
	width, scaled := 1, false
	if k < len(words) {
		if w, found := n.vocab.Scales[words[k]]; found {
			width, scaled = w, true
			k++
		}
	}
	return fmt.Sprintf("%d%s%0*d", whole, DecimalSeparator, width, frac), k, scaled
}

// run sums consecutive number words starting at words[i]. A tens word
// directly followed by a units word is combined first; multipliers scale the
// group collected so far. ok is false when words[i] has no value.
func (n *Normalizer) run(words []string, i int) (value, next int, ok bool) {
	total, group := 0, 0
	j := i

	for j < len(words) {
		word := words[j]

		if m, found := n.vocab.Multipliers[word]; found {
			if group == 0 {
				group = 1
			}
			group *= m
			if m >= 1000 {
				total += group
				group = 0
			}
			j++
			ok = true
			continue
		}

		v, found := n.vocab.Cardinals[word]
		if !found {
			break
		}
		if isTens(v) && j+1 < len(words) {
			if u, found := n.vocab.Cardinals[words[j+1]]; found && u >= 1 && u <= 9 {
				v += u
				j++
			}
		}
		group += v
		j++
		ok = true
	}

	return total + group, j, ok
}

// idiomAt returns the length of the idiom starting at words[i], or 0.
func (n *Normalizer) idiomAt(words []string, i int) int {
	for _, idiom := range n.vocab.Idioms {
		if i+len(idiom) <= len(words) && slices.Equal(words[i:i+len(idiom)], idiom) {
			return len(idiom)
		}
	}
	return 0
}

// =============================================================================
// HELPERS
// =============================================================================

func (n *Normalizer) isTrigger(word string) bool {
	if _, ok := n.vocab.Cardinals[word]; ok {
		return true
	}
	_, ok := n.vocab.Multipliers[word]
	return ok
}

func (n *Normalizer) allTriggers(words []string) bool {
	for _, w := range words {
		if !n.isTrigger(w) {
			return false
		}
	}
	return true
}

func isTens(v int) bool {
	return v >= 20 && v <= 90 && v%10 == 0
}

// isNumeric reports whether word is digits with optional '.' or ',' marks.
func isNumeric(word string) bool {
	digits := 0
	for _, r := range word {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return digits > 0
}
