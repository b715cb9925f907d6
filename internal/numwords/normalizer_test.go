// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package numwords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_English(t *testing.T) {
	n := New(English())

	tests := []struct {
		input string
		want  string
	}{
		// Runs and tens+units.
		{"twenty eight", "28"},
		{"seven", "7"},
		{"Twenty Eight", "28"},
		{"twenty-eight", "28"},
		{"one hundred twenty three", "123"},
		{"two thousand five hundred", "2500"},

		// Idiom.
		{"one and a half", "1,5"},
		{"one and a half kilos", "1,5 kilos"},

		// Literal decimal pair.
		{"four and three", "4,3"},
		{"twenty and five", "20,5"},
		{"four and three tenths", "4,3"},
		{"four and twenty five hundredths", "4,25"},
		{"four and three hundredths", "4,03"},
		{"four and three apples", "4,3 apples"},

		// Integer + fraction + scale.
		{"twenty eight point three", "28,3"},
		{"twenty eight point three tenths", "28,3"},
		{"twenty eight whole three hundredths", "28,03"},
		{"one point five thousandths", "1,005"},
		{"two point twelve", "2,12"},

		// Digits pass through with the canonical separator.
		{"3.14", "3,14"},
		{"42", "42"},
		{"1,5", "1,5"},

		// Everything else is untouched and order is kept.
		{"alice", "alice"},
		{"room twenty one east", "room 21 east"},
		{"point", "point"},
		{"and", "and"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.input))
		})
	}
}

func TestNormalize_Russian(t *testing.T) {
	n := New(Russian())

	tests := []struct {
		input string
		want  string
	}{
		{"двадцать восемь", "28"},
		{"полтора", "1,5"},
		{"полторы тонны", "1,5 тонны"},
		{"четыре и три", "4,3"},
		{"четыре и три десятых", "4,3"},
		{"четыре и двадцать пять сотых", "4,25"},
		{"двадцать восемь целых три десятых", "28,3"},
		{"три целых пять сотых", "3,05"},
		{"сто двадцать три", "123"},
		{"две тысячи", "2000"},
		{"иванов", "иванов"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.input))
		})
	}
}

func TestNormalize_ScaleWordNotConsumedWhenAbsent(t *testing.T) {
	n := New(English())
	assert.Equal(t, "28,3 apples", n.Normalize("twenty eight point three apples"))
}

func TestNormalize_UnknownTriggerFallsBack(t *testing.T) {
	vocab := English()
	// A multiplier-only vocabulary word still yields a number, and a
	// conjunction without a right-hand cardinal is left alone.
	n := New(vocab)
	assert.Equal(t, "100", n.Normalize("hundred"))
	assert.Equal(t, "4 and apples", n.Normalize("four and apples"))
}

func TestInteger(t *testing.T) {
	n := New(English())

	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"twenty one column name", 21, true},
		{"3", 3, true},
		{"three", 3, true},
		{"", 0, false},
		{"name", 0, false},
		{"one point five", 0, false},
	}

	for _, tc := range tests {
		got, ok := n.Integer(tc.input)
		assert.Equal(t, tc.ok, ok, "Integer(%q) ok", tc.input)
		assert.Equal(t, tc.want, got, "Integer(%q)", tc.input)
	}
}

func TestForLanguage(t *testing.T) {
	for _, lang := range Languages() {
		v, err := ForLanguage(lang)
		require.NoError(t, err)
		require.NoError(t, v.Validate())
		assert.Equal(t, lang, v.Language)
	}

	_, err := ForLanguage("tlh")
	assert.Error(t, err)
}
