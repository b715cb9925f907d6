// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package numwords

import (
	"fmt"
	"strings"
)

// =============================================================================
// VOCABULARY
// =============================================================================

// Vocabulary holds the number words of one spoken language.
type Vocabulary struct {
	// Language is the short language code ("en", "ru").
	Language string

	// Cardinals maps a cardinal word to its value.
	Cardinals map[string]int

	// Multipliers scale the running group ("hundred", "thousand").
	Multipliers map[string]int

	// Idioms are word sequences that mean one and a half.
	Idioms [][]string

	// FractionMarkers separate the integer and fractional runs ("point").
	FractionMarkers []string

	// Conjunctions join a literal decimal pair ("four and three").
	Conjunctions []string

	// Scales give the fraction width ("hundredths" -> 2).
	Scales map[string]int
}

// Languages lists the built-in vocabularies.
func Languages() []string {
	return []string{"en", "ru"}
}

// ForLanguage returns the built-in vocabulary for a language code.
func ForLanguage(lang string) (*Vocabulary, error) {
	switch strings.ToLower(lang) {
	case "", "en", "english":
		return English(), nil
	case "ru", "russian":
		return Russian(), nil
	default:
		return nil, fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(Languages(), ", "))
	}
}

// English returns the English number vocabulary.
func English() *Vocabulary {
	return &Vocabulary{
		Language: "en",
		Cardinals: map[string]int{
			"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
			"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
			"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
			"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
			"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
			"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
		},
		Multipliers: map[string]int{
			"hundred":  100,
			"thousand": 1000,
		},
		Idioms: [][]string{
			{"one", "and", "a", "half"},
			{"one-and-a-half"},
		},
		FractionMarkers: []string{"point", "whole"},
		Conjunctions:    []string{"and"},
		Scales: map[string]int{
			"tenth": 1, "tenths": 1,
			"hundredth": 2, "hundredths": 2,
			"thousandth": 3, "thousandths": 3,
		},
	}
}

// Russian returns the Russian number vocabulary, including the feminine and
// accusative forms a recognizer produces for "one" and "two".
func Russian() *Vocabulary {
	return &Vocabulary{
		Language: "ru",
		Cardinals: map[string]int{
			"ноль": 0, "нуль": 0,
			"один": 1, "одна": 1, "одну": 1, "одно": 1,
			"два": 2, "две": 2, "три": 3, "четыре": 4, "пять": 5,
			"шесть": 6, "семь": 7, "восемь": 8, "девять": 9, "десять": 10,
			"одиннадцать": 11, "двенадцать": 12, "тринадцать": 13, "четырнадцать": 14,
			"пятнадцать": 15, "шестнадцать": 16, "семнадцать": 17, "восемнадцать": 18,
			"девятнадцать": 19,
			"двадцать": 20, "тридцать": 30, "сорок": 40, "пятьдесят": 50,
			"шестьдесят": 60, "семьдесят": 70, "восемьдесят": 80, "девяносто": 90,
			"сто": 100, "двести": 200, "триста": 300, "четыреста": 400, "пятьсот": 500,
			"шестьсот": 600, "семьсот": 700, "восемьсот": 800, "девятьсот": 900,
		},
		Multipliers: map[string]int{
			"тысяча": 1000, "тысячи": 1000, "тысяч": 1000,
		},
		Idioms: [][]string{
			{"полтора"},
			{"полторы"},
		},
		FractionMarkers: []string{"целых", "целая"},
		Conjunctions:    []string{"и"},
		Scales: map[string]int{
			"десятых": 1, "десятая": 1,
			"сотых": 2, "сотая": 2,
			"тысячных": 3, "тысячная": 3,
		},
	}
}

// Validate checks that the vocabulary can drive a normalizer.
func (v *Vocabulary) Validate() error {
	if len(v.Cardinals) == 0 {
		return fmt.Errorf("vocabulary %q: no cardinal words", v.Language)
	}
	for word, width := range v.Scales {
		if width < 1 {
			return fmt.Errorf("vocabulary %q: scale %q has width %d", v.Language, word, width)
		}
	}
	for _, idiom := range v.Idioms {
		if len(idiom) == 0 {
			return fmt.Errorf("vocabulary %q: empty idiom", v.Language)
		}
	}
	return nil
}
