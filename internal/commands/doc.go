// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands turns recognized utterances into structured edit commands.
//
// An utterance is matched against an ordered list of keyword rules; the
// first rule whose phrase occurs in the utterance on word boundaries wins and
// parses its arguments. Unmatched utterances become cell values after number
// words are normalized.
//
// # Key Types
//
//   - Command: sealed sum type of edit intents (CreateTable, SetValue, ...)
//   - Interpreter: the ordered rule table for one language
//   - Keywords: trigger phrases and argument markers per language
//   - Catalog: numbered table templates, built-in or loaded from YAML
//   - Completer: tab completion for the console line editor
//
// # Usage
//
//	in := commands.NewInterpreter(commands.EnglishKeywords(), normalizer, catalog)
//	cmd, err := in.Interpret("edit row two column score", table.Headers())
//	switch c := cmd.(type) {
//	case commands.EditAt:
//	    ...
//	}
package commands
