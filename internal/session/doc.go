// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs the dictation loop.
//
// A Controller pulls one utterance at a time from a speech.Listener,
// interprets it, applies the resulting command to the undo workspace and
// renders the table. Save exports the table and releases it; pause ignores
// everything until the resume phrase; exit ends the loop.
//
// # Key Types
//
//   - Controller: The utterance loop
//   - Options: Export format, journal metadata and autosave settings
//   - State: Session id, counters and the dirty flag
//
// # Usage
//
//	ctrl, err := session.New(listener, interp, renderer, journal, logger, session.Options{
//	    Language: "en",
//	    Format:   "csv",
//	})
//	if err != nil {
//	    return err
//	}
//	return ctrl.Run(ctx)
package session
