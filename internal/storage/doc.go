// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session journal for voxtable.
//
// The journal is a SQLite database (pure Go driver) recording every session,
// each utterance with the command it was interpreted as and its outcome,
// and a copy of every table that was saved. It is an audit log: tables are
// never reloaded from it into an editing session.
//
// # Key Types
//
//   - Journal: Handle on the database
//   - Session, Utterance, SavedTable: Journaled records
//   - SessionMeta: Listing view used by the history command
//
// # Usage
//
//	j, err := storage.Open(cfg.Journal.Path)
//	defer j.Close()
//	err = j.StartSession(ctx, storage.Session{ID: id, Language: "en", Input: "console"})
//	err = j.RecordUtterance(ctx, storage.Utterance{SessionID: id, Seq: 1, Text: "next row"})
//
// # Storage Location
//
// The journal lives in ~/.voxtable/journal.db unless configured otherwise.
package storage
