// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// =============================================================================
// JOURNAL TESTS
// =============================================================================

func TestOpen_CreatesSchema(t *testing.T) {
	j := openTestJournal(t)

	v, err := j.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", v, SchemaVersion)
	}

	// Reopening an existing journal keeps working.
	path := j.Path()
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	again.Close()
}

func TestJournal_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	sess := Session{ID: "3f2b7c1e-aaaa", StartedAt: start, Language: "en", Input: "script"}
	if err := j.StartSession(ctx, sess); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	utterances := []Utterance{
		{SessionID: sess.ID, Seq: 1, At: start, Text: "create table scores columns name score", Kind: "create_table", Outcome: OutcomeApplied},
		{SessionID: sess.ID, Seq: 2, At: start.Add(time.Second), Text: "edit row nine column name", Kind: "edit_at", Outcome: OutcomeFailed, Message: "row 9 is out of range"},
		{SessionID: sess.ID, Seq: 3, At: start.Add(2 * time.Second), Text: "hello", Kind: "", Outcome: OutcomeIgnored},
	}
	for _, u := range utterances {
		if err := j.RecordUtterance(ctx, u); err != nil {
			t.Fatalf("RecordUtterance failed: %v", err)
		}
	}

	saved := SavedTable{
		SessionID: sess.ID,
		Name:      "scores",
		Path:      "/tmp/scores.csv",
		Format:    "csv",
		Records:   [][]string{{"name", "score"}, {"alice", "28"}},
		SavedAt:   start.Add(3 * time.Second),
	}
	if err := j.RecordSave(ctx, saved); err != nil {
		t.Fatalf("RecordSave failed: %v", err)
	}

	sess.EndedAt = start.Add(time.Minute)
	sess.Utterances, sess.Applied, sess.Failed = 3, 1, 1
	if err := j.EndSession(ctx, sess); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	gotUtterances, err := j.Utterances(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(utterances, gotUtterances, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("Utterances mismatch (-want +got):\n%s", diff)
	}

	gotSaved, err := j.SavedTables(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotSaved) != 1 || !cmp.Equal(saved.Records, gotSaved[0].Records) {
		t.Errorf("SavedTables = %+v", gotSaved)
	}

	metas, err := j.Sessions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 {
		t.Fatalf("Sessions returned %d entries, want 1", len(metas))
	}
	m := metas[0]
	if m.Utterances != 3 || m.Applied != 1 || m.Failed != 1 || m.Saved != 1 {
		t.Errorf("unexpected counters: %+v", m)
	}
	if !m.EndedAt.Equal(sess.EndedAt) {
		t.Errorf("EndedAt = %v, want %v", m.EndedAt, sess.EndedAt)
	}
}

func TestJournal_SessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"aaaa-1", "bbbb-2", "cccc-3"} {
		if err := j.StartSession(ctx, Session{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Language: "en", Input: "console"}); err != nil {
			t.Fatal(err)
		}
	}

	metas, err := j.Sessions(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 || metas[0].ID != "cccc-3" || metas[1].ID != "bbbb-2" {
		t.Errorf("Sessions order = %+v", metas)
	}
	if !metas[0].EndedAt.IsZero() {
		t.Error("running session should have zero EndedAt")
	}

	all, err := j.Sessions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("Sessions(0) returned %d entries, want 3", len(all))
	}
}

func TestJournal_FindSession(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	for _, id := range []string{"abc-111", "abd-222"} {
		if err := j.StartSession(ctx, Session{ID: id, Language: "en", Input: "console"}); err != nil {
			t.Fatal(err)
		}
	}

	id, err := j.FindSession(ctx, "abc")
	if err != nil || id != "abc-111" {
		t.Errorf("FindSession(abc) = %q, %v", id, err)
	}
	if _, err := j.FindSession(ctx, "ab"); err == nil {
		t.Error("ambiguous prefix should fail")
	}
	if _, err := j.FindSession(ctx, "zzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("FindSession(zzz) error = %v, want ErrSessionNotFound", err)
	}
}

func TestJournal_Errors(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	if err := j.StartSession(ctx, Session{}); err == nil {
		t.Error("StartSession without id should fail")
	}
	if err := j.EndSession(ctx, Session{ID: "missing"}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("EndSession error = %v, want ErrSessionNotFound", err)
	}
	if err := j.RecordSave(ctx, SavedTable{SessionID: "x"}); err == nil {
		t.Error("RecordSave without records should fail")
	}
	// Foreign keys reject utterances for unknown sessions.
	if err := j.RecordUtterance(ctx, Utterance{SessionID: "missing", Seq: 1, Text: "x", Outcome: OutcomeIgnored}); err == nil {
		t.Error("RecordUtterance for unknown session should fail")
	}
}

func TestFormatSessionList(t *testing.T) {
	if got := FormatSessionList(nil); got != "No sessions found." {
		t.Errorf("empty list = %q", got)
	}

	out := FormatSessionList([]SessionMeta{{
		Session: Session{
			ID:         "3f2b7c1e-0000-4000-8000-000000000001",
			StartedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local),
			Input:      "vosk",
			Utterances: 12,
			Applied:    10,
		},
		Saved: 1,
	}})
	if !strings.Contains(out, "3f2b7c1e ") {
		t.Errorf("id should be shortened: %s", out)
	}
	if !strings.Contains(out, "2025-03-01 10:00") || !strings.Contains(out, "vosk") {
		t.Errorf("missing fields: %s", out)
	}
}
