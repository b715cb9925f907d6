// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeranaias/voxtable/internal/storage"
	"github.com/jeranaias/voxtable/internal/util"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// State tracks the bookkeeping of one session: identity, counters and
// whether the active table has changes that are not on disk yet.
type State struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time
	now          func() time.Time

	utterances int
	applied    int
	failed     int
	ignored    int

	isDirty       bool
	sinceAutoSave int
	autoSaveEvery int
}

// NewState creates the state of a new session. An empty id is replaced by a
// random UUID; autoSaveEvery <= 0 disables autosave.
func NewState(id string, autoSaveEvery int, now func() time.Time) *State {
	if id == "" {
		id = generateSessionID()
	}
	if now == nil {
		now = time.Now
	}
	start := now()
	return &State{
		sessionID:     id,
		startTime:     start,
		lastActivity:  start,
		now:           now,
		autoSaveEvery: autoSaveEvery,
	}
}

// SessionID returns the session identifier.
func (s *State) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// StartTime returns when the session started.
func (s *State) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// Duration returns how long the session has been running.
func (s *State) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.startTime)
}

// IdleTime returns the time since the last utterance.
func (s *State) IdleTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastActivity)
}

// RecordUtterance counts one utterance by outcome and returns its 1-based
// sequence number.
func (s *State) RecordUtterance(outcome storage.Outcome) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = s.now()
	s.utterances++
	switch outcome {
	case storage.OutcomeApplied:
		s.applied++
	case storage.OutcomeFailed:
		s.failed++
	case storage.OutcomeIgnored:
		s.ignored++
	}
	return s.utterances
}

// =============================================================================
// DIRTY TRACKING AND AUTOSAVE
// =============================================================================

// MarkDirty notes a change to the active table.
func (s *State) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isDirty = true
	s.sinceAutoSave++
}

// MarkClean notes that the active table is on disk or gone.
func (s *State) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isDirty = false
	s.sinceAutoSave = 0
}

// IsDirty reports whether the active table has unsaved changes.
func (s *State) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDirty
}

// ShouldAutoSave returns true once autoSaveEvery changes have accumulated
// since the last save.
func (s *State) ShouldAutoSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSaveEvery > 0 && s.isDirty && s.sinceAutoSave >= s.autoSaveEvery
}

// AutoSaved resets the autosave counter without clearing the dirty flag:
// a draft is not a saved table.
func (s *State) AutoSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinceAutoSave = 0
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a snapshot of the session counters.
type Status struct {
	SessionID  string
	StartTime  time.Time
	Duration   time.Duration
	IdleTime   time.Duration
	Utterances int
	Applied    int
	Failed     int
	Ignored    int
	IsDirty    bool
}

// GetStatus returns the current session status.
func (s *State) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	return Status{
		SessionID:  s.sessionID,
		StartTime:  s.startTime,
		Duration:   now.Sub(s.startTime),
		IdleTime:   now.Sub(s.lastActivity),
		Utterances: s.utterances,
		Applied:    s.applied,
		Failed:     s.failed,
		Ignored:    s.ignored,
		IsDirty:    s.isDirty,
	}
}

// journalRecord converts the status into the journal's session row.
func (st Status) journalRecord(language, input string, ended time.Time) storage.Session {
	return storage.Session{
		ID:         st.SessionID,
		StartedAt:  st.StartTime,
		EndedAt:    ended,
		Language:   language,
		Input:      input,
		Utterances: st.Utterances,
		Applied:    st.Applied,
		Failed:     st.Failed,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func generateSessionID() string {
	return uuid.NewString()
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
