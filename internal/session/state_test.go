// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/voxtable/internal/storage"
)

// fakeClock is advanced by hand.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestNewState_GeneratesID(t *testing.T) {
	s := NewState("", 0, nil)
	if _, err := uuid.Parse(s.SessionID()); err != nil {
		t.Errorf("SessionID %q is not a UUID: %v", s.SessionID(), err)
	}
	if s.StartTime().IsZero() {
		t.Error("StartTime should not be zero")
	}

	other := NewState("", 0, nil)
	if other.SessionID() == s.SessionID() {
		t.Error("session ids should be unique")
	}
}

func TestState_Counters(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewState("s1", 0, clock.Now)

	clock.Advance(10 * time.Second)
	if seq := s.RecordUtterance(storage.OutcomeApplied); seq != 1 {
		t.Errorf("first seq = %d, want 1", seq)
	}
	s.RecordUtterance(storage.OutcomeFailed)
	s.RecordUtterance(storage.OutcomeIgnored)
	if seq := s.RecordUtterance(storage.OutcomeApplied); seq != 4 {
		t.Errorf("fourth seq = %d, want 4", seq)
	}
	clock.Advance(5 * time.Second)

	st := s.GetStatus()
	if st.Utterances != 4 || st.Applied != 2 || st.Failed != 1 || st.Ignored != 1 {
		t.Errorf("counters = %+v", st)
	}
	if st.Duration != 15*time.Second {
		t.Errorf("Duration = %v, want 15s", st.Duration)
	}
	if st.IdleTime != 5*time.Second {
		t.Errorf("IdleTime = %v, want 5s", st.IdleTime)
	}

	rec := st.journalRecord("en", "script", clock.Now())
	if rec.ID != "s1" || rec.Utterances != 4 || rec.Applied != 2 || rec.Failed != 1 {
		t.Errorf("journal record = %+v", rec)
	}
}

func TestState_AutoSave(t *testing.T) {
	s := NewState("s1", 2, nil)

	if s.ShouldAutoSave() {
		t.Error("clean state should not autosave")
	}
	s.MarkDirty()
	if s.ShouldAutoSave() {
		t.Error("one change is below the threshold")
	}
	s.MarkDirty()
	if !s.ShouldAutoSave() {
		t.Error("two changes should trigger autosave")
	}

	s.AutoSaved()
	if s.ShouldAutoSave() {
		t.Error("AutoSaved should reset the counter")
	}
	if !s.IsDirty() {
		t.Error("a draft does not make the table clean")
	}

	s.MarkClean()
	if s.IsDirty() {
		t.Error("MarkClean should clear the dirty flag")
	}

	disabled := NewState("s2", 0, nil)
	for i := 0; i < 10; i++ {
		disabled.MarkDirty()
	}
	if disabled.ShouldAutoSave() {
		t.Error("autosave disabled when every is zero")
	}
}

func TestState_ConcurrentStatus(t *testing.T) {
	s := NewState("s1", 3, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.RecordUtterance(storage.OutcomeApplied)
			s.MarkDirty()
		}()
		go func() {
			defer wg.Done()
			_ = s.GetStatus()
			_ = s.ShouldAutoSave()
		}()
	}
	wg.Wait()

	if got := s.GetStatus().Utterances; got != 50 {
		t.Errorf("Utterances = %d, want 50", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
