package log

import (
	"path/filepath"
	"testing"
	"time"

	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/sim/world"
)

func readAll(t *testing.T, s Session) []world.TickLogEntry {
	t.Helper()
	var got []world.TickLogEntry
	if err := ReadSession(s, func(e world.TickLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadSession %s: %v", s.ID, err)
	}
	return got
}

func TestSessionLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewSessionLog(dir)
	for i := uint64(0); i < 5; i++ {
		e := world.TickLogEntry{Tick: i, SessionID: "s1", TrashCount: int(i), GoodNPCs: 2, BadNPCs: 1}
		if i == 3 {
			e.Events = []protocol.Event{{"type": "FACTION", "id": "N1", "faction": "BAD"}}
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sessions, err := ListSessions(SessionsDir(dir))
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Fatalf("sessions=%+v", sessions)
	}
	got := readAll(t, sessions[0])
	if len(got) != 5 {
		t.Fatalf("entries=%d want 5", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i) || e.TrashCount != i || e.SessionID != "s1" {
			t.Fatalf("entry %d=%+v", i, e)
		}
	}
	if len(got[3].Events) != 1 || got[3].Events[0]["type"] != "FACTION" {
		t.Fatalf("events=%v", got[3].Events)
	}
}

func TestSessionLogSplitsBySession(t *testing.T) {
	dir := t.TempDir()
	l := NewSessionLog(dir)
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	write := func(session string, tick uint64) {
		t.Helper()
		if err := l.WriteTick(world.TickLogEntry{SessionID: session, Tick: tick}); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	write("a", 0)
	write("a", 1)
	clock = clock.Add(time.Hour)
	write("b", 0)
	write("b", 1)
	write("b", 2)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sessions, err := ListSessions(SessionsDir(dir))
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "a" || sessions[1].ID != "b" {
		t.Fatalf("sessions=%+v", sessions)
	}
	for i, want := range []int{2, 3} {
		got := readAll(t, sessions[i])
		if len(got) != want {
			t.Fatalf("session %s entries=%d want %d", sessions[i].ID, len(got), want)
		}
		for j, e := range got {
			if e.SessionID != sessions[i].ID || e.Tick != uint64(j) {
				t.Fatalf("session %s entry %d=%+v", sessions[i].ID, j, e)
			}
		}
	}
}

func TestSessionLogRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewSessionLog(dir)
	clock := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	if err := l.WriteTick(world.TickLogEntry{SessionID: "s1", Tick: 0}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := l.WriteTick(world.TickLogEntry{SessionID: "s1", Tick: 1}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	sessions, err := ListSessions(SessionsDir(dir))
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || len(sessions[0].Segments) != 2 {
		t.Fatalf("sessions=%+v", sessions)
	}
	if filepath.Base(sessions[0].Segments[1]) != "ticks-2024-05-01-11.jsonl.zst" {
		t.Fatalf("second segment=%s", filepath.Base(sessions[0].Segments[1]))
	}
	if got := readAll(t, sessions[0]); len(got) != 2 || got[1].Tick != 1 {
		t.Fatalf("entries=%+v", got)
	}
}

func TestSessionLogRejectsBadSessionID(t *testing.T) {
	l := NewSessionLog(t.TempDir())
	defer l.Close()
	for _, id := range []string{"", "..", "a/b"} {
		if err := l.WriteTick(world.TickLogEntry{SessionID: id}); err == nil {
			t.Fatalf("session id %q accepted", id)
		}
	}
}
