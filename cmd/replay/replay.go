package main

import (
	"fmt"
	"sort"

	persistlog "munaypaq.game/internal/persistence/log"
	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/sim/tuning"
	"munaypaq.game/internal/sim/world"
)

// summary aggregates the tick log of one session.
type summary struct {
	SessionID    string
	Seed         int64
	FirstTick    uint64
	LastTick     uint64
	Ticks        uint64
	PeakTrash    int
	PeakTick     uint64
	Final        world.TickLogEntry
	GameOverTick uint64
	GameOver     bool
	Events       map[string]int
}

func newSummary(e world.TickLogEntry) *summary {
	return &summary{SessionID: e.SessionID, Seed: e.Seed, FirstTick: e.Tick, Events: map[string]int{}}
}

func (s *summary) add(e world.TickLogEntry) {
	s.Ticks++
	s.LastTick = e.Tick
	s.Final = e
	if e.TrashCount > s.PeakTrash {
		s.PeakTrash = e.TrashCount
		s.PeakTick = e.Tick
	}
	if e.GameOver && !s.GameOver {
		s.GameOver = true
		s.GameOverTick = e.Tick
	}
	for _, ev := range e.Events {
		if typ, ok := ev["type"].(string); ok {
			s.Events[typ]++
		}
	}
}

func (s *summary) eventTypes() []string {
	out := make([]string, 0, len(s.Events))
	for k := range s.Events {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// verifier re-simulates a session from its seed and logged commands and compares
// the state digest of every tick.
type verifier struct {
	w       *world.World
	digest  string
	checked uint64
}

func newVerifier(tune tuning.Tuning, seed int64) (*verifier, error) {
	tune.Seed = seed
	w, err := world.New(tune, prefs.NewMemory(), nil)
	if err != nil {
		return nil, err
	}
	v := &verifier{w: w}
	w.SetTickLogger(v)
	return v, nil
}

func (v *verifier) WriteTick(e world.TickLogEntry) error {
	v.digest = e.Digest
	return nil
}

func (v *verifier) step(e world.TickLogEntry) error {
	if e.Tick != v.w.CurrentTick() {
		return fmt.Errorf("tick mismatch: want=%d got=%d", v.w.CurrentTick(), e.Tick)
	}
	v.w.StepOnce(e.Commands)
	if v.digest != e.Digest {
		return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", e.Tick, v.digest, e.Digest)
	}
	v.checked++
	return nil
}

// replaySession summarizes s and, when verify is set, re-simulates it from its seed.
// The summary covers every entry read before an error.
func replaySession(tune tuning.Tuning, s persistlog.Session, verify bool) (*summary, *verifier, error) {
	var (
		sum *summary
		ver *verifier
	)
	err := persistlog.ReadSession(s, func(e world.TickLogEntry) error {
		if e.SessionID != s.ID {
			return fmt.Errorf("entry of session %s in %s", e.SessionID, s.ID)
		}
		if sum == nil {
			sum = newSummary(e)
			if verify {
				if e.Tick != 0 {
					return fmt.Errorf("log starts at tick %d", e.Tick)
				}
				v, err := newVerifier(tune, e.Seed)
				if err != nil {
					return err
				}
				ver = v
			}
		}
		sum.add(e)
		if ver != nil {
			return ver.step(e)
		}
		return nil
	})
	return sum, ver, err
}
