package worldtest

import (
	"testing"

	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/sim/tuning"
	world "munaypaq.game/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Step()/StepFor() advance ticks with optional commands via StepOnce()
// - LastState() is the STATE broadcast of the latest tick
// - Store is the in-memory prefs store backing the score tracker
type Harness struct {
	T     *testing.T
	W     *world.World
	Store *prefs.Memory

	last protocol.StateMsg
}

// NewHarness builds a world from the default tuning with the given city map. mutate may
// adjust the tuning before the world is created.
func NewHarness(t *testing.T, cityMap string, mutate func(*tuning.Tuning)) *Harness {
	t.Helper()
	cfg := tuning.Defaults()
	cfg.Grid.Map = cityMap
	if mutate != nil {
		mutate(&cfg)
	}
	store := prefs.NewMemory()
	w, err := world.New(cfg, store, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, W: w, Store: store}
}

func (h *Harness) Step(cmds ...world.Command) protocol.StateMsg {
	h.T.Helper()
	h.last = h.W.StepOnce(cmds)
	if err := protocol.ValidateState(h.last); err != nil {
		h.T.Fatalf("tick %d: invalid STATE: %v", h.last.Tick, err)
	}
	return h.last
}

// StepFor advances n ticks without input and returns every event seen.
func (h *Harness) StepFor(n int) []protocol.Event {
	h.T.Helper()
	var events []protocol.Event
	for i := 0; i < n; i++ {
		events = append(events, h.Step().Events...)
	}
	return events
}

// StepUntil advances until cond holds or max ticks pass. It reports whether cond held.
func (h *Harness) StepUntil(max int, cond func(protocol.StateMsg) bool) bool {
	h.T.Helper()
	for i := 0; i < max; i++ {
		if cond(h.Step()) {
			return true
		}
	}
	return false
}

func (h *Harness) LastState() protocol.StateMsg { return h.last }

// CountEvents returns how many events of type typ are in events.
func CountEvents(events []protocol.Event, typ string) int {
	n := 0
	for _, e := range events {
		if e["type"] == typ {
			n++
		}
	}
	return n
}
