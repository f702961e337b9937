package worldtest

import (
	"strings"
	"testing"

	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/score"
	"munaypaq.game/internal/sim/tuning"
	world "munaypaq.game/internal/sim/world"
)

func openMap(w, h int) string {
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat(".", w)
	}
	return strings.Join(rows, "\n")
}

func TestBadCityEndsInAutoSavedGameOver(t *testing.T) {
	h := NewHarness(t, openMap(8, 8), func(c *tuning.Tuning) {
		c.Seed = 21
		c.Trash.MaxTrash = 6
		c.Trash.LoseThreshold = 0.5
		c.NPC.MoveInterval = 1
		c.NPC.TrashCreationInterval = 1
		c.NPC.BadToGoodChance = 0
		c.Spawn = tuning.Spawn{BadNPCs: 4, MaxAttemptsPerItem: 50}
	})
	if !h.StepUntil(30*60, func(s protocol.StateMsg) bool { return s.GameOver }) {
		t.Fatalf("city never reached game over, trash=%d", h.LastState().City.TrashCount)
	}
	st := h.LastState()
	if !st.Paused || st.Running {
		t.Fatalf("game over should pause and end the session: paused=%v running=%v", st.Paused, st.Running)
	}
	if CountEvents(st.Events, "GAME_OVER") != 1 || CountEvents(st.Events, "SAVED") != 1 {
		t.Fatalf("events=%v", st.Events)
	}

	list := score.LoadHighScores(h.Store)
	if len(list.Entries) != 1 {
		t.Fatalf("high scores=%d want 1", len(list.Entries))
	}
	if got := list.Entries[0].CityDirtLevel; got != st.City.TrashCount {
		t.Fatalf("saved dirt=%d want %d", got, st.City.TrashCount)
	}

	// Frozen afterwards: no more trash, no second save.
	before := st.City.TrashCount
	events := h.StepFor(60)
	if h.LastState().City.TrashCount != before || CountEvents(events, "SAVED") != 0 {
		t.Fatalf("world kept running after game over")
	}
	if len(score.LoadHighScores(h.Store).Entries) != 1 {
		t.Fatalf("game over saved twice")
	}
}

func TestSameSeedSameCity(t *testing.T) {
	run := func() []string {
		h := NewHarness(t, openMap(10, 10), func(c *tuning.Tuning) {
			c.Seed = 99
			c.NPC.MoveInterval = 0.5
		})
		var trace []string
		for i := 0; i < 300; i++ {
			st := h.Step()
			for _, n := range st.NPCs {
				trace = append(trace, n.ID+n.Faction)
			}
			for _, it := range st.Trash {
				trace = append(trace, it.ID+it.Variant)
			}
		}
		return trace
	}
	a, b := run(), run()
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Fatalf("two runs with the same seed diverged")
	}
}

func TestPlayerCleansSpawnedDirt(t *testing.T) {
	h := NewHarness(t, ".", func(c *tuning.Tuning) {
		c.Spawn = tuning.Spawn{MaxAttemptsPerItem: 50}
		c.Player.AutoCleanTime = 0.5
	})
	// One walkable tile: put trash under the player.
	h.W.Field().CreateTrash(h.W.Player().Pos())
	if !h.StepUntil(60, func(s protocol.StateMsg) bool { return s.City.TrashCount == 0 }) {
		t.Fatalf("player did not auto-clean")
	}
	if got := h.LastState().Score.Score; got != 10 {
		t.Fatalf("score=%d want 10", got)
	}
	_ = h.Step(world.Command{Kind: world.CmdSave, Name: "ana"})
	list := score.LoadHighScores(h.Store)
	if len(list.Entries) != 1 || list.Entries[0].PlayerName != "ana" || list.Entries[0].Score != 10 {
		t.Fatalf("saved=%+v", list.Entries)
	}
	if h.LastState().Running {
		t.Fatalf("save & exit should stop the session")
	}
}
