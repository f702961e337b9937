package world

import (
	"github.com/dustin/go-humanize"

	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/sim/npc"
)

func (w *World) simulating() bool { return w.running && !w.paused && !w.gameOver }

// ShowGameOver is called by the trash field when the lose threshold is crossed. The
// session pauses and is saved under the current player name at the end of the tick.
func (w *World) ShowGameOver() {
	if w.gameOver {
		return
	}
	w.gameOver = true
	w.paused = true
	w.emit(protocol.Event{"type": "GAME_OVER", "trash_count": w.field.Count()})
	w.log.Printf("game over: city dirt %d/%d", w.field.Count(), w.cfg.Trash.MaxTrash)
}

// FactionChanged records conversions as tick events.
func (w *World) FactionChanged(a *npc.Agent, f npc.Faction) {
	w.emit(protocol.Event{"type": "FACTION", "id": a.ID, "faction": f.String(), "pos": pos2(a.Pos())})
}

func (w *World) togglePause() {
	if w.gameOver || !w.running {
		return
	}
	w.paused = !w.paused
	w.emit(protocol.Event{"type": "PAUSE", "paused": w.paused})
}

func (w *World) saveAndExit(name string) {
	if !w.running {
		w.emit(protocol.Event{"type": "REJECTED", "command": CmdSave.String(), "code": protocol.ErrBadRequest})
		return
	}
	if !w.saveSession(name) {
		return
	}
	w.tracker.StopSession()
	w.running = false
	w.paused = true
}

// finishGameOver saves the lost session. A failed save is retried once per second of
// ticks until the store accepts it.
func (w *World) finishGameOver() {
	if !w.gameOver || w.gameOverSaved || w.tick < w.saveRetryAt {
		return
	}
	if w.tracker.Saved() {
		// Already saved and exited in this session.
		w.gameOverSaved = true
		return
	}
	if !w.saveSession("") {
		w.saveRetryAt = w.tick + uint64(w.cfg.TickRateHz)
		return
	}
	w.gameOverSaved = true
	w.tracker.StopSession()
	w.running = false
}

// restart drops the current session unsaved and starts the next one from the following
// seed, so each session can be replayed from its own first tick.
func (w *World) restart() {
	prev, prevTick := w.sessionID, w.tick
	if err := w.startSession(w.seed + 1); err != nil {
		w.log.Printf("restart: %v", err)
		w.emit(protocol.Event{"type": "REJECTED", "command": CmdRestart.String(), "code": protocol.ErrInternal})
		return
	}
	w.emit(protocol.Event{"type": "RESTART", "previous_session": prev, "seed": w.seed})
	w.log.Printf("restart: session %s after %d ticks, now %s seed=%d", prev, prevTick, w.sessionID, w.seed)
}

func (w *World) saveSession(name string) bool {
	e, err := w.tracker.SaveScoreAndCityState(name)
	if err != nil {
		w.log.Printf("save score: %v", err)
		w.emit(protocol.Event{"type": "REJECTED", "command": CmdSave.String(), "code": protocol.ErrInternal})
		return false
	}
	rank := 0
	for i, it := range w.tracker.LoadHighScoreList().Entries {
		if it == e {
			rank = i + 1
			break
		}
	}
	ev := protocol.Event{"type": "SAVED", "player_name": e.PlayerName, "score": e.Score, "city_dirt": e.CityDirtLevel, "rank": rank}
	w.emit(ev)
	if rank > 0 {
		w.log.Printf("saved %s: %s points, dirt %d, %s place", e.PlayerName, humanize.Comma(int64(e.Score)), e.CityDirtLevel, humanize.Ordinal(rank))
	} else {
		w.log.Printf("saved %s: %s points, dirt %d, not ranked", e.PlayerName, humanize.Comma(int64(e.Score)), e.CityDirtLevel)
	}
	return true
}
