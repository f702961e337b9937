package world

import (
	"context"
	"encoding/json"
	"time"

	"munaypaq.game/internal/protocol"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []Command
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.join:
			w.clients[req.ID] = req.Out
		case id := <-w.leave:
			delete(w.clients, id)
		case c := <-w.inbox:
			pending = append(pending, c)
		case <-ticker.C:
			w.StepOnce(pending)
			pending = pending[:0]
		}
	}
}

// StepOnce applies cmds and advances the world by a single tick using the same ordering as
// the server loop. It returns the STATE broadcast for that tick.
//
// A RESTART discards the commands queued before it; the tick runs as tick 0 of the new
// session with the commands that follow.
func (w *World) StepOnce(cmds []Command) protocol.StateMsg {
	start := time.Now()
	w.events = nil
	if i := lastRestart(cmds); i >= 0 {
		w.restart()
		cmds = cmds[i+1:]
	}
	for _, c := range cmds {
		w.applyCommand(c)
	}
	if w.simulating() {
		w.stepEntities()
	}
	w.finishGameOver()

	state := w.State()
	w.broadcast(state)
	if w.tickLogger != nil {
		good, bad := w.factionCounts()
		err := w.tickLogger.WriteTick(TickLogEntry{
			Tick:       w.tick,
			SessionID:  w.sessionID,
			Seed:       w.seed,
			Commands:   append([]Command(nil), cmds...),
			Digest:     w.StateDigest(),
			TrashCount: w.field.Count(),
			GoodNPCs:   good,
			BadNPCs:    bad,
			Score:      w.tracker.CurrentScore(),
			Paused:     w.paused,
			GameOver:   w.gameOver,
			Events:     w.events,
		})
		w.noteTickLogErr(err)
	}
	w.tick++
	w.publishMetrics(state, time.Since(start))
	return state
}

// noteTickLogErr logs the first failure of a run of failed writes.
func (w *World) noteTickLogErr(err error) {
	if err == nil {
		w.tickLogFailed = false
		return
	}
	if !w.tickLogFailed {
		w.log.Printf("tick log: tick %d: %v", w.tick, err)
	}
	w.tickLogFailed = true
}

func lastRestart(cmds []Command) int {
	for i := len(cmds) - 1; i >= 0; i-- {
		if cmds[i].Kind == CmdRestart {
			return i
		}
	}
	return -1
}

// stepEntities runs every NPC then the player. A game over stops the remaining turns.
func (w *World) stepEntities() {
	for _, a := range w.npcs {
		a.Step(w.dt)
		if w.gameOver {
			return
		}
	}
	w.player.Step(w.dt)
	w.pickupDrops()
}

func (w *World) broadcast(state protocol.StateMsg) {
	if len(w.clients) == 0 {
		return
	}
	b, err := json.Marshal(state)
	if err != nil {
		w.log.Printf("encode state: %v", err)
		return
	}
	for _, out := range w.clients {
		sendLatest(out, b)
	}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
