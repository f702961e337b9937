package main

import (
	"math"

	"munaypaq.game/internal/protocol"
)

// decide picks the inputs for one STATE. The bot walks to the nearest trash or drop,
// waits for the auto clean and spends powerups as soon as they are useful.
func decide(st protocol.StateMsg, cell float64) []protocol.InputMsg {
	if !st.Running || st.Paused || st.GameOver {
		return nil
	}
	var out []protocol.InputMsg
	me := st.Player.Pos

	if hasSlot(st, "SPEED_BOOST") && st.Player.BoostRemaining == 0 {
		out = append(out, use("SPEED_BOOST", me))
	}
	if hasSlot(st, "ANNOUNCEMENT") {
		for _, n := range st.NPCs {
			if n.Faction == "BAD" && dist(me, n.Pos) <= cell {
				out = append(out, use("ANNOUNCEMENT", n.Pos))
				break
			}
		}
	}
	if hasSlot(st, "TRASH_BIN") && st.City.MaxTrash > 0 && st.City.TrashCount*2 >= st.City.MaxTrash {
		if p, ok := nearest(me, trashPositions(st)); ok {
			out = append(out, use("TRASH_BIN", p))
		}
	}

	if st.Player.Moving || st.Player.AutoCleaning {
		return out
	}
	targets := trashPositions(st)
	for _, d := range st.Drops {
		targets = append(targets, d.Pos)
	}
	goal, ok := nearest(me, targets)
	if !ok || dist(me, goal) < cell/2 {
		return out
	}
	if dir := stepToward(me, goal, cell); dir != "" {
		out = append(out, protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version, Move: dir})
	}
	return out
}

func stepToward(from, to [2]float64, cell float64) string {
	dx, dy := to[0]-from[0], to[1]-from[1]
	switch {
	case math.Abs(dx) >= cell/2 && math.Abs(dx) >= math.Abs(dy):
		if dx > 0 {
			return protocol.MoveRight
		}
		return protocol.MoveLeft
	case math.Abs(dy) >= cell/2:
		if dy > 0 {
			return protocol.MoveUp
		}
		return protocol.MoveDown
	}
	return ""
}

func use(kind string, p [2]float64) protocol.InputMsg {
	return protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		UsePowerup:      &protocol.UsePowerup{Kind: kind, X: p[0], Y: p[1]},
	}
}

func hasSlot(st protocol.StateMsg, kind string) bool {
	for _, s := range st.Inventory {
		if s.Kind == kind && s.Count > 0 {
			return true
		}
	}
	return false
}

func trashPositions(st protocol.StateMsg) [][2]float64 {
	out := make([][2]float64, 0, len(st.Trash))
	for _, t := range st.Trash {
		out = append(out, t.Pos)
	}
	return out
}

func nearest(from [2]float64, ps [][2]float64) ([2]float64, bool) {
	best, bestD := [2]float64{}, math.Inf(1)
	for _, p := range ps {
		if d := dist(from, p); d < bestD {
			best, bestD = p, d
		}
	}
	return best, len(ps) > 0
}

func dist(a, b [2]float64) float64 { return math.Hypot(a[0]-b[0], a[1]-b[1]) }
