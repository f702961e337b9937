package world

import "munaypaq.game/internal/protocol"

// Alert bands over the city dirt percentage.
const (
	AlertGood     = "GOOD"
	AlertCaution  = "CAUTION"
	AlertWarning  = "WARNING"
	AlertDanger   = "DANGER"
	AlertCritical = "CRITICAL"
)

func AlertLevel(percentage float64) string {
	switch {
	case percentage >= 90:
		return AlertCritical
	case percentage >= 75:
		return AlertDanger
	case percentage >= 60:
		return AlertWarning
	case percentage >= 40:
		return AlertCaution
	default:
		return AlertGood
	}
}

// State snapshots the session for clients.
func (w *World) State() protocol.StateMsg {
	st := w.field.Stats()
	good, bad := w.factionCounts()
	clean := w.grid.EstimatedWalkableTileCount() - st.Count
	if clean < 0 {
		clean = 0
	}

	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		SessionID:       w.sessionID,
		Tick:            w.tick,
		Paused:          w.paused,
		GameOver:        w.gameOver,
		Running:         w.running,
		Player: protocol.PlayerState{
			Pos:            pos2(w.player.Pos()),
			Moving:         w.player.Moving(),
			AutoCleaning:   w.player.AutoCleaning(),
			CleanProgress:  w.player.CleanProgress(),
			AutoCleanTime:  w.player.AutoCleanTime(),
			BoostRemaining: w.player.BoostRemaining(),
		},
		NPCs:      make([]protocol.NPCState, 0, len(w.npcs)),
		Trash:     make([]protocol.TrashState, 0, st.Count),
		Drops:     make([]protocol.DropState, 0, w.drops.Len()),
		Inventory: []protocol.SlotState{},
		City: protocol.CityState{
			TrashCount: st.Count,
			MaxTrash:   st.Max,
			Percentage: st.Percentage,
			Alert:      AlertLevel(st.Percentage),
			GoodNPCs:   good,
			BadNPCs:    bad,
			CleanTiles: clean,
		},
		Score: protocol.ScoreState{
			PlayerName:     w.tracker.CurrentPlayerName(),
			Score:          w.tracker.CurrentScore(),
			ElapsedSeconds: w.tracker.ElapsedSeconds(),
		},
		Events: w.events,
	}
	for _, a := range w.npcs {
		msg.NPCs = append(msg.NPCs, protocol.NPCState{
			ID:            a.ID,
			Faction:       a.Faction().String(),
			Pos:           pos2(a.Pos()),
			Cleaning:      a.PerformingAction(),
			CleanProgress: a.CleanProgress(),
		})
	}
	for _, it := range w.field.Instances() {
		msg.Trash = append(msg.Trash, protocol.TrashState{ID: it.ID, Variant: it.Variant, Pos: pos2(it.Pos)})
	}
	for _, d := range w.drops.All() {
		msg.Drops = append(msg.Drops, protocol.DropState{ID: d.ID, Kind: string(d.Kind), Pos: pos2(d.Pos)})
	}
	for _, s := range w.inventory.Slots() {
		msg.Inventory = append(msg.Inventory, protocol.SlotState{Kind: string(s.Kind), Count: s.Count})
	}
	return msg
}
