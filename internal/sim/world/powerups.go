package world

import (
	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/npc"
	"munaypaq.game/internal/sim/powerup"
)

// usePowerup applies k at target and consumes one unit only when the effect applied.
// It returns an error code, empty on success.
func (w *World) usePowerup(k powerup.Kind, target grid.Vec) string {
	if w.inventory.Count(k) == 0 {
		return protocol.ErrNoResource
	}
	p := w.cfg.Powerups
	switch k {
	case powerup.TrashBin:
		n := w.field.CleanArea(target, p.TrashBinWidth, p.TrashBinHeight)
		w.emit(protocol.Event{"type": "AREA_CLEAN", "pos": pos2(target), "removed": n})
	case powerup.Announcement:
		a := w.badNPCNear(target, p.AnnouncementRadius)
		if a == nil {
			return protocol.ErrInvalidTarget
		}
		a.BecomeGood()
	case powerup.SpeedBoost:
		w.player.ApplySpeedBoost(p.SpeedBoostDuration, p.SpeedBoostMultiplier)
	default:
		return protocol.ErrBadRequest
	}
	w.inventory.Consume(k)
	w.emit(protocol.Event{"type": "POWERUP_USED", "kind": string(k), "pos": pos2(target)})
	return ""
}

func (w *World) badNPCNear(p grid.Vec, radius float64) *npc.Agent {
	for _, a := range w.npcs {
		if a.Faction() == npc.Bad && a.Pos().Dist(p) <= radius {
			return a
		}
	}
	return nil
}

// pickupDrops moves ground drops the player stands on into the inventory.
func (w *World) pickupDrops() {
	for {
		d, ok := w.drops.TakeNear(w.player.Pos(), w.cfg.Powerups.PickupRadius, w.inventory.CanAccept)
		if !ok {
			return
		}
		w.inventory.Add(d.Kind)
		w.emit(protocol.Event{"type": "PICKUP", "id": d.ID, "kind": string(d.Kind)})
	}
}
