package world

import (
	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/trash"
)

const (
	ActorPlayer = "PLAYER"
	ActorSpawn  = "SPAWN"
)

// fieldView is the trash field as seen by one actor. Writes through it are recorded as
// tick events and new trash gets a random configured variant.
type fieldView struct {
	*trash.Field
	w     *World
	actor string
}

func (w *World) fieldFor(actor string) fieldView {
	return fieldView{Field: w.field, w: w, actor: actor}
}

func (v fieldView) CreateTrash(p grid.Vec) (trash.Instance, bool) {
	var (
		it trash.Instance
		ok bool
	)
	if len(v.w.variants) > 0 {
		it, ok = v.Field.CreateTrashRandom(p, v.w.variants)
	} else {
		it, ok = v.Field.CreateTrash(p)
	}
	if ok {
		v.w.emit(protocol.Event{"type": "TRASH", "by": v.actor, "id": it.ID, "pos": pos2(it.Pos)})
	}
	return it, ok
}

func (v fieldView) CleanTrash(p grid.Vec) bool {
	it, ok := v.Field.TakeTrash(p)
	if !ok {
		return false
	}
	v.w.emit(protocol.Event{"type": "CLEAN", "by": v.actor, "id": it.ID, "pos": pos2(it.Pos)})
	return true
}
