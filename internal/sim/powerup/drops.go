package powerup

import (
	"fmt"

	"munaypaq.game/internal/sim/grid"
)

type Snapper interface {
	NearestWalkableTile(p grid.Vec) grid.Vec
}

// Drop is a powerup lying on the ground.
type Drop struct {
	ID   string   `json:"id"`
	Kind Kind     `json:"kind"`
	Pos  grid.Vec `json:"pos"`
}

// Drops is the ground layer NPCs spawn powerups into.
type Drops struct {
	grid  Snapper
	items []Drop
	next  uint64
}

func NewDrops(g Snapper) *Drops { return &Drops{grid: g} }

// SpawnAt places a drop at the nearest walkable tile to p.
func (d *Drops) SpawnAt(p grid.Vec, k Kind) {
	if d.grid != nil {
		p = d.grid.NearestWalkableTile(p)
	}
	d.next++
	d.items = append(d.items, Drop{ID: fmt.Sprintf("P%06d", d.next), Kind: k, Pos: p})
}

// TakeNear removes and returns the first drop within radius of p that accept allows.
// Rejected drops stay on the ground.
func (d *Drops) TakeNear(p grid.Vec, radius float64, accept func(Kind) bool) (Drop, bool) {
	for i, it := range d.items {
		if it.Pos.Dist(p) >= radius {
			continue
		}
		if accept != nil && !accept(it.Kind) {
			continue
		}
		d.items = append(d.items[:i], d.items[i+1:]...)
		return it, true
	}
	return Drop{}, false
}

func (d *Drops) All() []Drop {
	out := make([]Drop, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Drops) Len() int { return len(d.items) }
