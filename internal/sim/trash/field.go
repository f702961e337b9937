package trash

import (
	"fmt"
	"math/rand"

	"munaypaq.game/internal/sim/grid"
)

const (
	// MergeDistance suppresses a new instance this close to an existing one.
	MergeDistance = 0.5
	// Proximity is the reach of clean and presence queries.
	Proximity = 0.7
)

// Grid is the subset of the spatial grid the field needs.
type Grid interface {
	NearestWalkableTile(p grid.Vec) grid.Vec
	WorldToTile(p grid.Vec) grid.Tile
	TileCenter(t grid.Tile) grid.Vec
}

// GameOverSignal is told when the dirt fraction reaches the lose threshold.
type GameOverSignal interface {
	ShowGameOver()
}

type Instance struct {
	ID      string   `json:"id"`
	Pos     grid.Vec `json:"pos"`
	Variant string   `json:"variant,omitempty"`
}

type Config struct {
	MaxTrash      int
	LoseThreshold float64
}

type Stats struct {
	Count      int     `json:"count"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
}

// Field is the capacity-bounded set of trash instances. Instances are kept in creation
// order. Values are stored directly, so there are no dangling entries to sweep.
type Field struct {
	cfg  Config
	grid Grid
	rng  *rand.Rand

	items  []Instance
	nextID uint64

	signal   GameOverSignal
	signaled bool
}

func New(g Grid, cfg Config, rng *rand.Rand) *Field {
	if cfg.MaxTrash <= 0 {
		cfg.MaxTrash = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Field{cfg: cfg, grid: g, rng: rng}
}

func (f *Field) SetGameOverSignal(s GameOverSignal) { f.signal = s }

// CreateTrash places an instance at the nearest walkable tile to pos.
func (f *Field) CreateTrash(pos grid.Vec) (Instance, bool) {
	return f.create(pos, "")
}

// CreateTrashRandom is CreateTrash with a variant picked uniformly from variants.
// It does nothing when variants is empty.
func (f *Field) CreateTrashRandom(pos grid.Vec, variants []string) (Instance, bool) {
	if len(variants) == 0 {
		return Instance{}, false
	}
	return f.create(pos, variants[f.rng.Intn(len(variants))])
}

func (f *Field) create(pos grid.Vec, variant string) (Instance, bool) {
	if len(f.items) >= f.cfg.MaxTrash {
		return Instance{}, false
	}
	center := f.grid.NearestWalkableTile(pos)
	for _, it := range f.items {
		if it.Pos.Dist(center) < MergeDistance {
			return Instance{}, false
		}
	}
	f.nextID++
	it := Instance{ID: fmt.Sprintf("T%06d", f.nextID), Pos: center, Variant: variant}
	f.items = append(f.items, it)
	f.checkLose()
	return it, true
}

// CleanTrash removes the oldest instance within Proximity of pos.
func (f *Field) CleanTrash(pos grid.Vec) bool {
	_, ok := f.TakeTrash(pos)
	return ok
}

// TakeTrash is CleanTrash returning the removed instance.
func (f *Field) TakeTrash(pos grid.Vec) (Instance, bool) {
	for i, it := range f.items {
		if it.Pos.Dist(pos) < Proximity {
			f.items = append(f.items[:i], f.items[i+1:]...)
			f.checkLose()
			return it, true
		}
	}
	return Instance{}, false
}

// CleanArea removes every instance near any tile center of the rectangle of
// (2*floor(w/2)+1) x (2*floor(h/2)+1) tiles centered on center's tile. It returns the
// number removed.
func (f *Field) CleanArea(center grid.Vec, widthTiles, heightTiles int) int {
	hx, hy := widthTiles/2, heightTiles/2
	if hx < 0 {
		hx = 0
	}
	if hy < 0 {
		hy = 0
	}
	ct := f.grid.WorldToTile(center)
	removed := 0
	for dx := -hx; dx <= hx; dx++ {
		for dy := -hy; dy <= hy; dy++ {
			cell := f.grid.TileCenter(grid.Tile{X: ct.X + dx, Y: ct.Y + dy})
			kept := f.items[:0]
			for _, it := range f.items {
				if it.Pos.Dist(cell) < Proximity {
					removed++
					continue
				}
				kept = append(kept, it)
			}
			f.items = kept
		}
	}
	f.checkLose()
	return removed
}

func (f *Field) HasTrashAt(pos grid.Vec) bool {
	for _, it := range f.items {
		if it.Pos.Dist(pos) < Proximity {
			return true
		}
	}
	return false
}

func (f *Field) CountInRadius(pos grid.Vec, radius float64) int {
	n := 0
	for _, it := range f.items {
		if it.Pos.Dist(pos) <= radius {
			n++
		}
	}
	return n
}

func (f *Field) Count() int { return len(f.items) }

// TrashCount is the dirt level persisted with a session.
func (f *Field) TrashCount() int { return len(f.items) }

func (f *Field) Fraction() float64 {
	return float64(len(f.items)) / float64(f.cfg.MaxTrash)
}

func (f *Field) Stats() Stats {
	return Stats{
		Count:      len(f.items),
		Max:        f.cfg.MaxTrash,
		Percentage: float64(100*len(f.items)) / float64(f.cfg.MaxTrash),
	}
}

// Instances returns a copy in creation order.
func (f *Field) Instances() []Instance {
	out := make([]Instance, len(f.items))
	copy(out, f.items)
	return out
}

// checkLose signals once per upward crossing of the lose threshold.
func (f *Field) checkLose() {
	if f.Fraction() >= f.cfg.LoseThreshold {
		if !f.signaled {
			f.signaled = true
			if f.signal != nil {
				f.signal.ShowGameOver()
			}
		}
		return
	}
	f.signaled = false
}
