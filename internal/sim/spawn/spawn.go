// Package spawn places the initial dirt and NPCs of a session.
package spawn

import (
	"io"
	"log"
	"math"

	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/trash"
)

type Grid interface {
	RandomWalkablePosition() (grid.Vec, bool)
	NearestWalkableTile(p grid.Vec) grid.Vec
	IsWalkable(p grid.Vec) bool
}

type Field interface {
	HasTrashAt(p grid.Vec) bool
	CreateTrash(p grid.Vec) (trash.Instance, bool)
}

type Counts struct {
	DirtyTiles         int
	BadNPCs            int
	GoodNPCs           int
	MaxAttemptsPerItem int
}

// Result lists what was actually placed. NPC positions are tile centers.
type Result struct {
	DirtyTiles int
	Bad        []grid.Vec
	Good       []grid.Vec
}

type key struct{ x, y int }

// Spawner keeps every placement on a distinct tile.
type Spawner struct {
	grid     Grid
	field    Field
	logger   *log.Logger
	occupied map[key]struct{}
}

func New(g Grid, f Field, logger *log.Logger) *Spawner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Spawner{grid: g, field: f, logger: logger, occupied: map[key]struct{}{}}
}

// Run places dirt first, then bad NPCs, then good NPCs.
func (s *Spawner) Run(c Counts) Result {
	var r Result
	r.DirtyTiles = s.spawnDirt(c.DirtyTiles, c.MaxAttemptsPerItem)
	r.Bad = s.spawnNPCs(c.BadNPCs, c.MaxAttemptsPerItem, "bad")
	r.Good = s.spawnNPCs(c.GoodNPCs, c.MaxAttemptsPerItem, "good")
	return r
}

// Occupy marks p's tile as taken so later placements avoid it.
func (s *Spawner) Occupy(p grid.Vec) { s.occupied[tileKey(p)] = struct{}{} }

// candidate draws a random walkable tile center that is not occupied yet.
func (s *Spawner) candidate() (grid.Vec, key, bool) {
	p, ok := s.grid.RandomWalkablePosition()
	if !ok {
		return grid.Vec{}, key{}, false
	}
	p = s.grid.NearestWalkableTile(p)
	k := tileKey(p)
	if _, taken := s.occupied[k]; taken {
		return grid.Vec{}, key{}, false
	}
	return p, k, true
}

func (s *Spawner) spawnDirt(n, perItem int) int {
	spawned, attempts := 0, 0
	for spawned < n && attempts < n*perItem {
		attempts++
		p, k, ok := s.candidate()
		if !ok {
			continue
		}
		s.occupied[k] = struct{}{}
		if s.field.HasTrashAt(p) {
			continue
		}
		if _, ok := s.field.CreateTrash(p); !ok {
			continue
		}
		spawned++
	}
	if spawned < n {
		s.logger.Printf("warn: spawn: placed only %d/%d dirty tiles (attempts exhausted)", spawned, n)
	}
	return spawned
}

func (s *Spawner) spawnNPCs(n, perItem int, label string) []grid.Vec {
	var out []grid.Vec
	attempts := 0
	for len(out) < n && attempts < n*perItem {
		attempts++
		p, k, ok := s.candidate()
		if !ok {
			continue
		}
		s.occupied[k] = struct{}{}
		if !s.grid.IsWalkable(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) < n {
		s.logger.Printf("warn: spawn: placed only %d/%d %s npcs (attempts exhausted)", len(out), n, label)
	}
	return out
}

func tileKey(p grid.Vec) key {
	return key{x: int(math.Round(p.X)), y: int(math.Round(p.Y))}
}
