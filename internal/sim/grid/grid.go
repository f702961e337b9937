package grid

import (
	"errors"
	"io"
	"log"
	"math"
	"math/rand"
)

var ErrNoTileSource = errors.New("grid: no walkable tile source")

const (
	randomPositionAttempts = 50
	// occupancyRatio approximates the share of the bounds that is walkable.
	occupancyRatio = 0.7
)

type Config struct {
	CellSize float64
	Origin   Vec
}

// Grid answers walkability questions and converts between world positions and tiles.
// It is not safe for concurrent use; the world loop owns it.
type Grid struct {
	tiles     TileSource
	obstacles ObstacleQuery
	cellSize  float64
	origin    Vec

	rng *rand.Rand
	log *log.Logger
}

func New(tiles TileSource, obstacles ObstacleQuery, cfg Config, rng *rand.Rand, logger *log.Logger) (*Grid, error) {
	if tiles == nil {
		return nil, ErrNoTileSource
	}
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Grid{
		tiles:     tiles,
		obstacles: obstacles,
		cellSize:  cfg.CellSize,
		origin:    cfg.Origin,
		rng:       rng,
		log:       logger,
	}, nil
}

func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) WorldToTile(p Vec) Tile {
	return Tile{
		X: int(math.Floor((p.X - g.origin.X) / g.cellSize)),
		Y: int(math.Floor((p.Y - g.origin.Y) / g.cellSize)),
	}
}

func (g *Grid) TileCenter(t Tile) Vec {
	return Vec{
		X: g.origin.X + (float64(t.X)+0.5)*g.cellSize,
		Y: g.origin.Y + (float64(t.Y)+0.5)*g.cellSize,
	}
}

// Snap returns the center of the tile containing p.
func (g *Grid) Snap(p Vec) Vec { return g.TileCenter(g.WorldToTile(p)) }

func (g *Grid) IsWalkable(p Vec) bool {
	if !g.tiles.HasTile(g.WorldToTile(p)) {
		return false
	}
	if g.obstacles == nil {
		return true
	}
	for _, o := range g.obstacles.ObstaclesAt(p) {
		if o.Blocks() {
			return false
		}
	}
	return true
}

// NearestWalkableTile returns the center of p's tile when walkable, else the first walkable
// neighbour center (x-major scan, -1..1 on both axes), else p's own tile center.
// The result is not guaranteed to be walkable.
func (g *Grid) NearestWalkableTile(p Vec) Vec {
	t := g.WorldToTile(p)
	center := g.TileCenter(t)
	if g.IsWalkable(center) {
		return center
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c := g.TileCenter(Tile{X: t.X + dx, Y: t.Y + dy})
			if g.IsWalkable(c) {
				return c
			}
		}
	}
	return center
}

// RandomWalkablePosition samples tiles inside the source bounds. On failure it returns the
// zero Vec and false.
func (g *Grid) RandomWalkablePosition() (Vec, bool) {
	lo, hi := g.tiles.Bounds()
	w, h := hi.X-lo.X, hi.Y-lo.Y
	if w <= 0 || h <= 0 {
		g.log.Printf("warn: random walkable position: empty bounds %v..%v", lo, hi)
		return Vec{}, false
	}
	for i := 0; i < randomPositionAttempts; i++ {
		t := Tile{X: lo.X + g.rng.Intn(w), Y: lo.Y + g.rng.Intn(h)}
		c := g.TileCenter(t)
		if g.IsWalkable(c) {
			return c, true
		}
	}
	g.log.Printf("warn: random walkable position: no walkable tile after %d attempts", randomPositionAttempts)
	return Vec{}, false
}

// EstimatedWalkableTileCount is bounds area times a fixed occupancy ratio. It is an
// approximation for display only.
func (g *Grid) EstimatedWalkableTileCount() int {
	lo, hi := g.tiles.Bounds()
	w, h := hi.X-lo.X, hi.Y-lo.Y
	if w <= 0 || h <= 0 {
		return 0
	}
	return int(float64(w*h) * occupancyRatio)
}
