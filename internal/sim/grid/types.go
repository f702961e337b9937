package grid

import "math"

// Vec is a world-space position.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// MoveTowards steps from v toward target by at most maxDelta.
func (v Vec) MoveTowards(target Vec, maxDelta float64) Vec {
	d := v.Dist(target)
	if d <= maxDelta || d == 0 {
		return target
	}
	return Vec{X: v.X + (target.X-v.X)/d*maxDelta, Y: v.Y + (target.Y-v.Y)/d*maxDelta}
}

// Tile addresses one cell of the walkability grid.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Axis-aligned unit steps.
var (
	Up    = Vec{X: 0, Y: 1}
	Down  = Vec{X: 0, Y: -1}
	Left  = Vec{X: -1, Y: 0}
	Right = Vec{X: 1, Y: 0}
)

// Directions lists the four axis-aligned steps in a fixed order.
var Directions = [4]Vec{Up, Down, Left, Right}

// TileSource reports which cells carry a floor tile.
type TileSource interface {
	HasTile(t Tile) bool
	// Bounds returns the inclusive min and exclusive max cell coordinates.
	Bounds() (lo, hi Tile)
}

// Obstacle is a solid thing overlapping a point.
type Obstacle struct {
	Trigger          bool
	WalkableOverride bool
	Pickup           bool
}

func (o Obstacle) Blocks() bool {
	return !o.Trigger && !o.WalkableOverride && !o.Pickup
}

// ObstacleQuery returns every obstacle overlapping p.
type ObstacleQuery interface {
	ObstaclesAt(p Vec) []Obstacle
}
