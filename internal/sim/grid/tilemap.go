package grid

import (
	"fmt"
	"strings"
)

// Map legend.
const (
	glyphVoid      = '#'
	glyphFloor     = '.'
	glyphSolid     = 'X'
	glyphWalkOver  = '~'
	glyphTrigger   = '^'
	glyphVoidSpace = ' '
)

// TileMap is a dense floor layer. Row 0 of the source text is the top of the map, so it
// maps to the highest Y.
type TileMap struct {
	width  int
	height int
	floor  []bool
}

func (m *TileMap) HasTile(t Tile) bool {
	if t.X < 0 || t.Y < 0 || t.X >= m.width || t.Y >= m.height {
		return false
	}
	return m.floor[t.Y*m.width+t.X]
}

func (m *TileMap) Bounds() (lo, hi Tile) {
	return Tile{}, Tile{X: m.width, Y: m.height}
}

func (m *TileMap) Size() (w, h int) { return m.width, m.height }

type box struct {
	lo, hi Vec
	o      Obstacle
}

// ObstacleMap holds axis-aligned obstacle boxes in world space.
type ObstacleMap struct {
	boxes []box
}

func (m *ObstacleMap) Add(lo, hi Vec, o Obstacle) {
	m.boxes = append(m.boxes, box{lo: lo, hi: hi, o: o})
}

func (m *ObstacleMap) ObstaclesAt(p Vec) []Obstacle {
	var out []Obstacle
	for _, b := range m.boxes {
		if p.X >= b.lo.X && p.X <= b.hi.X && p.Y >= b.lo.Y && p.Y <= b.hi.Y {
			out = append(out, b.o)
		}
	}
	return out
}

func (m *ObstacleMap) Len() int { return len(m.boxes) }

// ParseMap builds the floor layer and obstacle boxes from an ASCII layout.
//
//	'#' or ' '  no floor
//	'.'         floor
//	'X'         floor under a solid obstacle
//	'~'         floor under a walkable-override obstacle
//	'^'         floor under a trigger
func ParseMap(src string, cfg Config) (*TileMap, *ObstacleMap, error) {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1
	}
	rows := strings.Split(strings.Trim(src, "\r\n"), "\n")
	for i := range rows {
		rows[i] = strings.TrimRight(rows[i], "\r")
	}
	height := len(rows)
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 || height == 0 || (height == 1 && strings.TrimSpace(rows[0]) == "") {
		return nil, nil, fmt.Errorf("map: empty layout")
	}

	tm := &TileMap{width: width, height: height, floor: make([]bool, width*height)}
	om := &ObstacleMap{}
	for r, row := range rows {
		y := height - 1 - r
		for x := 0; x < len(row); x++ {
			c := row[x]
			var (
				floor = true
				obs   *Obstacle
			)
			switch c {
			case glyphVoid, glyphVoidSpace:
				floor = false
			case glyphFloor:
			case glyphSolid:
				obs = &Obstacle{}
			case glyphWalkOver:
				obs = &Obstacle{WalkableOverride: true}
			case glyphTrigger:
				obs = &Obstacle{Trigger: true}
			default:
				return nil, nil, fmt.Errorf("map: unknown glyph %q at row %d col %d", c, r, x)
			}
			tm.floor[y*width+x] = floor
			if obs != nil {
				lo := Vec{X: cfg.Origin.X + float64(x)*cfg.CellSize, Y: cfg.Origin.Y + float64(y)*cfg.CellSize}
				hi := Vec{X: lo.X + cfg.CellSize, Y: lo.Y + cfg.CellSize}
				om.Add(lo, hi, *obs)
			}
		}
	}
	return tm, om, nil
}
