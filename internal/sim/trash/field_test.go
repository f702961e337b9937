package trash

import (
	"math/rand"
	"strings"
	"testing"

	"munaypaq.game/internal/sim/grid"
)

type gameOverCounter struct{ n int }

func (g *gameOverCounter) ShowGameOver() { g.n++ }

func openGrid(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	row := strings.Repeat(".", w)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = row
	}
	tm, om, err := grid.ParseMap(strings.Join(rows, "\n"), grid.Config{CellSize: 1})
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	g, err := grid.New(tm, om, grid.Config{CellSize: 1}, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func tc(x, y int) grid.Vec { return grid.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5} }

func TestCapacityNeverExceeded(t *testing.T) {
	g := openGrid(t, 10, 10)
	f := New(g, Config{MaxTrash: 7, LoseThreshold: 1}, nil)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		f.CreateTrash(grid.Vec{X: rng.Float64() * 10, Y: rng.Float64() * 10})
		if f.Count() > 7 {
			t.Fatalf("count=%d exceeds max", f.Count())
		}
	}
	if f.Count() != 7 {
		t.Fatalf("count=%d want 7", f.Count())
	}
}

func TestDuplicateSuppression(t *testing.T) {
	g := openGrid(t, 5, 5)
	f := New(g, Config{MaxTrash: 10, LoseThreshold: 1}, nil)
	if _, ok := f.CreateTrash(grid.Vec{X: 2.1, Y: 2.2}); !ok {
		t.Fatalf("first create failed")
	}
	if _, ok := f.CreateTrash(grid.Vec{X: 2.9, Y: 2.8}); ok {
		t.Fatalf("same tile should be suppressed")
	}
	if f.Count() != 1 {
		t.Fatalf("count=%d want 1", f.Count())
	}
	got := f.Instances()[0].Pos
	if got != tc(2, 2) {
		t.Fatalf("not snapped to tile center: %v", got)
	}
}

func TestCleanTrashOnEmptyIsNoop(t *testing.T) {
	g := openGrid(t, 5, 5)
	f := New(g, Config{MaxTrash: 10, LoseThreshold: 1}, nil)
	f.CreateTrash(tc(0, 0))
	before := f.Instances()
	if f.CleanTrash(tc(4, 4)) {
		t.Fatalf("clean far away should fail")
	}
	after := f.Instances()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("state changed: %v -> %v", before, after)
	}
}

type fixedGrid struct{}

func (fixedGrid) NearestWalkableTile(p grid.Vec) grid.Vec { return p }
func (fixedGrid) WorldToTile(p grid.Vec) grid.Tile        { return grid.Tile{X: int(p.X), Y: int(p.Y)} }
func (fixedGrid) TileCenter(t grid.Tile) grid.Vec {
	return grid.Vec{X: float64(t.X) + 0.5, Y: float64(t.Y) + 0.5}
}

func TestCleanTrashRemovesOldestMatch(t *testing.T) {
	f := New(fixedGrid{}, Config{MaxTrash: 10, LoseThreshold: 1}, nil)
	// Two instances within reach of the clean point but 0.6 apart (no merge).
	a, _ := f.CreateTrash(grid.Vec{X: 1.0, Y: 1.0})
	b, _ := f.CreateTrash(grid.Vec{X: 1.6, Y: 1.0})
	if !f.CleanTrash(grid.Vec{X: 1.5, Y: 1.0}) {
		t.Fatalf("clean failed")
	}
	left := f.Instances()
	if len(left) != 1 || left[0].ID != b.ID {
		t.Fatalf("expected %s removed first, left=%v", a.ID, left)
	}
}

func TestTakeTrashReturnsRemovedInstance(t *testing.T) {
	f := New(fixedGrid{}, Config{MaxTrash: 10, LoseThreshold: 1}, nil)
	a, _ := f.CreateTrash(grid.Vec{X: 1.0, Y: 1.0})
	got, ok := f.TakeTrash(grid.Vec{X: 1.3, Y: 1.0})
	if !ok {
		t.Fatalf("take failed")
	}
	if got.ID != a.ID || got.Pos != a.Pos {
		t.Fatalf("took %+v want %+v", got, a)
	}
	if _, ok := f.TakeTrash(grid.Vec{X: 1.3, Y: 1.0}); ok || f.Count() != 0 {
		t.Fatalf("second take should find nothing, count=%d", f.Count())
	}
}

func TestCleanArea(t *testing.T) {
	g := openGrid(t, 7, 7)
	f := New(g, Config{MaxTrash: 49, LoseThreshold: 1}, nil)
	// 5x5 block around (3,3).
	for x := 1; x <= 5; x++ {
		for y := 1; y <= 5; y++ {
			if _, ok := f.CreateTrash(tc(x, y)); !ok {
				t.Fatalf("create (%d,%d) failed", x, y)
			}
		}
	}
	removed := f.CleanArea(tc(3, 3), 2, 2)
	if removed != 9 {
		t.Fatalf("removed=%d want 9", removed)
	}
	if f.Count() != 16 {
		t.Fatalf("count=%d want 16", f.Count())
	}
	for x := 2; x <= 4; x++ {
		for y := 2; y <= 4; y++ {
			if f.HasTrashAt(tc(x, y)) {
				t.Fatalf("trash left inside rectangle at (%d,%d)", x, y)
			}
		}
	}
	for _, p := range []grid.Vec{tc(1, 1), tc(5, 5), tc(1, 3), tc(3, 5)} {
		if !f.HasTrashAt(p) {
			t.Fatalf("trash outside rectangle removed at %v", p)
		}
	}
	if f.CleanArea(tc(3, 3), 2, 2) != 0 {
		t.Fatalf("second clean should be a no-op")
	}
}

func TestLoseConditionSignalsOnce(t *testing.T) {
	g := openGrid(t, 10, 10)
	f := New(g, Config{MaxTrash: 10, LoseThreshold: 0.8}, nil)
	sig := &gameOverCounter{}
	f.SetGameOverSignal(sig)
	for i := 0; i < 7; i++ {
		f.CreateTrash(tc(i, 0))
	}
	if sig.n != 0 {
		t.Fatalf("signaled at 7/10")
	}
	f.CreateTrash(tc(7, 0))
	if sig.n != 1 {
		t.Fatalf("signals=%d want 1 at 8/10", sig.n)
	}
	f.CreateTrash(tc(8, 0))
	if sig.n != 1 {
		t.Fatalf("duplicate signal at 9/10")
	}
	// Dropping below re-arms.
	f.CleanTrash(tc(8, 0))
	f.CleanTrash(tc(7, 0))
	f.CreateTrash(tc(7, 0))
	if sig.n != 2 {
		t.Fatalf("signals=%d want 2 after re-crossing", sig.n)
	}
}

func TestCreateTrashRandom(t *testing.T) {
	g := openGrid(t, 5, 5)
	f := New(g, Config{MaxTrash: 10, LoseThreshold: 1}, rand.New(rand.NewSource(3)))
	if _, ok := f.CreateTrashRandom(tc(1, 1), nil); ok {
		t.Fatalf("empty variants should be a no-op")
	}
	it, ok := f.CreateTrashRandom(tc(1, 1), []string{"can", "bag"})
	if !ok {
		t.Fatalf("create failed")
	}
	if it.Variant != "can" && it.Variant != "bag" {
		t.Fatalf("variant=%q", it.Variant)
	}
}

func TestQueriesAndStats(t *testing.T) {
	g := openGrid(t, 10, 10)
	f := New(g, Config{MaxTrash: 20, LoseThreshold: 1}, nil)
	for _, p := range []grid.Vec{tc(0, 0), tc(1, 0), tc(2, 0), tc(9, 9)} {
		f.CreateTrash(p)
	}
	if !f.HasTrashAt(grid.Vec{X: 0.9, Y: 0.6}) {
		t.Fatalf("HasTrashAt near instance")
	}
	if f.HasTrashAt(tc(5, 5)) {
		t.Fatalf("HasTrashAt on clean tile")
	}
	if n := f.CountInRadius(tc(1, 0), 1); n != 3 {
		t.Fatalf("CountInRadius=%d want 3", n)
	}
	st := f.Stats()
	if st.Count != 4 || st.Max != 20 || st.Percentage != 20 {
		t.Fatalf("stats=%+v", st)
	}
}
