package player

import (
	"math/rand"
	"testing"

	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/trash"
)

type scoreSink struct{ total int }

func (s *scoreSink) AddScore(n int) { s.total += n }

func setup(t *testing.T, src string) (*grid.Grid, *trash.Field) {
	t.Helper()
	tm, om, err := grid.ParseMap(src, grid.Config{CellSize: 1})
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	g, err := grid.New(tm, om, grid.Config{CellSize: 1}, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g, trash.New(g, trash.Config{MaxTrash: 10, LoseThreshold: 1}, nil)
}

func params() Params {
	return Params{MoveSpeed: 5, AutoCleanTime: 1.0, AutoCleanDelay: 0.2, PointsPerTrash: 10}
}

func at(x, y int) grid.Vec { return grid.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5} }

func run(pl *Player, seconds, dt float64) (cleaned int) {
	for t := 0.0; t < seconds; t += dt {
		if pl.Step(dt) {
			cleaned++
		}
	}
	return cleaned
}

func TestSpeedBoostRestoresBaseTime(t *testing.T) {
	g, f := setup(t, ".")
	pl := New(at(0, 0), params(), g, f, nil, nil)

	pl.ApplySpeedBoost(2, 0.5)
	if pl.AutoCleanTime() != 0.5 {
		t.Fatalf("boosted time=%v want 0.5", pl.AutoCleanTime())
	}
	run(pl, 2.2, 0.1)
	if pl.AutoCleanTime() != 1.0 || pl.BoostActive() {
		t.Fatalf("after expiry time=%v active=%v", pl.AutoCleanTime(), pl.BoostActive())
	}
}

func TestSpeedBoostLastWins(t *testing.T) {
	g, f := setup(t, ".")
	pl := New(at(0, 0), params(), g, f, nil, nil)

	pl.ApplySpeedBoost(2, 0.5)
	run(pl, 0.5, 0.1)
	pl.ApplySpeedBoost(1, 0.25)
	if pl.AutoCleanTime() != 0.25 {
		t.Fatalf("replacement boost time=%v want 0.25 (not stacked)", pl.AutoCleanTime())
	}
	run(pl, 1.1, 0.1)
	if pl.AutoCleanTime() != 1.0 {
		t.Fatalf("second boost expiry time=%v want 1.0", pl.AutoCleanTime())
	}
	run(pl, 2, 0.1)
	if pl.AutoCleanTime() != 1.0 {
		t.Fatalf("time drifted after first boost window: %v", pl.AutoCleanTime())
	}
}

func TestAutoCleanAwardsScore(t *testing.T) {
	g, f := setup(t, ".")
	f.CreateTrash(at(0, 0))
	sink := &scoreSink{}
	pl := New(at(0, 0), params(), g, f, sink, nil)

	run(pl, 0.15, 0.05)
	if pl.AutoCleaning() {
		t.Fatalf("auto-clean started before the stationary delay")
	}
	if n := run(pl, 1.5, 0.05); n != 1 {
		t.Fatalf("cleaned=%d want 1", n)
	}
	if f.Count() != 0 || sink.total != 10 {
		t.Fatalf("count=%d score=%d", f.Count(), sink.total)
	}
}

func TestMoveCancelsAutoClean(t *testing.T) {
	g, f := setup(t, "...")
	f.CreateTrash(at(0, 0))
	sink := &scoreSink{}
	pl := New(at(0, 0), params(), g, f, sink, nil)

	run(pl, 0.5, 0.05)
	if !pl.AutoCleaning() {
		t.Fatalf("expected auto-clean in progress")
	}
	if !pl.Move(grid.Right) {
		t.Fatalf("move refused")
	}
	if pl.AutoCleaning() {
		t.Fatalf("move should cancel the auto-clean")
	}
	run(pl, 2, 0.05)
	if sink.total != 0 || f.Count() != 1 {
		t.Fatalf("cancelled clean awarded score=%d count=%d", sink.total, f.Count())
	}
	if pl.Pos() != at(1, 0) {
		t.Fatalf("pos=%v want %v", pl.Pos(), at(1, 0))
	}
}

func TestTrashVanishingCancelsAutoClean(t *testing.T) {
	g, f := setup(t, ".")
	f.CreateTrash(at(0, 0))
	sink := &scoreSink{}
	pl := New(at(0, 0), params(), g, f, sink, nil)

	run(pl, 0.5, 0.05)
	if !pl.AutoCleaning() {
		t.Fatalf("expected auto-clean in progress")
	}
	f.CleanTrash(at(0, 0))
	pl.Step(0.05)
	if pl.AutoCleaning() {
		t.Fatalf("auto-clean should stop when the trash is gone")
	}
	if sink.total != 0 {
		t.Fatalf("score=%d want 0", sink.total)
	}
}

func TestMoveIgnoredWhileMoving(t *testing.T) {
	g, f := setup(t, ".....")
	pl := New(at(0, 0), params(), g, f, nil, nil)
	if !pl.Move(grid.Right) {
		t.Fatalf("first move refused")
	}
	if pl.Move(grid.Right) {
		t.Fatalf("second move accepted mid-step")
	}
	run(pl, 1, 0.05)
	if pl.Pos() != at(1, 0) || pl.Moving() {
		t.Fatalf("pos=%v moving=%v", pl.Pos(), pl.Moving())
	}
}

func TestMoveIntoVoidStaysPut(t *testing.T) {
	g, f := setup(t, "...")
	pl := New(at(2, 0), params(), g, f, nil, nil)
	pl.Move(grid.Right)
	run(pl, 0.5, 0.05)
	if pl.Pos() != at(2, 0) {
		t.Fatalf("walked off the map: %v", pl.Pos())
	}
}
