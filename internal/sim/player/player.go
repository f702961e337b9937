package player

import (
	"munaypaq.game/internal/sim/action"
	"munaypaq.game/internal/sim/grid"
)

const arriveEpsilon = 0.1

type Grid interface {
	NearestWalkableTile(p grid.Vec) grid.Vec
	IsWalkable(p grid.Vec) bool
}

type Field interface {
	HasTrashAt(p grid.Vec) bool
	CleanTrash(p grid.Vec) bool
}

// Scorer receives points for every trash the player removes.
type Scorer interface {
	AddScore(n int)
}

type Params struct {
	MoveSpeed      float64
	AutoCleanTime  float64
	AutoCleanDelay float64
	PointsPerTrash int
}

type speedBoost struct {
	active    bool
	remaining float64
	base      float64
}

// Player moves one tile per input edge and auto-cleans the tile it stands on.
type Player struct {
	p      Params
	grid   Grid
	field  Field
	scorer Scorer

	pos    grid.Vec
	target grid.Vec
	moving bool

	stationary    float64
	autoCleanTime float64
	clean         *action.Timed
	boost         speedBoost
}

func New(pos grid.Vec, p Params, g Grid, f Field, s Scorer, progress action.Progress) *Player {
	return &Player{
		p:             p,
		grid:          g,
		field:         f,
		scorer:        s,
		pos:           pos,
		target:        pos,
		autoCleanTime: p.AutoCleanTime,
		clean:         action.NewTimed(progress),
	}
}

func (pl *Player) Pos() grid.Vec           { return pl.pos }
func (pl *Player) Target() grid.Vec        { return pl.target }
func (pl *Player) Moving() bool            { return pl.moving }
func (pl *Player) AutoCleaning() bool      { return pl.clean.Active() }
func (pl *Player) AutoCleanTime() float64  { return pl.autoCleanTime }
func (pl *Player) BoostActive() bool       { return pl.boost.active }
func (pl *Player) BoostRemaining() float64 { return pl.boost.remaining }
func (pl *Player) CleanProgress() float64  { return action.Fraction(pl.clean.Elapsed(), pl.autoCleanTime) }
func (pl *Player) SetScorer(s Scorer)      { pl.scorer = s }

// Move handles one directional press. It is ignored while a step is in flight and
// cancels any auto-clean when it starts a step.
func (pl *Player) Move(dir grid.Vec) bool {
	if pl.moving {
		return false
	}
	cand := pl.grid.NearestWalkableTile(pl.pos.Add(dir))
	if !pl.grid.IsWalkable(cand) {
		return false
	}
	pl.target = cand
	pl.moving = true
	pl.stopAutoClean()
	return true
}

// ApplySpeedBoost scales the auto-clean time by multiplier for duration seconds. A new
// boost replaces the active one.
func (pl *Player) ApplySpeedBoost(duration, multiplier float64) {
	if pl.boost.active {
		pl.autoCleanTime = pl.boost.base
	}
	pl.boost = speedBoost{active: true, remaining: duration, base: pl.autoCleanTime}
	pl.autoCleanTime = pl.boost.base * multiplier
}

// Step advances the player by dt seconds and reports whether a trash was cleaned.
func (pl *Player) Step(dt float64) bool {
	pl.stepBoost(dt)
	pl.moveToTarget(dt)
	return pl.stepAutoClean(dt)
}

func (pl *Player) stepBoost(dt float64) {
	if !pl.boost.active {
		return
	}
	pl.boost.remaining -= dt
	if pl.boost.remaining <= 0 {
		pl.autoCleanTime = pl.boost.base
		pl.boost = speedBoost{}
	}
}

func (pl *Player) moveToTarget(dt float64) {
	if pl.pos.Dist(pl.target) > arriveEpsilon {
		pl.pos = pl.pos.MoveTowards(pl.target, pl.p.MoveSpeed*dt)
		return
	}
	pl.pos = pl.target
	if pl.moving {
		pl.moving = false
		pl.stationary = 0
	}
}

func (pl *Player) stepAutoClean(dt float64) bool {
	if pl.moving || !pl.field.HasTrashAt(pl.pos) {
		pl.stopAutoClean()
		return false
	}
	if pl.clean.Active() {
		if !pl.clean.Advance(dt, pl.autoCleanTime) {
			return false
		}
		// Require the stationary delay again before the next clean.
		pl.stationary = 0
		if !pl.field.CleanTrash(pl.pos) {
			return false
		}
		if pl.scorer != nil {
			pl.scorer.AddScore(pl.p.PointsPerTrash)
		}
		return true
	}
	pl.stationary += dt
	if pl.stationary >= pl.p.AutoCleanDelay {
		pl.clean.Start()
	}
	return false
}

func (pl *Player) stopAutoClean() {
	pl.clean.Cancel()
	pl.stationary = 0
}
