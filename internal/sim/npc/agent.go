package npc

import (
	"fmt"
	"math/rand"

	"munaypaq.game/internal/sim/action"
	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/powerup"
	"munaypaq.game/internal/sim/trash"
)

type Faction int

const (
	Good Faction = iota
	Bad
)

func (f Faction) String() string {
	switch f {
	case Good:
		return "GOOD"
	case Bad:
		return "BAD"
	default:
		return fmt.Sprintf("Faction(%d)", int(f))
	}
}

func (f Faction) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// arriveEpsilon is how close counts as standing on the target.
const arriveEpsilon = 0.1

type Grid interface {
	NearestWalkableTile(p grid.Vec) grid.Vec
	IsWalkable(p grid.Vec) bool
}

type Field interface {
	HasTrashAt(p grid.Vec) bool
	CountInRadius(p grid.Vec, radius float64) int
	CreateTrash(p grid.Vec) (trash.Instance, bool)
	CleanTrash(p grid.Vec) bool
}

type PowerupSpawner interface {
	SpawnAt(p grid.Vec, k powerup.Kind)
}

// FactionListener is told whenever an agent changes faction.
type FactionListener interface {
	FactionChanged(a *Agent, f Faction)
}

type Params struct {
	MoveInterval            float64
	MoveSpeed               float64
	CleaningTime            float64
	TrashCreationInterval   float64
	CorruptionCheckInterval float64
	PowerupDropChance       float64
	PowerupKinds            []powerup.Kind
	BadToGoodChance         float64
	GoodToBadChance         float64
	TrashInfluenceRadius    float64
	DirtyCountThreshold     int
}

// Deps are the collaborators an agent talks to. Progress, Powerups and Listener may be nil.
type Deps struct {
	Grid     Grid
	Field    Field
	Rng      *rand.Rand
	Progress action.Progress
	Powerups PowerupSpawner
	Listener FactionListener
}

type phase int

const (
	phaseWaitMove phase = iota
	phaseCleaning
	phaseWaitTrash
)

// Agent runs two uncoupled cycles each tick: move/act and the periodic conversion check.
// A conversion never interrupts a clean already in progress.
type Agent struct {
	ID string

	p    Params
	deps Deps

	pos     grid.Vec
	target  grid.Vec
	faction Faction
	moving  bool

	phase   phase
	timer   float64
	waitFor float64
	clean   *action.Timed

	convTimer float64
}

func New(id string, pos grid.Vec, f Faction, p Params, deps Deps) *Agent {
	if deps.Rng == nil {
		deps.Rng = rand.New(rand.NewSource(1))
	}
	a := &Agent{
		ID:      id,
		p:       p,
		deps:    deps,
		pos:     pos,
		target:  pos,
		faction: f,
		clean:   action.NewTimed(deps.Progress),
	}
	a.enterWaitMove()
	return a
}

func (a *Agent) Pos() grid.Vec          { return a.pos }
func (a *Agent) Target() grid.Vec       { return a.target }
func (a *Agent) Faction() Faction       { return a.faction }
func (a *Agent) Moving() bool           { return a.moving }
func (a *Agent) PerformingAction() bool { return a.clean.Active() }

// CleanProgress is the fraction of the current clean completed, 0 when idle.
func (a *Agent) CleanProgress() float64 {
	if !a.clean.Active() {
		return 0
	}
	return action.Fraction(a.clean.Elapsed(), a.p.CleaningTime)
}

// Step advances the agent by dt seconds.
func (a *Agent) Step(dt float64) {
	a.moveToTarget(dt)
	a.stepCycle(dt)
	a.stepConversion(dt)
}

func (a *Agent) moveToTarget(dt float64) {
	if a.pos.Dist(a.target) > arriveEpsilon {
		a.pos = a.pos.MoveTowards(a.target, a.p.MoveSpeed*dt)
		a.moving = true
		return
	}
	a.moving = false
}

func (a *Agent) stepCycle(dt float64) {
	switch a.phase {
	case phaseWaitMove:
		a.timer += dt
		if a.timer < a.waitFor {
			return
		}
		if !a.clean.Active() {
			a.moveRandomly()
		}
		switch a.faction {
		case Good:
			a.tryClean()
		case Bad:
			a.phase = phaseWaitTrash
			a.timer = 0
			a.waitFor = a.jitter(a.p.TrashCreationInterval)
		}
	case phaseCleaning:
		if a.clean.Advance(dt, a.p.CleaningTime) {
			a.finishClean()
			a.enterWaitMove()
		}
	case phaseWaitTrash:
		a.timer += dt
		if a.timer < a.waitFor {
			return
		}
		// No faction check here: an agent reformed during this wait still drops its trash.
		if !a.clean.Active() {
			a.deps.Field.CreateTrash(a.pos)
		}
		a.enterWaitMove()
	}
}

func (a *Agent) enterWaitMove() {
	a.phase = phaseWaitMove
	a.timer = 0
	a.waitFor = a.jitter(a.p.MoveInterval)
}

// jitter returns base ± 1, never negative.
func (a *Agent) jitter(base float64) float64 {
	v := base + a.deps.Rng.Float64()*2 - 1
	if v < 0 {
		return 0
	}
	return v
}

func (a *Agent) moveRandomly() {
	if a.moving || a.clean.Active() {
		return
	}
	dir := grid.Directions[a.deps.Rng.Intn(len(grid.Directions))]
	cand := a.deps.Grid.NearestWalkableTile(a.pos.Add(dir))
	if a.deps.Grid.IsWalkable(cand) {
		a.target = cand
	}
}

func (a *Agent) tryClean() {
	if !a.deps.Field.HasTrashAt(a.pos) {
		a.enterWaitMove()
		return
	}
	a.phase = phaseCleaning
	a.clean.Start()
}

func (a *Agent) finishClean() {
	if !a.deps.Field.CleanTrash(a.pos) {
		return
	}
	if a.deps.Powerups == nil || len(a.p.PowerupKinds) == 0 {
		return
	}
	if a.deps.Rng.Float64() >= a.p.PowerupDropChance {
		return
	}
	k := a.p.PowerupKinds[a.deps.Rng.Intn(len(a.p.PowerupKinds))]
	a.deps.Powerups.SpawnAt(a.pos, k)
}

func (a *Agent) stepConversion(dt float64) {
	if a.p.CorruptionCheckInterval <= 0 {
		return
	}
	a.convTimer += dt
	for a.convTimer >= a.p.CorruptionCheckInterval {
		a.convTimer -= a.p.CorruptionCheckInterval
		a.CheckConversion()
	}
}

// CheckConversion runs one conversion roll against the local dirt level.
func (a *Agent) CheckConversion() {
	switch a.faction {
	case Good:
		if a.inDirtyArea() && a.deps.Rng.Float64() < a.p.GoodToBadChance {
			a.becomeBad()
		}
	case Bad:
		if a.inCleanArea() && a.deps.Rng.Float64() < a.p.BadToGoodChance {
			a.BecomeGood()
		}
	}
}

func (a *Agent) inDirtyArea() bool {
	if a.deps.Field.HasTrashAt(a.pos) {
		return true
	}
	return a.deps.Field.CountInRadius(a.pos, a.p.TrashInfluenceRadius) > a.p.DirtyCountThreshold
}

func (a *Agent) inCleanArea() bool {
	if a.deps.Field.HasTrashAt(a.pos) {
		return false
	}
	return a.deps.Field.CountInRadius(a.pos, a.p.TrashInfluenceRadius) == 0
}

// becomeBad flips the agent and litters its tile on the spot.
func (a *Agent) becomeBad() {
	a.setFaction(Bad)
	a.deps.Field.CreateTrash(a.pos)
}

func (a *Agent) BecomeGood() {
	a.setFaction(Good)
}

func (a *Agent) setFaction(f Faction) {
	if a.faction == f {
		return
	}
	a.faction = f
	if a.deps.Listener != nil {
		a.deps.Listener.FactionChanged(a, f)
	}
}
