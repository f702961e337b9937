package world

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync/atomic"

	"github.com/google/uuid"

	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/score"
	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/npc"
	"munaypaq.game/internal/sim/player"
	"munaypaq.game/internal/sim/powerup"
	"munaypaq.game/internal/sim/spawn"
	"munaypaq.game/internal/sim/trash"
	"munaypaq.game/internal/sim/tuning"
)

// SubscribeRequest registers a client that receives one STATE message per tick.
type SubscribeRequest struct {
	ID  string
	Out chan []byte
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry records one tick: the commands applied, a digest of the resulting
// state and a few counters for offline summaries.
type TickLogEntry struct {
	Tick       uint64           `json:"tick"`
	SessionID  string           `json:"session_id"`
	Seed       int64            `json:"seed"`
	Commands   []Command        `json:"commands,omitempty"`
	Digest     string           `json:"digest"`
	TrashCount int              `json:"trash_count"`
	GoodNPCs   int              `json:"good_npcs"`
	BadNPCs    int              `json:"bad_npcs"`
	Score      int              `json:"score"`
	Paused     bool             `json:"paused,omitempty"`
	GameOver   bool             `json:"game_over,omitempty"`
	Events     []protocol.Event `json:"events,omitempty"`
}

// World owns one instance of every component of a session.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg tuning.Tuning
	log *log.Logger

	gcfg      grid.Config
	tiles     *grid.TileMap
	obstacles *grid.ObstacleMap
	npcParams npc.Params

	// Per-session state, rebuilt by startSession.
	rng       *rand.Rand
	seed      int64
	sessionID string
	tick      uint64
	dt        float64

	grid      *grid.Grid
	field     *trash.Field
	drops     *powerup.Drops
	inventory *powerup.Inventory
	tracker   *score.Tracker
	player    *player.Player
	npcs      []*npc.Agent
	variants  []string

	paused        bool
	gameOver      bool
	gameOverSaved bool
	saveRetryAt   uint64
	running       bool

	events []protocol.Event

	clients map[string]chan []byte

	inbox chan Command
	join  chan SubscribeRequest
	leave chan string

	tickLogger    TickLogger
	tickLogFailed bool
	metrics       atomic.Pointer[Metrics]
}

// New builds a session from t. The store backs the score tracker; it is not closed by the world.
func New(t tuning.Tuning, store prefs.Store, logger *log.Logger) (*World, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	kinds, err := powerup.ParseKinds(t.NPC.PowerupKinds)
	if err != nil {
		return nil, fmt.Errorf("npc.powerup_kinds: %w", err)
	}

	gcfg := grid.Config{CellSize: t.Grid.CellSize, Origin: grid.Vec{X: t.Grid.Origin[0], Y: t.Grid.Origin[1]}}
	tiles, obstacles, err := grid.ParseMap(t.Grid.Map, gcfg)
	if err != nil {
		return nil, fmt.Errorf("city map: %w", err)
	}

	w := &World{
		cfg:       t,
		log:       logger,
		gcfg:      gcfg,
		tiles:     tiles,
		obstacles: obstacles,
		dt:        1 / float64(t.TickRateHz),
		variants:  t.Trash.Variants,
		npcParams: npc.Params{
			MoveInterval:            t.NPC.MoveInterval,
			MoveSpeed:               t.NPC.MoveSpeed,
			CleaningTime:            t.NPC.CleaningTime,
			TrashCreationInterval:   t.NPC.TrashCreationInterval,
			CorruptionCheckInterval: t.NPC.CorruptionCheckInterval,
			PowerupDropChance:       t.NPC.PowerupDropChance,
			PowerupKinds:            kinds,
			BadToGoodChance:         t.NPC.BadToGoodChance,
			GoodToBadChance:         t.NPC.GoodToBadChance,
			TrashInfluenceRadius:    t.NPC.TrashInfluenceRadius,
			DirtyCountThreshold:     t.NPC.DirtyCountThreshold,
		},
		clients: map[string]chan []byte{},
		inbox:   make(chan Command, 256),
		join:    make(chan SubscribeRequest, 16),
		leave:   make(chan string, 16),
	}
	w.tracker = score.New(store, nil, t.Session.MaxHighScores)
	if err := w.startSession(t.Seed); err != nil {
		return nil, err
	}
	return w, nil
}

// startSession rebuilds every per-session component from seed under a new session id
// and starts the tracker. Two worlds started from the same tuning and seed are identical.
func (w *World) startSession(seed int64) error {
	t := w.cfg
	rng := rand.New(rand.NewSource(seed))
	g, err := grid.New(w.tiles, w.obstacles, w.gcfg, rng, w.log)
	if err != nil {
		return err
	}

	w.seed = seed
	w.rng = rng
	w.sessionID = uuid.NewString()
	w.tick = 0
	w.grid = g
	w.drops = powerup.NewDrops(g)
	w.inventory = powerup.NewInventory(t.Powerups.MaxDistinctSlots)
	w.field = trash.New(g, trash.Config{MaxTrash: t.Trash.MaxTrash, LoseThreshold: t.Trash.LoseThreshold}, rng)
	w.field.SetGameOverSignal(w)
	w.tracker.SetDirtSource(w.field)
	w.npcs = nil

	start, ok := g.RandomWalkablePosition()
	if !ok {
		start = g.NearestWalkableTile(start)
	}
	w.player = player.New(start, player.Params{
		MoveSpeed:      t.Player.MoveSpeed,
		AutoCleanTime:  t.Player.AutoCleanTime,
		AutoCleanDelay: t.Player.AutoCleanDelay,
		PointsPerTrash: t.Player.PointsPerTrash,
	}, g, w.fieldFor(ActorPlayer), w.tracker, nil)

	sp := spawn.New(g, w.fieldFor(ActorSpawn), w.log)
	sp.Occupy(start)
	placed := sp.Run(spawn.Counts{
		DirtyTiles:         t.Spawn.DirtyTiles,
		BadNPCs:            t.Spawn.BadNPCs,
		GoodNPCs:           t.Spawn.GoodNPCs,
		MaxAttemptsPerItem: t.Spawn.MaxAttemptsPerItem,
	})
	for _, p := range placed.Bad {
		w.addNPC(p, npc.Bad, w.npcParams)
	}
	for _, p := range placed.Good {
		w.addNPC(p, npc.Good, w.npcParams)
	}
	// Spawn-time trash is part of the initial state, not a tick event.
	w.events = nil

	w.paused = false
	w.gameOver = false
	w.gameOverSaved = false
	w.saveRetryAt = 0
	w.tracker.StartSession()
	w.running = true
	return nil
}

func (w *World) addNPC(p grid.Vec, f npc.Faction, params npc.Params) {
	id := fmt.Sprintf("N%d", len(w.npcs)+1)
	a := npc.New(id, p, f, params, npc.Deps{
		Grid:     w.grid,
		Field:    w.fieldFor(id),
		Rng:      w.rng,
		Powerups: w.drops,
		Listener: w,
	})
	w.npcs = append(w.npcs, a)
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) Inbox() chan<- Command         { return w.inbox }
func (w *World) Join() chan<- SubscribeRequest { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }

func (w *World) SessionID() string             { return w.sessionID }
func (w *World) Seed() int64                   { return w.seed }
func (w *World) CurrentTick() uint64           { return w.tick }
func (w *World) TickRateHz() int               { return w.cfg.TickRateHz }
func (w *World) Paused() bool                  { return w.paused }
func (w *World) GameOver() bool                { return w.gameOver }
func (w *World) Running() bool                 { return w.running }
func (w *World) Tracker() *score.Tracker       { return w.tracker }
func (w *World) Field() *trash.Field           { return w.field }
func (w *World) Grid() *grid.Grid              { return w.grid }
func (w *World) Player() *player.Player        { return w.player }
func (w *World) Inventory() *powerup.Inventory { return w.inventory }
func (w *World) Drops() *powerup.Drops         { return w.drops }

// NPCs returns the agents in spawn order.
func (w *World) NPCs() []*npc.Agent {
	out := make([]*npc.Agent, len(w.npcs))
	copy(out, w.npcs)
	return out
}

func (w *World) factionCounts() (good, bad int) {
	for _, a := range w.npcs {
		if a.Faction() == npc.Good {
			good++
		} else {
			bad++
		}
	}
	return good, bad
}

func (w *World) emit(e protocol.Event) { w.events = append(w.events, e) }

func pos2(p grid.Vec) [2]float64 { return [2]float64{p.X, p.Y} }
