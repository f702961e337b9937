// Package score tracks the running session score and keeps the persisted high-score table.
package score

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"munaypaq.game/internal/persistence/prefs"
)

const (
	KeyLastName   = "LastPlayerName"
	KeyLastScore  = "LastScore"
	KeyLastDirt   = "LastCityDirt"
	KeyHighScores = "HighScoreList_v1"

	DefaultPlayerName = "Player"
	DefaultMaxEntries = 10

	dateLayout = "2006-01-02 15:04"
)

// DirtSource reports the live trash count used as the saved dirt level.
type DirtSource interface {
	TrashCount() int
}

type Entry struct {
	PlayerName      string `json:"playerName"`
	Score           int    `json:"score"`
	CityDirtLevel   int    `json:"cityDirtLevel"`
	Date            string `json:"date"`
	DurationSeconds int    `json:"durationSeconds"`
}

type List struct {
	Entries []Entry `json:"entries"`
}

type Tracker struct {
	store      prefs.Store
	dirt       DirtSource
	maxEntries int

	// now is swapped in tests.
	now func() time.Time

	score   int
	name    string
	start   time.Time
	running bool

	// recorded is the entry inserted for the current session; committed once the store saved it.
	recorded  *Entry
	committed bool
}

// New builds a tracker over store. The player name is pre-filled from the last save.
func New(store prefs.Store, dirt DirtSource, maxEntries int) *Tracker {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	t := &Tracker{
		store:      store,
		dirt:       dirt,
		maxEntries: maxEntries,
		now:        time.Now,
		name:       DefaultPlayerName,
	}
	if store.HasKey(KeyLastName) {
		t.name = store.GetString(KeyLastName, DefaultPlayerName)
	}
	return t
}

func (t *Tracker) SetDirtSource(d DirtSource) { t.dirt = d }

func (t *Tracker) StartSession() {
	t.start = t.now()
	t.running = true
	t.score = 0
	t.recorded = nil
	t.committed = false
}

func (t *Tracker) StopSession()         { t.running = false }
func (t *Tracker) SessionRunning() bool { return t.running }
func (t *Tracker) AddScore(n int)       { t.score += n }
func (t *Tracker) ResetScore()          { t.score = 0 }
func (t *Tracker) CurrentScore() int    { return t.score }

func (t *Tracker) CurrentPlayerName() string { return t.name }

// SetPlayerName ignores empty names.
func (t *Tracker) SetPlayerName(name string) {
	if name != "" {
		t.name = name
	}
}

// ElapsedSeconds is whole seconds since StartSession, or 0 when no session runs.
func (t *Tracker) ElapsedSeconds() int {
	if !t.running {
		return 0
	}
	d := t.now().Sub(t.start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (t *Tracker) dirtLevel() int {
	if t.dirt == nil {
		return -1
	}
	return t.dirt.TrashCount()
}

// SaveScoreAndCityState records the current score under playerName (or the current name
// when empty) and inserts it into the high-score table. A session is inserted once: after
// a failed store write, calling it again only retries the write of the recorded entry.
func (t *Tracker) SaveScoreAndCityState(playerName string) (Entry, error) {
	if t.recorded != nil {
		e := *t.recorded
		if t.committed {
			return e, nil
		}
		if err := t.store.Save(); err != nil {
			return e, fmt.Errorf("save high scores: %w", err)
		}
		t.committed = true
		return e, nil
	}
	t.SetPlayerName(playerName)
	e := Entry{
		PlayerName:      t.name,
		Score:           t.score,
		CityDirtLevel:   t.dirtLevel(),
		Date:            t.now().Local().Format(dateLayout),
		DurationSeconds: t.ElapsedSeconds(),
	}

	t.store.SetString(KeyLastName, e.PlayerName)
	t.store.SetInt(KeyLastScore, e.Score)
	t.store.SetInt(KeyLastDirt, e.CityDirtLevel)

	list := t.LoadHighScoreList()
	list.Entries = insertRanked(list.Entries, e, t.maxEntries)
	b, err := json.Marshal(list)
	if err != nil {
		return e, fmt.Errorf("encode high scores: %w", err)
	}
	t.store.SetString(KeyHighScores, string(b))
	t.recorded = &e
	if err := t.store.Save(); err != nil {
		return e, fmt.Errorf("save high scores: %w", err)
	}
	t.committed = true
	return e, nil
}

// Saved reports whether the current session's entry reached the store.
func (t *Tracker) Saved() bool { return t.committed }

// insertRanked appends e, sorts by score descending keeping insertion order among ties,
// and truncates to limit.
func insertRanked(entries []Entry, e Entry, limit int) []Entry {
	entries = append(entries, e)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// LoadHighScoreList never fails: missing or corrupt data reads as an empty list.
func (t *Tracker) LoadHighScoreList() List {
	return LoadHighScores(t.store)
}

func LoadHighScores(store prefs.Store) List {
	if !store.HasKey(KeyHighScores) {
		return List{Entries: []Entry{}}
	}
	var list List
	if err := json.Unmarshal([]byte(store.GetString(KeyHighScores, "")), &list); err != nil || list.Entries == nil {
		return List{Entries: []Entry{}}
	}
	return list
}
