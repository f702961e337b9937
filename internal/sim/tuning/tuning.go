package tuning

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`

	Grid     Grid     `yaml:"grid"`
	Trash    Trash    `yaml:"trash"`
	NPC      NPC      `yaml:"npc"`
	Player   Player   `yaml:"player"`
	Powerups Powerups `yaml:"powerups"`
	Spawn    Spawn    `yaml:"spawn"`
	Session  Session  `yaml:"session"`
}

type Grid struct {
	CellSize float64    `yaml:"cell_size"`
	Origin   [2]float64 `yaml:"origin"`
	// Map is an ASCII city layout, see grid.ParseMap for the legend.
	Map string `yaml:"map"`
}

type Trash struct {
	MaxTrash      int      `yaml:"max_trash"`
	LoseThreshold float64  `yaml:"lose_threshold"`
	Variants      []string `yaml:"variants"`
}

type NPC struct {
	MoveInterval            float64  `yaml:"move_interval"`
	MoveSpeed               float64  `yaml:"move_speed"`
	CleaningTime            float64  `yaml:"cleaning_time"`
	TrashCreationInterval   float64  `yaml:"trash_creation_interval"`
	CorruptionCheckInterval float64  `yaml:"corruption_check_interval"`
	PowerupDropChance       float64  `yaml:"powerup_drop_chance"`
	PowerupKinds            []string `yaml:"powerup_kinds"`
	BadToGoodChance         float64  `yaml:"bad_to_good_chance"`
	GoodToBadChance         float64  `yaml:"good_to_bad_chance"`
	TrashInfluenceRadius    float64  `yaml:"trash_influence_radius"`
	DirtyCountThreshold     int      `yaml:"dirty_count_threshold"`
}

type Player struct {
	MoveSpeed      float64 `yaml:"move_speed"`
	AutoCleanTime  float64 `yaml:"auto_clean_time"`
	AutoCleanDelay float64 `yaml:"auto_clean_delay"`
	PointsPerTrash int     `yaml:"points_per_trash"`
}

type Powerups struct {
	MaxDistinctSlots     int     `yaml:"max_distinct_slots"`
	PickupRadius         float64 `yaml:"pickup_radius"`
	SpeedBoostDuration   float64 `yaml:"speed_boost_duration"`
	SpeedBoostMultiplier float64 `yaml:"speed_boost_multiplier"`
	AnnouncementRadius   float64 `yaml:"announcement_radius"`
	TrashBinWidth        int     `yaml:"trash_bin_width"`
	TrashBinHeight       int     `yaml:"trash_bin_height"`
}

type Spawn struct {
	DirtyTiles         int `yaml:"dirty_tiles"`
	BadNPCs            int `yaml:"bad_npcs"`
	GoodNPCs           int `yaml:"good_npcs"`
	MaxAttemptsPerItem int `yaml:"max_attempts_per_item"`
}

type Session struct {
	MaxHighScores int `yaml:"max_high_scores"`
}

// DefaultMap is a small downtown block: '.' street, '#' void, 'X' building props,
// '~' benches the player can walk over, '^' trigger zones.
const DefaultMap = `
####################
#..................#
#.XX..X....X..XX...#
#.XX.......~..XX...#
#......^...........#
#..X.....XX....X...#
#........XX........#
#.~..X.........~...#
#..........X.......#
#.XX..~.......XX...#
#.XX......^...XX...#
#..................#
####################
`

func Defaults() Tuning {
	return Tuning{
		TickRateHz: 30,
		Seed:       1337,
		Grid: Grid{
			CellSize: 1,
			Map:      DefaultMap,
		},
		Trash: Trash{
			MaxTrash:      20,
			LoseThreshold: 0.8,
			Variants:      []string{"bag", "can", "bottle"},
		},
		NPC: NPC{
			MoveInterval:            3,
			MoveSpeed:               2,
			CleaningTime:            2,
			TrashCreationInterval:   4,
			CorruptionCheckInterval: 5,
			PowerupDropChance:       0.5,
			PowerupKinds:            []string{"TRASH_BIN", "ANNOUNCEMENT", "SPEED_BOOST"},
			BadToGoodChance:         0.5,
			GoodToBadChance:         0.6,
			TrashInfluenceRadius:    2,
			DirtyCountThreshold:     2,
		},
		Player: Player{
			MoveSpeed:      5,
			AutoCleanTime:  1.5,
			AutoCleanDelay: 0.2,
			PointsPerTrash: 10,
		},
		Powerups: Powerups{
			MaxDistinctSlots:     3,
			PickupRadius:         0.5,
			SpeedBoostDuration:   8,
			SpeedBoostMultiplier: 0.8,
			AnnouncementRadius:   0.7,
			TrashBinWidth:        2,
			TrashBinHeight:       2,
		},
		Spawn: Spawn{
			DirtyTiles:         5,
			BadNPCs:            5,
			GoodNPCs:           3,
			MaxAttemptsPerItem: 50,
		},
		Session: Session{
			MaxHighScores: 10,
		},
	}
}

// Load reads a tuning file on top of Defaults(); keys missing from the file keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be > 0, got %d", t.TickRateHz))
	}
	if t.Grid.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.cell_size must be > 0, got %v", t.Grid.CellSize))
	}
	if strings.TrimSpace(t.Grid.Map) == "" {
		errs = append(errs, errors.New("grid.map is empty"))
	}
	if t.Trash.MaxTrash <= 0 {
		errs = append(errs, fmt.Errorf("trash.max_trash must be > 0, got %d", t.Trash.MaxTrash))
	}
	if t.Trash.LoseThreshold <= 0 || t.Trash.LoseThreshold > 1 {
		errs = append(errs, fmt.Errorf("trash.lose_threshold must be in (0,1], got %v", t.Trash.LoseThreshold))
	}
	for _, c := range []struct {
		name string
		p    float64
	}{
		{"npc.powerup_drop_chance", t.NPC.PowerupDropChance},
		{"npc.bad_to_good_chance", t.NPC.BadToGoodChance},
		{"npc.good_to_bad_chance", t.NPC.GoodToBadChance},
	} {
		if c.p < 0 || c.p > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", c.name, c.p))
		}
	}
	if t.NPC.CleaningTime <= 0 || t.NPC.CorruptionCheckInterval <= 0 {
		errs = append(errs, errors.New("npc.cleaning_time and npc.corruption_check_interval must be > 0"))
	}
	if t.Player.AutoCleanTime <= 0 {
		errs = append(errs, fmt.Errorf("player.auto_clean_time must be > 0, got %v", t.Player.AutoCleanTime))
	}
	if t.Powerups.MaxDistinctSlots <= 0 {
		errs = append(errs, fmt.Errorf("powerups.max_distinct_slots must be > 0, got %d", t.Powerups.MaxDistinctSlots))
	}
	if t.Session.MaxHighScores <= 0 {
		errs = append(errs, fmt.Errorf("session.max_high_scores must be > 0, got %d", t.Session.MaxHighScores))
	}
	return errors.Join(errs...)
}
