package tuning

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := `
tick_rate_hz: 10
trash:
  max_trash: 10
  lose_threshold: 0.5
npc:
  good_to_bad_chance: 1.0
`
	if err := os.WriteFile(p, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TickRateHz != 10 || got.Trash.MaxTrash != 10 || got.Trash.LoseThreshold != 0.5 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.NPC.GoodToBadChance != 1.0 {
		t.Fatalf("good_to_bad_chance=%v", got.NPC.GoodToBadChance)
	}
	// Untouched keys keep defaults.
	if got.Player.AutoCleanTime != 1.5 || got.Session.MaxHighScores != 10 {
		t.Fatalf("defaults lost: %+v", got.Player)
	}
	if got.Grid.Map != DefaultMap {
		t.Fatalf("default map lost")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("trash:\n  lose_threshold: 1.5\ntick_rate_hz: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(p)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"lose_threshold", "tick_rate_hz"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestValidateReportsChancesInFieldOrder(t *testing.T) {
	tune := Defaults()
	tune.NPC.PowerupDropChance = 2
	tune.NPC.BadToGoodChance = -1
	tune.NPC.GoodToBadChance = 3
	want := strings.Join([]string{
		"npc.powerup_drop_chance must be in [0,1], got 2",
		"npc.bad_to_good_chance must be in [0,1], got -1",
		"npc.good_to_bad_chance must be in [0,1], got 3",
	}, "\n")
	for i := 0; i < 20; i++ {
		err := tune.Validate()
		if err == nil || err.Error() != want {
			t.Fatalf("run %d: got %v\nwant %s", i, err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	got, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	if strings.TrimSpace(got.Grid.Map) != strings.TrimSpace(want.Grid.Map) {
		t.Fatalf("shipped map differs from DefaultMap:\n%s", got.Grid.Map)
	}
	got.Grid.Map, want.Grid.Map = "", ""
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("shipped tuning=%+v\nwant %+v", got, want)
	}
}
