package world

import (
	"time"

	"munaypaq.game/internal/protocol"
)

// Metrics is a read-only view of the last tick, safe to read from any goroutine.
type Metrics struct {
	SessionID  string  `json:"session_id"`
	Tick       uint64  `json:"tick"`
	TrashCount int     `json:"trash_count"`
	MaxTrash   int     `json:"max_trash"`
	GoodNPCs   int     `json:"good_npcs"`
	BadNPCs    int     `json:"bad_npcs"`
	Score      int     `json:"score"`
	Clients    int     `json:"clients"`
	Paused     bool    `json:"paused"`
	GameOver   bool    `json:"game_over"`
	StepMS     float64 `json:"step_ms"`
	InboxDepth int     `json:"inbox_depth"`
}

func (w *World) Metrics() Metrics {
	if m := w.metrics.Load(); m != nil {
		return *m
	}
	return Metrics{}
}

func (w *World) publishMetrics(st protocol.StateMsg, took time.Duration) {
	w.metrics.Store(&Metrics{
		SessionID:  st.SessionID,
		Tick:       st.Tick,
		TrashCount: st.City.TrashCount,
		MaxTrash:   st.City.MaxTrash,
		GoodNPCs:   st.City.GoodNPCs,
		BadNPCs:    st.City.BadNPCs,
		Score:      st.Score.Score,
		Clients:    len(w.clients),
		Paused:     st.Paused,
		GameOver:   st.GameOver,
		StepMS:     float64(took.Microseconds()) / 1000,
		InboxDepth: len(w.inbox),
	})
}
