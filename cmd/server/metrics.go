package main

import (
	"fmt"
	"io"
	"net/http"

	"munaypaq.game/internal/sim/world"
)

type metricsSource interface {
	Metrics() world.Metrics
}

func metricsHandler(src metricsSource) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := src.Metrics()
		writeMetrics(rw, m.SessionID, m)
	}
}

// writeMetrics renders m in the Prometheus text exposition format.
func writeMetrics(out io.Writer, session string, m world.Metrics) {
	gauge := func(name, help string, v any) {
		fmt.Fprintf(out, "# HELP munaypaq_%s %s\n", name, help)
		fmt.Fprintf(out, "# TYPE munaypaq_%s gauge\n", name)
		fmt.Fprintf(out, "munaypaq_%s{session=%q} %v\n", name, session, v)
	}
	gauge("tick", "Last completed tick.", m.Tick)
	gauge("city_trash", "Trash instances in the city.", m.TrashCount)
	gauge("city_trash_max", "Trash capacity of the city.", m.MaxTrash)
	gauge("clients", "Connected clients.", m.Clients)
	gauge("score", "Current session score.", m.Score)
	gauge("inbox_depth", "Queued player commands.", m.InboxDepth)
	gauge("step_ms", "Last tick step duration in milliseconds.", fmt.Sprintf("%.3f", m.StepMS))
	gauge("paused", "1 while the session is paused.", boolGauge(m.Paused))
	gauge("game_over", "1 once the city crossed the lose threshold.", boolGauge(m.GameOver))

	fmt.Fprintf(out, "# HELP munaypaq_npcs NPCs by faction.\n")
	fmt.Fprintf(out, "# TYPE munaypaq_npcs gauge\n")
	fmt.Fprintf(out, "munaypaq_npcs{session=%q,faction=%q} %d\n", session, "good", m.GoodNPCs)
	fmt.Fprintf(out, "munaypaq_npcs{session=%q,faction=%q} %d\n", session, "bad", m.BadNPCs)
}

func boolGauge(b bool) int {
	if b {
		return 1
	}
	return 0
}
