package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	persistlog "munaypaq.game/internal/persistence/log"
	"munaypaq.game/internal/sim/tuning"
)

func main() {
	var (
		sessionsDir = flag.String("sessions", persistlog.SessionsDir("data"), "directory holding one tick log directory per session")
		tuningPath  = flag.String("tuning", "./configs/tuning.yaml", "tuning the sessions were recorded with (defaults are used when missing)")
		session     = flag.String("session", "", "only replay this session id")
		verify      = flag.Bool("verify", true, "re-simulate each session and compare state digests")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}

	sessions, err := persistlog.ListSessions(*sessionsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list sessions:", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found in", *sessionsDir)
		os.Exit(1)
	}

	failed := false
	for _, s := range sessions {
		if *session != "" && s.ID != *session {
			continue
		}
		sum, ver, err := replaySession(tune, s, *verify)
		if err != nil {
			fmt.Fprintf(os.Stderr, "session %s: %v\n", s.ID, err)
			failed = true
			ver = nil
		}
		if sum != nil {
			printSummary(sum, ver)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printSummary(s *summary, v *verifier) {
	fmt.Printf("session %s seed=%d ticks=%s (%d..%d)\n", s.SessionID, s.Seed, humanize.Comma(int64(s.Ticks)), s.FirstTick, s.LastTick)
	fmt.Printf("  final: trash=%d good=%d bad=%d score=%s\n",
		s.Final.TrashCount, s.Final.GoodNPCs, s.Final.BadNPCs, humanize.Comma(int64(s.Final.Score)))
	fmt.Printf("  peak trash=%d at tick %d\n", s.PeakTrash, s.PeakTick)
	if s.GameOver {
		fmt.Printf("  game over at tick %d\n", s.GameOverTick)
	}
	for _, typ := range s.eventTypes() {
		fmt.Printf("  %-14s %s\n", typ, humanize.Comma(int64(s.Events[typ])))
	}
	if v != nil {
		fmt.Printf("  replay ok: checked=%s ticks\n", humanize.Comma(int64(v.checked)))
	}
}
