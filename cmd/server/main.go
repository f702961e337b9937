package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	persistlog "munaypaq.game/internal/persistence/log"
	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/sim/tuning"
	"munaypaq.game/internal/sim/world"
	"munaypaq.game/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (defaults are used when missing)")
		storeKind  = flag.String("store", "sqlite", "preference store: sqlite|memory")
		seed       = flag.Int64("seed", 0, "override the tuning seed (0 keeps the configured seed)")
		playerName = flag.String("player", "", "player name for this session (default: last saved name)")
		disableLog = flag.Bool("disable_tick_log", false, "disable the per-tick event log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}
	prefsPath := filepath.Join(*dataDir, "prefs.sqlite")
	store, err := prefs.Open(*storeKind, prefsPath)
	if err != nil {
		logger.Fatalf("open prefs: %v", err)
	}
	defer store.Close()
	if fi, err := os.Stat(prefsPath); err == nil && *storeKind != "memory" {
		logger.Printf("prefs: %s (%s)", prefsPath, humanize.Bytes(uint64(fi.Size())))
	}

	w, err := world.New(tune, store, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if name := strings.TrimSpace(*playerName); name != "" {
		w.Tracker().SetPlayerName(name)
	}
	logger.Printf("session %s: seed=%d tick_rate=%dHz npcs=%d trash=%d/%d",
		w.SessionID(), tune.Seed, tune.TickRateHz, len(w.NPCs()), w.Field().Count(), tune.Trash.MaxTrash)

	if !*disableLog {
		tickLog := persistlog.NewSessionLog(*dataDir)
		defer tickLog.Close()
		w.SetTickLogger(tickLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, store, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ws.HealthHandler())
	mux.HandleFunc("/metrics", metricsHandler(w))
	mux.HandleFunc("/v1/highscores", wsSrv.HighScoresHandler())
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	if envBool("MP_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		// Local-only; read-only views of the running session.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				SessionID string        `json:"session_id"`
				Metrics   world.Metrics `json:"metrics"`
			}{
				SessionID: w.SessionID(),
				Metrics:   w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
	} else {
		logger.Printf("admin endpoints disabled (MP_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("MP_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
