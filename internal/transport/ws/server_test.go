package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/score"
	"munaypaq.game/internal/sim/tuning"
	"munaypaq.game/internal/sim/world"
)

func startServer(t *testing.T) (*httptest.Server, *prefs.Memory) {
	t.Helper()
	cfg := tuning.Defaults()
	cfg.TickRateHz = 50
	store := prefs.NewMemory()
	w, err := world.New(cfg, store, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()

	s := NewServer(w, store, log.New(io.Discard, "", 0))
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", s.Handler())
	mux.HandleFunc("/v1/highscores", s.HighScoresHandler())
	mux.HandleFunc("/healthz", HealthHandler())
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts, store
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(base protocol.BaseMessage, raw []byte) bool) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if match(base, msg) {
			return
		}
	}
}

func TestStreamsStateAndAppliesInput(t *testing.T) {
	ts, _ := startServer(t)
	conn := dial(t, ts)

	readUntil(t, conn, func(b protocol.BaseMessage, _ []byte) bool { return b.Type == protocol.TypeState })

	in := `{"type":"INPUT","protocol_version":"` + protocol.Version + `","set_name":"killa"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(in)); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, func(b protocol.BaseMessage, raw []byte) bool {
		if b.Type != protocol.TypeState {
			return false
		}
		var st protocol.StateMsg
		if err := json.Unmarshal(raw, &st); err != nil {
			t.Fatalf("state: %v", err)
		}
		return st.Score.PlayerName == "killa"
	})
}

func TestInvalidInputGetsError(t *testing.T) {
	ts, _ := startServer(t)
	conn := dial(t, ts)

	in := `{"type":"INPUT","protocol_version":"` + protocol.Version + `","move":"SIDEWAYS"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(in)); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, func(b protocol.BaseMessage, raw []byte) bool {
		if b.Type != protocol.TypeError {
			return false
		}
		var e protocol.ErrorMsg
		if err := json.Unmarshal(raw, &e); err != nil {
			t.Fatalf("error msg: %v", err)
		}
		if e.Code != protocol.ErrProtoBadRequest {
			t.Fatalf("code=%s", e.Code)
		}
		return true
	})
}

func TestHighScoresEndpoint(t *testing.T) {
	ts, store := startServer(t)
	tr := score.New(store, nil, 10)
	tr.StartSession()
	tr.AddScore(70)
	if _, err := tr.SaveScoreAndCityState("inti"); err != nil {
		t.Fatalf("save: %v", err)
	}

	resp, err := http.Get(ts.URL + "/v1/highscores")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var list score.List
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Entries) != 1 || list.Entries[0].PlayerName != "inti" || list.Entries[0].Score != 70 {
		t.Fatalf("list=%+v", list)
	}

	health, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz status=%d", health.StatusCode)
	}
}
