package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/score"
	"munaypaq.game/internal/sim/world"
)

const clientQueue = 8

type Server struct {
	world *world.World
	store prefs.Store
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, store prefs.Store, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		store: store,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// Handler streams STATE every tick and feeds validated INPUT into the world inbox.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		clientID := uuid.NewString()
		out := make(chan []byte, clientQueue)
		s.world.Join() <- world.SubscribeRequest{ID: clientID, Out: out}
		s.log.Printf("client %s connected from %s", clientID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeInput {
				s.reject(out, protocol.ErrProtoBadRequest, "expected INPUT")
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				s.reject(out, protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			in, err := protocol.DecodeInput(msg)
			if err != nil {
				s.reject(out, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			cmd, err := world.CommandFromInput(in)
			if err != nil {
				s.reject(out, protocol.ErrBadRequest, err.Error())
				continue
			}
			s.world.Inbox() <- cmd
		}

		// Cleanup.
		s.world.Leave() <- clientID
		s.log.Printf("client %s disconnected", clientID)
	}
}

// reject queues an ERROR for the writer goroutine. It never blocks the reader.
func (s *Server) reject(out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

// HighScoresHandler serves the persisted high-score table as JSON.
func (s *Server) HighScoresHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(rw, http.StatusOK, score.LoadHighScores(s.store))
	}
}

func HealthHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
