package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"munaypaq.game/internal/protocol"
)

func main() {
	var (
		url       = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name      = flag.String("name", "bot", "player name")
		cell      = flag.Float64("cell", 1, "city cell size")
		saveAfter = flag.Uint64("save_after", 0, "save and exit after this many ticks (0 plays until game over)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send := func(in protocol.InputMsg) {
		in.Type = protocol.TypeInput
		in.ProtocolVersion = protocol.Version
		if err := conn.WriteJSON(in); err != nil {
			logger.Printf("send INPUT: %v", err)
		}
	}
	send(protocol.InputMsg{SetName: *name})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var first uint64
	saved := false
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err == nil {
				logger.Printf("ERROR %s: %s", e.Code, e.Message)
			}

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			if first == 0 {
				first = st.Tick
				logger.Printf("session %s tick=%d npcs=%d trash=%d", st.SessionID, st.Tick, len(st.NPCs), st.City.TrashCount)
			}
			if st.GameOver || !st.Running {
				logger.Printf("session over at tick %d: score=%d dirt=%.0f%%", st.Tick, st.Score.Score, st.City.Percentage)
				return
			}
			if *saveAfter > 0 && !saved && st.Tick-first >= *saveAfter {
				send(protocol.InputMsg{Save: &protocol.SaveReq{PlayerName: *name}})
				saved = true
				continue
			}
			for _, in := range decide(st, *cell) {
				send(in)
			}
		}
	}
}
