package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"redplanet.games/internal/bot"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/tuning"
)

func main() {
	var (
		url        = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		gameID     = flag.String("game", "", "game id")
		player     = flag.Int("player", 0, "seat index")
		name       = flag.String("name", "bot", "player name")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "decision seed")
		delay      = flag.Duration("delay", 200*time.Millisecond, "pause before each action")
		configDir  = flag.String("configs", "", "catalogue directory (default: built in)")
		tuningPath = flag.String("tuning", "", "tuning.yaml (default: built in)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	if *gameID == "" {
		logger.Fatalf("-game is required")
	}

	eng, err := loadEngine(*configDir, *tuningPath)
	if err != nil {
		logger.Fatalf("rules: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		GameID:          *gameID,
		Player:          *player,
		Name:            *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	strat := bot.New(*player, *seed)
	var (
		last    *game.Document
		pending string
		nextReq int
		fails   int
	)
	act := func() {
		if pending != "" || last == nil || last.Phase == game.PhaseFinished {
			return
		}
		if len(eng.Options(last, *player)) == 0 {
			return
		}
		time.Sleep(*delay)
		a, err := strat.Turn(ctx, eng, last)
		if err != nil {
			logger.Printf("no move: %v", err)
			return
		}
		if fails >= 5 {
			a = engine.Action{Intent: engine.Intent{Kind: engine.KindPass, Player: *player}}
		}
		req, err := a.Request()
		if err != nil {
			logger.Printf("encode action: %v", err)
			return
		}
		nextReq++
		pending = fmt.Sprintf("%s-%d", *name, nextReq)
		msg := protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, ReqID: pending, Action: req}
		if err := conn.WriteJSON(msg); err != nil {
			logger.Printf("send ACT: %v", err)
			cancel()
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			_ = json.Unmarshal(msg, &w)
			logger.Printf("joined game %s as player %d (session %s)", w.GameID, w.Player, w.SessionID)
		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			var doc game.Document
			if err := json.Unmarshal(st.State, &doc); err != nil {
				logger.Printf("decode state: %v", err)
				continue
			}
			last = &doc
			if doc.Phase == game.PhaseFinished {
				for _, s := range eng.Score(&doc) {
					logger.Printf("final: player %d total %d (tr %d cards %d)", s.Player, s.Total, s.TR, s.Cards)
				}
				return
			}
			act()
		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil || res.ReqID != pending {
				continue
			}
			pending = ""
			if res.OK {
				fails = 0
			} else {
				fails++
				logger.Printf("%s rejected: %s %s", res.ReqID, res.Code, res.Message)
			}
			act()
		}
	}
}

func loadEngine(configDir, tuningPath string) (*engine.Engine, error) {
	var (
		cat *catalogs.Catalogs
		err error
	)
	if configDir != "" {
		cat, err = catalogs.LoadDir(configDir)
	} else {
		cat, err = catalogs.Default()
	}
	if err != nil {
		return nil, err
	}
	tun := tuning.Defaults()
	if tuningPath != "" {
		if tun, err = tuning.Load(tuningPath); err != nil {
			return nil, err
		}
	}
	reg, err := cards.New(cat, cards.Options{MaxOceans: tun.MaxOceans})
	if err != nil {
		return nil, err
	}
	return engine.New(reg, tun), nil
}
