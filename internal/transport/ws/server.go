package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/match"
	"redplanet.games/internal/sim/playerr"
)

// Games resolves a game id to its running match.
type Games interface {
	Get(id string) (*match.Match, error)
}

type Config struct {
	ActionsPerSecond float64
	ActionsBurst     int
	Catalogs         protocol.CatalogDigests
}

type Server struct {
	games Games
	cfg   Config
	log   *log.Logger

	helloSchema *jsonschema.Schema
	actSchema   *jsonschema.Schema

	upgrader websocket.Upgrader
}

const (
	outQueue      = 32
	submitTimeout = 5 * time.Second
	readTimeout   = 120 * time.Second
)

func NewServer(games Games, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	hello, err := protocol.CompileSchema("hello.schema.json")
	if err != nil {
		return nil, err
	}
	act, err := protocol.CompileSchema("act.schema.json")
	if err != nil {
		return nil, err
	}
	if cfg.ActionsPerSecond <= 0 {
		cfg.ActionsPerSecond = 5
	}
	if cfg.ActionsBurst <= 0 {
		cfg.ActionsBurst = 10
	}
	return &Server{
		games:       games,
		cfg:         cfg,
		log:         logger,
		helloSchema: hello,
		actSchema:   act,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}, nil
}

type session struct {
	game   *match.Match
	player int
	out    chan []byte
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess, subID := s.handshake(ctx, conn)
		if sess == nil {
			return
		}
		defer sess.game.Unsubscribe(subID)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		limiter := rate.NewLimiter(rate.Limit(s.cfg.ActionsPerSecond), s.cfg.ActionsBurst)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeAct {
				continue
			}
			res := s.handleAct(ctx, sess, limiter, msg)
			b, err := json.Marshal(res)
			if err != nil {
				continue
			}
			select {
			case sess.out <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Server) handleAct(ctx context.Context, sess *session, limiter *rate.Limiter, msg []byte) protocol.ResultMsg {
	res := protocol.ResultMsg{Type: protocol.TypeResult, ProtocolVersion: protocol.Version}
	var act protocol.ActMsg
	_ = json.Unmarshal(msg, &act)
	res.ReqID = act.ReqID

	fail := func(err error) protocol.ResultMsg {
		res.Code = playerr.CodeOf(err)
		res.Message = err.Error()
		if pe, ok := playerr.As(err); ok {
			res.Message = pe.Message
		}
		s.log.Printf("game %s player %d: %s rejected: %s %s", sess.game.ID(), sess.player, act.Action.Kind, res.Code, res.Message)
		return res
	}

	if !limiter.Allow() {
		return fail(playerr.New(protocol.ErrRateLimit, "too many actions"))
	}
	if err := protocol.ValidateRaw(s.actSchema, msg); err != nil {
		return fail(playerr.New(protocol.ErrProtoBadRequest, err.Error()))
	}
	if act.ProtocolVersion != protocol.Version {
		return fail(playerr.Newf(protocol.ErrProtoBadRequest, "protocol_version %q, want %q", act.ProtocolVersion, protocol.Version))
	}
	a, err := engine.FromRequest(sess.player, act.Action)
	if err != nil {
		return fail(err)
	}
	sctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	c, err := sess.game.Submit(sctx, a)
	if err != nil {
		return fail(err)
	}
	res.OK = true
	res.Seq = c.Seq
	return res
}

// handshake reads HELLO, subscribes the player and writes WELCOME. The first
// STATE is already queued on the session when it returns.
func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (*session, string) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, ""
	}
	reject := func(reason string) (*session, string) {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
		return nil, ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		return reject("expected HELLO")
	}
	if err := protocol.ValidateRaw(s.helloSchema, msg); err != nil {
		return reject(protocol.ErrProtoBadRequest)
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return reject(protocol.ErrProtoBadRequest)
	}
	if hello.ProtocolVersion != protocol.Version {
		return reject("bad protocol_version")
	}
	g, err := s.games.Get(hello.GameID)
	if err != nil {
		return reject(playerr.CodeOf(err))
	}
	v, err := g.View(ctx, game.Spectator)
	if err != nil {
		return reject(playerr.CodeOf(err))
	}
	if hello.Player < 0 || hello.Player >= len(v.Players) {
		return reject(protocol.ErrBadRequest)
	}

	sess := &session{game: g, player: hello.Player, out: make(chan []byte, outQueue)}
	subID, err := g.Subscribe(ctx, hello.Player, sess.out)
	if err != nil {
		return reject(playerr.CodeOf(err))
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		GameID:          g.ID(),
		Player:          hello.Player,
		SessionID:       fmt.Sprintf("%s/%d/%s", g.ID(), hello.Player, subID),
		Catalogs:        s.cfg.Catalogs,
	}
	if err := writeJSON(conn, welcome); err != nil {
		g.Unsubscribe(subID)
		return nil, ""
	}
	s.log.Printf("game %s: player %d (%s) connected", g.ID(), hello.Player, hello.Name)
	return sess, subID
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
