package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/multigame"
	"redplanet.games/internal/sim/tuning"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, string) {
	t.Helper()
	cat, err := catalogs.Default()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tun := tuning.Defaults()
	reg, err := cards.New(cat, cards.Options{MaxOceans: tun.MaxOceans})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	mgr, err := multigame.NewManager(multigame.Config{DataDir: t.TempDir()}, engine.New(reg, tun), nil, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	g, err := mgr.Create(multigame.CreateRequest{Players: []engine.Seat{{Name: "a", Corporation: cards.Credicor}}, Seed: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	srv, err := NewServer(mgr, cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		_ = mgr.Close(context.Background())
	})
	return hs, g.ID()
}

func dial(t *testing.T, hs *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil returns the first message of type typ.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) []byte {
	t.Helper()
	for i := 0; i < 20; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %s: %v", typ, err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == typ {
			return msg
		}
	}
	t.Fatalf("no %s message", typ)
	return nil
}

func hello(gameID string, player int) protocol.HelloMsg {
	return protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, GameID: gameID, Player: player, Name: "tester"}
}

func act(reqID string, a protocol.ActionReq) protocol.ActMsg {
	return protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, ReqID: reqID, Action: a}
}

func TestHandshakeAndAct(t *testing.T) {
	hs, id := newTestServer(t, Config{})
	conn := dial(t, hs)
	send(t, conn, hello(id, 0))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(msg, &welcome); err != nil || welcome.Type != protocol.TypeWelcome || welcome.GameID != id {
		t.Fatalf("welcome: %s", msg)
	}
	readUntil(t, conn, protocol.TypeState)

	send(t, conn, act("r1", protocol.ActionReq{Kind: protocol.ActStandardProject, StandardProject: engine.PowerPlant}))
	var res protocol.ResultMsg
	if err := json.Unmarshal(readUntil(t, conn, protocol.TypeResult), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if !res.OK || res.ReqID != "r1" || res.Seq != 0 {
		t.Fatalf("result: %+v", res)
	}

	send(t, conn, act("r2", protocol.ActionReq{Kind: protocol.ActPlayProject, Project: 9999}))
	res = protocol.ResultMsg{}
	if err := json.Unmarshal(readUntil(t, conn, protocol.TypeResult), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.OK || res.ReqID != "r2" || res.Code != protocol.ErrIneligible {
		t.Fatalf("expected a rejection, got %+v", res)
	}
}

func TestActSchemaViolation(t *testing.T) {
	hs, id := newTestServer(t, Config{})
	conn := dial(t, hs)
	send(t, conn, hello(id, 0))
	readUntil(t, conn, protocol.TypeState)

	send(t, conn, map[string]any{"type": protocol.TypeAct, "protocol_version": protocol.Version, "req_id": "x", "action": map[string]any{"kind": "teleport"}})
	var res protocol.ResultMsg
	if err := json.Unmarshal(readUntil(t, conn, protocol.TypeResult), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.OK || res.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("result: %+v", res)
	}
}

func TestActRateLimited(t *testing.T) {
	hs, id := newTestServer(t, Config{ActionsPerSecond: 0.001, ActionsBurst: 1})
	conn := dial(t, hs)
	send(t, conn, hello(id, 0))
	readUntil(t, conn, protocol.TypeState)

	req := protocol.ActionReq{Kind: protocol.ActMilestone, Milestone: "nope"}
	send(t, conn, act("a", req))
	readUntil(t, conn, protocol.TypeResult)
	send(t, conn, act("b", req))
	var res protocol.ResultMsg
	if err := json.Unmarshal(readUntil(t, conn, protocol.TypeResult), &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.Code != protocol.ErrRateLimit {
		t.Fatalf("expected E_RATE_LIMIT, got %+v", res)
	}
}

func TestHelloUnknownGameCloses(t *testing.T) {
	hs, _ := newTestServer(t, Config{})
	conn := dial(t, hs)
	send(t, conn, hello("missing", 0))
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := conn.ReadMessage()
	ce, ok := err.(*websocket.CloseError)
	if !ok || ce.Code != websocket.ClosePolicyViolation || ce.Text != protocol.ErrGameNotFound {
		t.Fatalf("expected policy close with %s, got %v", protocol.ErrGameNotFound, err)
	}
}
