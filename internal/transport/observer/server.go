// Package observer serves the spectator HTTP API: game listing and creation,
// the public game state, the event feed, live scores and final results.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"redplanet.games/internal/persistence/indexdb"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/match"
	"redplanet.games/internal/sim/multigame"
	"redplanet.games/internal/sim/playerr"
)

type Games interface {
	Get(id string) (*match.Match, error)
	List() []multigame.Summary
	Create(req multigame.CreateRequest) (*match.Match, error)
	ReadResult(id string) (match.ResultEntry, error)
}

type Server struct {
	games Games
	idx   *indexdb.SQLiteIndex
	log   *log.Logger

	upgrader websocket.Upgrader
}

const readTimeout = 3 * time.Second

// NewServer builds the API. idx may be nil; results then come from the game
// directories.
func NewServer(games Games, idx *indexdb.SQLiteIndex, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		games: games,
		idx:   idx,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/games", s.handleList)
	mux.HandleFunc("POST /v1/games", s.handleCreate)
	mux.HandleFunc("GET /v1/games/{id}/state", s.handleState)
	mux.HandleFunc("GET /v1/games/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /v1/games/{id}/score", s.handleScore)
	mux.HandleFunc("GET /v1/games/{id}/results", s.handleResults)
	mux.HandleFunc("GET /v1/games/{id}/rejections", s.handleRejections)
	mux.HandleFunc("GET /v1/games/{id}/ws", s.handleWatch)
}

func (s *Server) handleList(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]any{"games": s.games.List()})
}

func (s *Server) handleCreate(rw http.ResponseWriter, r *http.Request) {
	var req multigame.CreateRequest
	dec := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 64*1024))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(rw, playerr.Newf(protocol.ErrProtoBadRequest, "bad body: %v", err))
		return
	}
	g, err := s.games.Create(req)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusCreated, multigame.Summary{ID: g.ID(), Seq: g.Seq()})
}

func (s *Server) game(rw http.ResponseWriter, r *http.Request) (*match.Match, context.Context, context.CancelFunc, bool) {
	g, err := s.games.Get(r.PathValue("id"))
	if err != nil {
		writeError(rw, err)
		return nil, nil, nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	return g, ctx, cancel, true
}

func (s *Server) handleState(rw http.ResponseWriter, r *http.Request) {
	g, ctx, cancel, ok := s.game(rw, r)
	if !ok {
		return
	}
	defer cancel()
	v, err := g.View(ctx, game.Spectator)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, v)
}

func (s *Server) handleEvents(rw http.ResponseWriter, r *http.Request) {
	since := 0
	if q := r.URL.Query().Get("since"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(rw, playerr.Newf(protocol.ErrBadRequest, "bad since %q", q))
			return
		}
		since = n
	}
	g, ctx, cancel, ok := s.game(rw, r)
	if !ok {
		return
	}
	defer cancel()
	evs, err := g.Events(ctx, since)
	if err != nil {
		writeError(rw, err)
		return
	}
	if evs == nil {
		evs = []game.Event{}
	}
	writeJSON(rw, http.StatusOK, map[string]any{"game_id": g.ID(), "since": since, "events": evs})
}

func (s *Server) handleScore(rw http.ResponseWriter, r *http.Request) {
	g, ctx, cancel, ok := s.game(rw, r)
	if !ok {
		return
	}
	defer cancel()
	scores, err := g.Score(ctx)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"game_id": g.ID(), "finished": g.Finished(), "scores": scores})
}

func (s *Server) handleResults(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.idx != nil {
		rows, err := s.idx.GameResults(r.Context(), id)
		if err == nil && len(rows) > 0 {
			writeJSON(rw, http.StatusOK, map[string]any{"game_id": id, "results": rows})
			return
		}
		if err != nil {
			s.log.Printf("results %s: index: %v", id, err)
		}
	}
	res, err := s.games.ReadResult(id)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"game_id": id, "results": res.Scores})
}

func (s *Server) handleRejections(rw http.ResponseWriter, r *http.Request) {
	if s.idx == nil {
		writeError(rw, playerr.New(protocol.ErrGameBusy, "index disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.idx.Rejections(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"rejections": rows})
}

// handleWatch streams the spectator view of a game: a STATE on connect, then
// EVENT and STATE after every commit.
func (s *Server) handleWatch(rw http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(r.PathValue("id"))
	if err != nil {
		writeError(rw, err)
		return
	}
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan []byte, 32)
	subID, err := g.Subscribe(ctx, game.Spectator, out)
	if err != nil {
		return
	}
	defer g.Unsubscribe(subID)

	// Reader: only to notice the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.Done():
			return
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, err error) {
	code := playerr.CodeOf(err)
	msg := err.Error()
	if pe, ok := playerr.As(err); ok {
		msg = pe.Message
	}
	status := http.StatusInternalServerError
	switch code {
	case protocol.ErrGameNotFound:
		status = http.StatusNotFound
	case protocol.ErrProtoBadRequest, protocol.ErrBadRequest:
		status = http.StatusBadRequest
	case protocol.ErrGameBusy:
		status = http.StatusServiceUnavailable
	}
	writeJSON(rw, status, map[string]string{"code": code, "message": msg})
}
