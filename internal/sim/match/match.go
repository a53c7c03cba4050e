// Package match runs one game. A single goroutine owns the document and
// commits decided actions one at a time; decisions are gathered by callers
// against a View, outside the loop.
package match

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// EventLogEntry is one committed event. The last entry of each commit also carries the action that produced it and
// the document digest after it, which is enough to replay a game from its
// first snapshot.
type EventLogEntry struct {
	GameID string     `json:"game_id"`
	Time   time.Time  `json:"time"`
	Event  game.Event `json:"event"`

	Actor  int                 `json:"actor,omitempty"`
	Action *protocol.ActionReq `json:"action,omitempty"`
	Digest string              `json:"digest,omitempty"`
}

// AuditEntry records a rejected action.
type AuditEntry struct {
	GameID  string    `json:"game_id"`
	Time    time.Time `json:"time"`
	Seq     int       `json:"seq"`
	Player  int       `json:"player"`
	Kind    string    `json:"kind"`
	Project int       `json:"project,omitempty"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

type ResultEntry struct {
	GameID     string               `json:"game_id"`
	Time       time.Time            `json:"time"`
	Generation int                  `json:"gen"`
	Scores     []engine.PlayerScore `json:"scores"`
}

type EventLogger interface {
	WriteEvent(entry EventLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type ResultRecorder interface {
	RecordResult(entry ResultEntry)
}

type Config struct {
	// SnapshotEveryActions emits a snapshot after that many commits; 0 only
	// snapshots finished games.
	SnapshotEveryActions int
}

// Committed is what Submit returns for an applied action.
type Committed struct {
	Seq      int        `json:"seq"`
	Event    game.Event `json:"event"`
	Finished bool       `json:"finished,omitempty"`
}

type Match struct {
	id     string
	cfg    Config
	eng    *engine.Engine
	logger *log.Logger

	// Owned by the Run goroutine.
	doc           *game.Document
	clients       map[string]*client
	nextClient    uint64
	sinceSnapshot int

	submit chan submitReq
	read   chan readReq
	attach chan attachReq
	detach chan string

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	seq      atomic.Int64
	finished atomic.Bool

	eventLogger  EventLogger
	auditLogger  AuditLogger
	results      ResultRecorder
	snapshotSink chan<- snapshot.SnapshotV1
	now          func() time.Time
}

type client struct {
	player int
	out    chan []byte
}

type submitReq struct {
	action engine.Action
	resp   chan submitResp
}

type submitResp struct {
	c   Committed
	err error
}

type readReq struct {
	fn   func(doc *game.Document)
	done chan struct{}
}

type attachReq struct {
	player int
	out    chan []byte
	resp   chan string
}

// New wraps doc, which the match takes ownership of.
func New(cfg Config, eng *engine.Engine, doc *game.Document, logger *log.Logger) *Match {
	if logger == nil {
		logger = log.Default()
	}
	m := &Match{
		id:      doc.ID,
		cfg:     cfg,
		eng:     eng,
		logger:  logger,
		doc:     doc,
		clients: map[string]*client{},
		submit:  make(chan submitReq, 64),
		read:    make(chan readReq, 64),
		attach:  make(chan attachReq, 16),
		detach:  make(chan string, 16),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	m.seq.Store(int64(doc.Seq()))
	m.finished.Store(doc.Phase == game.PhaseFinished)
	return m
}

func (m *Match) SetEventLogger(l EventLogger)                   { m.eventLogger = l }
func (m *Match) SetAuditLogger(l AuditLogger)                   { m.auditLogger = l }
func (m *Match) SetResultRecorder(r ResultRecorder)             { m.results = r }
func (m *Match) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { m.snapshotSink = ch }

func (m *Match) ID() string            { return m.id }
func (m *Match) Engine() *engine.Engine { return m.eng }
func (m *Match) Seq() int              { return int(m.seq.Load()) }
func (m *Match) Finished() bool        { return m.finished.Load() }

// Stop ends Run. It is safe to call more than once.
func (m *Match) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Done is closed once Run has returned.
func (m *Match) Done() <-chan struct{} { return m.done }

// Submit commits a decided action. If ctx ends after the action was handed to
// the loop the action may still commit.
func (m *Match) Submit(ctx context.Context, a engine.Action) (Committed, error) {
	resp := make(chan submitResp, 1)
	select {
	case m.submit <- submitReq{action: a, resp: resp}:
	case <-m.stop:
		return Committed{}, errStopped
	case <-ctx.Done():
		return Committed{}, ctx.Err()
	}
	select {
	case r := <-resp:
		return r.c, r.err
	case <-m.done:
		return Committed{}, errStopped
	case <-ctx.Done():
		return Committed{}, ctx.Err()
	}
}

var errStopped = playerr.New(protocol.ErrGameBusy, "game is not running")

// Read runs fn on the live document inside the loop. fn must not keep doc or
// anything it points to.
func (m *Match) Read(ctx context.Context, fn func(doc *game.Document)) error {
	done := make(chan struct{})
	select {
	case m.read <- readReq{fn: fn, done: done}:
	case <-m.stop:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-m.done:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns player's redacted copy of the document; game.Spectator sees
// no hands.
func (m *Match) View(ctx context.Context, player int) (*game.Document, error) {
	var v *game.Document
	err := m.Read(ctx, func(doc *game.Document) { v = doc.ViewFor(player) })
	return v, err
}

func (m *Match) Score(ctx context.Context) ([]engine.PlayerScore, error) {
	var out []engine.PlayerScore
	err := m.Read(ctx, func(doc *game.Document) { out = m.eng.Score(doc) })
	return out, err
}

func (m *Match) Events(ctx context.Context, since int) ([]game.Event, error) {
	var out []game.Event
	err := m.Read(ctx, func(doc *game.Document) { out = doc.EventsSince(since) })
	return out, err
}

// Snapshot exports the current document.
func (m *Match) Snapshot(ctx context.Context) (snapshot.SnapshotV1, error) {
	var snap snapshot.SnapshotV1
	err := m.Read(ctx, func(doc *game.Document) { snap = m.export(doc) })
	return snap, err
}

// Subscribe registers out for STATE and EVENT messages as player sees them.
// The current STATE is queued on out first. Slow readers miss messages rather
// than stall the game.
func (m *Match) Subscribe(ctx context.Context, player int, out chan []byte) (string, error) {
	resp := make(chan string, 1)
	select {
	case m.attach <- attachReq{player: player, out: out, resp: resp}:
	case <-m.stop:
		return "", errStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case id := <-resp:
		return id, nil
	case <-m.done:
		return "", errStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Match) Unsubscribe(id string) {
	select {
	case m.detach <- id:
	case <-m.done:
	}
}
