// Package multigame runs many matches side by side and owns their on-disk
// layout: <data>/games/<id>/{events,audit,snapshots}.
package multigame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	plog "redplanet.games/internal/persistence/log"
	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/match"
	"redplanet.games/internal/sim/playerr"
)

// Index is the optional shared read model every game reports to.
type Index interface {
	match.EventLogger
	match.AuditLogger
	match.ResultRecorder
	RecordGame(id string, seats []engine.Seat, seed int64)
	RecordSnapshot(path string, h snapshot.Header)
}

type Config struct {
	DataDir              string
	SnapshotEveryActions int
}

type Summary struct {
	ID       string `json:"id"`
	Seq      int    `json:"seq"`
	Finished bool   `json:"finished"`
}

// CreateRequest seats players for a new game. A zero Seed is replaced by a
// time-derived one.
type CreateRequest struct {
	Players []engine.Seat `json:"players"`
	Seed    int64         `json:"seed,omitempty"`
}

type runtime struct {
	match    *match.Match
	dir      string
	events   *plog.EventLogger
	audit    *plog.AuditLogger
	snapCh   chan snapshot.SnapshotV1
	snapDone chan struct{}
}

type Manager struct {
	cfg    Config
	eng    *engine.Engine
	idx    Index
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	games  map[string]*runtime
	closed bool

	newID func() string
}

func NewManager(cfg Config, eng *engine.Engine, idx Index, logger *log.Logger) (*Manager, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("empty data dir")
	}
	if eng == nil {
		return nil, fmt.Errorf("nil engine")
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:    cfg,
		eng:    eng,
		idx:    idx,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		games:  map[string]*runtime{},
		newID:  uuid.NewString,
	}, nil
}

func (m *Manager) gamesDir() string { return filepath.Join(m.cfg.DataDir, "games") }

// Create deals a new game and starts it.
func (m *Manager) Create(req CreateRequest) (*match.Match, error) {
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	id := m.newID()
	doc, err := m.eng.NewGame(engine.Setup{ID: id, Players: req.Players, Seed: seed})
	if err != nil {
		return nil, playerr.New(protocol.ErrBadRequest, err.Error())
	}
	dir := filepath.Join(m.gamesDir(), id)
	snap := snapshot.New(doc)
	path := filepath.Join(dir, "snapshots", snapshot.FileName(snap.Header.Seq))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, playerr.New(protocol.ErrGameBusy, "server is shutting down")
	}
	if m.idx != nil {
		m.idx.RecordGame(id, req.Players, seed)
		m.idx.RecordSnapshot(path, snap.Header)
	}
	rt := m.startLocked(match.New(match.Config{SnapshotEveryActions: m.cfg.SnapshotEveryActions}, m.eng, doc, m.logger), dir)
	m.logger.Printf("game %s created: %d players seed=%d", id, len(req.Players), seed)
	return rt.match, nil
}

// Resume restarts every game found under the data dir from its latest
// snapshot. Games already running are skipped.
func (m *Manager) Resume() (int, error) {
	entries, err := os.ReadDir(m.gamesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cat := m.eng.Registry().Catalogs()
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id := e.Name()
		dir := filepath.Join(m.gamesDir(), id)
		path, err := snapshot.Latest(filepath.Join(dir, "snapshots"))
		if err != nil {
			return n, err
		}
		if path == "" {
			continue
		}
		snap, err := snapshot.ReadSnapshot(path)
		if err != nil {
			m.logger.Printf("game %s: skip unreadable snapshot %s: %v", id, path, err)
			continue
		}
		if cat != nil && snap.ProjectsDigest != "" && snap.ProjectsDigest != cat.Projects.Digest {
			m.logger.Printf("game %s: catalogue changed since snapshot seq %d", id, snap.Header.Seq)
		}
		doc := snap.Document

		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return n, nil
		}
		if _, ok := m.games[id]; !ok {
			m.startLocked(match.New(match.Config{SnapshotEveryActions: m.cfg.SnapshotEveryActions}, m.eng, &doc, m.logger), dir)
			n++
		}
		m.mu.Unlock()
	}
	return n, nil
}

func (m *Manager) startLocked(mt *match.Match, dir string) *runtime {
	rt := &runtime{
		match:    mt,
		dir:      dir,
		events:   plog.NewEventLogger(dir),
		audit:    plog.NewAuditLogger(dir),
		snapCh:   make(chan snapshot.SnapshotV1, 4),
		snapDone: make(chan struct{}),
	}
	events := eventFanout{rt.events}
	audits := auditFanout{rt.audit}
	results := resultFanout{resultFile(dir)}
	if m.idx != nil {
		events = append(events, m.idx)
		audits = append(audits, m.idx)
		results = append(results, m.idx)
	}
	mt.SetEventLogger(events)
	mt.SetAuditLogger(audits)
	mt.SetResultRecorder(results)
	mt.SetSnapshotSink(rt.snapCh)

	go m.writeSnapshots(rt)
	go func() {
		if err := mt.Run(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Printf("game %s: run: %v", mt.ID(), err)
		}
	}()
	m.games[mt.ID()] = rt
	return rt
}

func (m *Manager) writeSnapshots(rt *runtime) {
	defer close(rt.snapDone)
	for snap := range rt.snapCh {
		m.writeSnapshot(rt, snap)
	}
}

func (m *Manager) writeSnapshot(rt *runtime, snap snapshot.SnapshotV1) {
	path := filepath.Join(rt.dir, "snapshots", snapshot.FileName(snap.Header.Seq))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		m.logger.Printf("game %s: snapshot seq %d: %v", snap.Header.GameID, snap.Header.Seq, err)
		return
	}
	if m.idx != nil {
		m.idx.RecordSnapshot(path, snap.Header)
	}
}

func (m *Manager) Get(id string) (*match.Match, error) {
	m.mu.RLock()
	rt := m.games[id]
	m.mu.RUnlock()
	if rt == nil {
		return nil, playerr.Newf(protocol.ErrGameNotFound, "no game %q", id)
	}
	return rt.match, nil
}

func (m *Manager) List() []Summary {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.games))
	for id, rt := range m.games {
		out = append(out, Summary{ID: id, Seq: rt.match.Seq(), Finished: rt.match.Finished()})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close snapshots every running game, stops it and closes its logs.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	rts := make([]*runtime, 0, len(m.games))
	for _, rt := range m.games {
		rts = append(rts, rt)
	}
	m.mu.Unlock()

	var errs []error
	for _, rt := range rts {
		if snap, err := rt.match.Snapshot(ctx); err == nil {
			m.writeSnapshot(rt, snap)
		} else {
			errs = append(errs, fmt.Errorf("game %s: final snapshot: %w", rt.match.ID(), err))
		}
		rt.match.Stop()
	}
	m.cancel()
	for _, rt := range rts {
		select {
		case <-rt.match.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		close(rt.snapCh)
		<-rt.snapDone
		if err := rt.events.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := rt.audit.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type eventFanout []match.EventLogger

func (f eventFanout) WriteEvent(e match.EventLogEntry) error {
	var errs []error
	for _, l := range f {
		if err := l.WriteEvent(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type auditFanout []match.AuditLogger

func (f auditFanout) WriteAudit(e match.AuditEntry) error {
	var errs []error
	for _, l := range f {
		if err := l.WriteAudit(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type resultFanout []match.ResultRecorder

func (f resultFanout) RecordResult(e match.ResultEntry) {
	for _, r := range f {
		r.RecordResult(e)
	}
}

// resultFile keeps the final score next to the game's logs so it survives
// without the index.
type resultFile string

func (dir resultFile) RecordResult(e match.ResultEntry) {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(string(dir), "result.json"), b, 0o644)
}

// ReadResult loads the result a finished game left in its directory.
func (m *Manager) ReadResult(id string) (match.ResultEntry, error) {
	var e match.ResultEntry
	b, err := os.ReadFile(filepath.Join(m.gamesDir(), id, "result.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return e, playerr.Newf(protocol.ErrGameNotFound, "no result for game %q", id)
		}
		return e, err
	}
	err = json.Unmarshal(b, &e)
	return e, err
}
