package match

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
	"redplanet.games/internal/sim/tuning"
)

type memLogs struct {
	mu      sync.Mutex
	events  []EventLogEntry
	audits  []AuditEntry
	results []ResultEntry
}

func (l *memLogs) WriteEvent(e EventLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *memLogs) WriteAudit(e AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.audits = append(l.audits, e)
	return nil
}

func (l *memLogs) RecordResult(e ResultEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, e)
}

func newTestEngine(t *testing.T) *engine.Engine {
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
	return engine.New(reg, tun)
}

func startMatch(t *testing.T, cfg Config, doc *game.Document, e *engine.Engine) (*Match, *memLogs) {
	t.Helper()
	m := New(cfg, e, doc, nil)
	logs := &memLogs{}
	m.SetEventLogger(logs)
	m.SetAuditLogger(logs)
	m.SetResultRecorder(logs)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-m.Done()
	})
	return m, logs
}

func powerPlant(player int) engine.Action {
	return engine.Action{Intent: engine.Intent{Kind: engine.KindStandardProject, Player: player, StandardProject: engine.PowerPlant}}
}

func newDoc(t *testing.T, e *engine.Engine) *game.Document {
	t.Helper()
	doc, err := e.NewGame(engine.Setup{ID: "g1", Players: []engine.Seat{{Name: "a", Corporation: cards.Credicor}}, Seed: 1})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return doc
}

func recv(t *testing.T, ch chan []byte) protocol.BaseMessage {
	t.Helper()
	select {
	case b := <-ch:
		base, err := protocol.DecodeBase(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return base
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a message")
	}
	return protocol.BaseMessage{}
}

func TestSubmitCommitsAndBroadcasts(t *testing.T) {
	e := newTestEngine(t)
	m, logs := startMatch(t, Config{}, newDoc(t, e), e)
	ctx := context.Background()

	out := make(chan []byte, 16)
	id, err := m.Subscribe(ctx, 0, out)
	if err != nil || id == "" {
		t.Fatalf("subscribe: %q %v", id, err)
	}
	if got := recv(t, out); got.Type != protocol.TypeState {
		t.Fatalf("first message: %s", got.Type)
	}

	c, err := m.Submit(ctx, powerPlant(0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Seq != 0 || c.Event.Kind != game.EventStandardProject || m.Seq() != 1 {
		t.Fatalf("committed: %+v seq=%d", c, m.Seq())
	}
	if got := recv(t, out); got.Type != protocol.TypeEvent {
		t.Fatalf("want EVENT, got %s", got.Type)
	}
	if got := recv(t, out); got.Type != protocol.TypeState {
		t.Fatalf("want STATE, got %s", got.Type)
	}

	v, err := m.View(ctx, 0)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	want := 57 - e.Tuning().StandardProjects.PowerPlant
	if got := v.Players[0].Resources.Count(economy.Credits); got != want {
		t.Fatalf("credits: got %d want %d", got, want)
	}
	if len(logs.events) != 1 || logs.events[0].GameID != "g1" {
		t.Fatalf("event log: %+v", logs.events)
	}
	last := logs.events[0]
	if last.Action == nil || last.Action.Kind != protocol.ActStandardProject || last.Digest == "" {
		t.Fatalf("commit entry lacks replay data: %+v", last)
	}
	if err := m.Read(ctx, func(doc *game.Document) {
		if doc.Digest() != last.Digest {
			t.Errorf("logged digest does not match the document")
		}
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestRejectedActionIsAudited(t *testing.T) {
	e := newTestEngine(t)
	m, logs := startMatch(t, Config{}, newDoc(t, e), e)
	ctx := context.Background()

	_, err := m.Submit(ctx, engine.Action{Intent: engine.Intent{Kind: engine.KindPlayProject, Player: 0, Project: 9999}})
	if playerr.CodeOf(err) != protocol.ErrIneligible {
		t.Fatalf("expected E_INELIGIBLE, got %v", err)
	}
	if m.Seq() != 0 {
		t.Fatalf("rejected action moved seq to %d", m.Seq())
	}
	logs.mu.Lock()
	defer logs.mu.Unlock()
	if len(logs.audits) != 1 || logs.audits[0].Code != protocol.ErrIneligible || logs.audits[0].Kind != string(engine.KindPlayProject) {
		t.Fatalf("audit: %+v", logs.audits)
	}
}

func TestSnapshotCadence(t *testing.T) {
	e := newTestEngine(t)
	m := New(Config{SnapshotEveryActions: 2}, e, newDoc(t, e), nil)
	sink := make(chan snapshot.SnapshotV1, 4)
	m.SetSnapshotSink(sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	for i := 0; i < 3; i++ {
		if _, err := m.Submit(ctx, powerPlant(0)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if len(sink) != 1 {
		t.Fatalf("snapshots: %d", len(sink))
	}
	snap := <-sink
	if snap.Header.Seq != 2 || snap.Header.GameID != "g1" || snap.ProjectsDigest == "" {
		t.Fatalf("snapshot header: %+v", snap.Header)
	}
}

func TestFinishRecordsResult(t *testing.T) {
	e := newTestEngine(t)
	doc := newDoc(t, e)
	doc.Temperature = e.Tuning().TemperatureMax
	doc.Oxygen = e.Tuning().OxygenMax
	for i, pos := range board.Legal(board.StandardOcean(&doc.Field)) {
		if i == e.Tuning().MaxOceans {
			break
		}
		if err := doc.Field.Place(pos, board.Ocean()); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	m, logs := startMatch(t, Config{}, doc, e)
	ctx := context.Background()

	c, err := m.Submit(ctx, engine.Action{Intent: engine.Intent{Kind: engine.KindPass, Player: 0}})
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if !c.Finished || !m.Finished() {
		t.Fatalf("game should be finished")
	}
	logs.mu.Lock()
	if len(logs.results) != 1 || len(logs.results[0].Scores) != 1 {
		t.Fatalf("results: %+v", logs.results)
	}
	logs.mu.Unlock()

	_, err = m.Submit(ctx, powerPlant(0))
	if playerr.CodeOf(err) != protocol.ErrGameFinished {
		t.Fatalf("expected E_GAME_FINISHED, got %v", err)
	}

	evs, err := m.Events(ctx, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 2 || evs[1].Kind != game.EventGeneration {
		t.Fatalf("events: %+v", evs)
	}
}

func TestViewHidesOtherHands(t *testing.T) {
	e := newTestEngine(t)
	doc, err := e.NewGame(engine.Setup{ID: "g2", Players: []engine.Seat{{Corporation: cards.Credicor}, {Corporation: cards.MiningGuild}}, Seed: 2})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	m, _ := startMatch(t, Config{}, doc, e)

	v, err := m.View(context.Background(), 1)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(v.Players[0].Hand) != 0 || v.Players[0].HandSize == 0 || len(v.Players[1].Hand) == 0 || v.Deck != nil {
		t.Fatalf("view leaks: %+v", v.Players)
	}
	b, err := json.Marshal(v)
	if err != nil || len(b) == 0 {
		t.Fatalf("marshal view: %v", err)
	}
}

func TestStopEndsRun(t *testing.T) {
	e := newTestEngine(t)
	m := New(Config{}, e, newDoc(t, e), nil)
	go m.Run(context.Background())
	m.Stop()
	m.Stop()
	<-m.Done()
	if _, err := m.Submit(context.Background(), powerPlant(0)); playerr.CodeOf(err) != protocol.ErrGameBusy {
		t.Fatalf("expected E_GAME_BUSY after stop, got %v", err)
	}
}
