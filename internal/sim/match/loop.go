package match

import (
	"context"
	"encoding/json"
	"fmt"

	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

func (m *Match) Run(ctx context.Context) error {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil
		case req := <-m.attach:
			m.handleAttach(req)
		case id := <-m.detach:
			delete(m.clients, id)
		case req := <-m.read:
			req.fn(m.doc)
			close(req.done)
		case req := <-m.submit:
			c, err := m.commit(req.action)
			req.resp <- submitResp{c: c, err: err}
		}
	}
}

func (m *Match) handleAttach(req attachReq) {
	m.nextClient++
	id := fmt.Sprintf("C%d", m.nextClient)
	m.clients[id] = &client{player: req.player, out: req.out}
	m.sendState(m.clients[id])
	req.resp <- id
}

func (m *Match) commit(a engine.Action) (Committed, error) {
	before := m.doc.Seq()
	next, ev, err := m.eng.Apply(m.doc, a)
	if err != nil {
		m.audit(a, err)
		return Committed{}, err
	}
	m.doc = next
	m.seq.Store(int64(next.Seq()))

	events := next.EventsSince(before)
	now := m.now().UTC()
	if m.eventLogger != nil {
		for i, e := range events {
			entry := EventLogEntry{GameID: m.id, Time: now, Event: e}
			if i == len(events)-1 {
				entry.Actor = a.Player
				entry.Digest = next.Digest()
				if req, err := a.Request(); err == nil {
					entry.Action = &req
				} else {
					m.logger.Printf("game %s: encode action for log: %v", m.id, err)
				}
			}
			if err := m.eventLogger.WriteEvent(entry); err != nil {
				m.logger.Printf("game %s: event log: %v", m.id, err)
			}
		}
	}
	m.broadcast(events)

	finished := next.Phase == game.PhaseFinished
	m.sinceSnapshot++
	if finished {
		m.finished.Store(true)
		if m.results != nil {
			m.results.RecordResult(ResultEntry{GameID: m.id, Time: now, Generation: next.Generation, Scores: m.eng.Score(next)})
		}
	}
	if finished || (m.cfg.SnapshotEveryActions > 0 && m.sinceSnapshot >= m.cfg.SnapshotEveryActions) {
		m.emitSnapshot()
	}
	return Committed{Seq: ev.Seq, Event: ev, Finished: finished}, nil
}

func (m *Match) audit(a engine.Action, err error) {
	if m.auditLogger == nil {
		return
	}
	e := AuditEntry{
		GameID:  m.id,
		Time:    m.now().UTC(),
		Seq:     m.doc.Seq(),
		Player:  a.Player,
		Kind:    string(a.Kind),
		Project: a.Project,
		Code:    playerr.CodeOf(err),
		Message: err.Error(),
	}
	if pe, ok := playerr.As(err); ok {
		e.Message = pe.Message
	}
	if werr := m.auditLogger.WriteAudit(e); werr != nil {
		m.logger.Printf("game %s: audit log: %v", m.id, werr)
	}
}

func (m *Match) export(doc *game.Document) snapshot.SnapshotV1 {
	snap := snapshot.New(doc)
	if cat := m.eng.Registry().Catalogs(); cat != nil {
		snap.ProjectsDigest = cat.Projects.Digest
		snap.CorpsDigest = cat.Corps.Digest
	}
	return snap
}

func (m *Match) emitSnapshot() {
	if m.snapshotSink == nil {
		return
	}
	select {
	case m.snapshotSink <- m.export(m.doc):
		m.sinceSnapshot = 0
	default:
		m.logger.Printf("game %s: snapshot sink full, skipping seq %d", m.id, m.doc.Seq())
	}
}

func (m *Match) broadcast(events []game.Event) {
	if len(m.clients) == 0 {
		return
	}
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			m.logger.Printf("game %s: encode event: %v", m.id, err)
			continue
		}
		b, err := json.Marshal(protocol.EventMsg{
			Type:            protocol.TypeEvent,
			ProtocolVersion: protocol.Version,
			GameID:          m.id,
			Seq:             ev.Seq,
			Event:           raw,
		})
		if err != nil {
			continue
		}
		for _, c := range m.clients {
			send(c, b)
		}
	}
	for _, c := range m.clients {
		m.sendState(c)
	}
}

func (m *Match) sendState(c *client) {
	raw, err := json.Marshal(m.doc.ViewFor(c.player))
	if err != nil {
		m.logger.Printf("game %s: encode state: %v", m.id, err)
		return
	}
	b, err := json.Marshal(protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		GameID:          m.id,
		Seq:             m.doc.Seq(),
		State:           raw,
	})
	if err != nil {
		return
	}
	send(c, b)
}

func send(c *client, b []byte) {
	select {
	case c.out <- b:
	default:
	}
}
