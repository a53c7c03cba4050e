package engine

import (
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

type applyFn func(e *Engine, m *mutator, a Action) error

var applyDispatch = map[Kind]applyFn{
	KindPlayProject:     (*Engine).applyPlayProject,
	KindProjectAction:   (*Engine).applyProjectAction,
	KindStandardProject: (*Engine).applyStandardProject,
	KindCorpAction:      (*Engine).applyCorpAction,
	KindMilestone:       (*Engine).applyMilestone,
	KindAward:           (*Engine).applyAward,
	KindPass:            (*Engine).applyPass,
}

// Apply resolves a fully decided action against doc. The action runs on a
// clone; on success the clone is returned with the action's event appended,
// on any error it is discarded and doc is left exactly as it was.
func (e *Engine) Apply(doc *game.Document, a Action) (*game.Document, game.Event, error) {
	if doc == nil {
		return nil, game.Event{}, playerr.New(protocol.ErrInternal, "no document")
	}
	if doc.Phase == game.PhaseFinished {
		return nil, game.Event{}, playerr.New(protocol.ErrGameFinished, "the game is over")
	}
	h, ok := applyDispatch[a.Kind]
	if !ok {
		return nil, game.Event{}, playerr.Newf(protocol.ErrBadRequest, "unknown action kind %q", a.Kind)
	}
	if !e.Eligible(doc, a.Intent) {
		return nil, game.Event{}, playerr.New(protocol.ErrIneligible, "action is not available")
	}

	work := doc.Clone()
	m := e.newMutator(work, a.Player)
	if err := h(e, m, a); err != nil {
		return nil, game.Event{}, err
	}
	tiles := m.placed()
	m.dispatch()

	ev := work.Append(game.Event{
		Kind:            game.EventKind(a.Kind),
		Player:          a.Player,
		Project:         a.Project,
		StandardProject: a.StandardProject,
		Milestone:       a.Milestone,
		Award:           a.Award,
		Tiles:           tiles,
	})
	if a.Kind == KindPass && allPassed(work) {
		e.ProductionPhase(work)
	}
	return work, ev, nil
}

func allPassed(doc *game.Document) bool {
	for _, p := range doc.Players {
		if !p.Pass {
			return false
		}
	}
	return true
}

func (e *Engine) applyPlayProject(m *mutator, a Action) error {
	doc := m.doc
	p := doc.Player(a.Player)
	proj := e.reg.Project(a.Project)

	price := e.reg.EffectiveCost(doc, a.Player, a.Project)
	if err := m.Pay(price, a.Fee, e.reg.PaymentRates(doc, a.Player, proj.Def)); err != nil {
		return err
	}
	p.RemoveFromHand(a.Project)
	p.Played = append(p.Played, a.Project)
	p.SpecialProject = false

	if proj.Def.Type != catalogs.TypeEvent {
		res := economy.CardResources{}
		for r, n := range proj.Def.InitialResources {
			res[r] = n
		}
		p.Board = append(p.Board, game.BoardCard{Project: a.Project, Res: res, Gen: doc.Generation})
		if p.Labels == nil {
			p.Labels = map[catalogs.Label]int{}
		}
		for _, l := range proj.Def.Labels {
			p.Labels[l]++
		}
	}
	if proj.PlayServer != nil {
		if err := proj.PlayServer(m, a.Decision); err != nil {
			return err
		}
	}
	m.plays = append(m.plays, cards.PlayEvent{Player: a.Player, Project: a.Project})
	return nil
}

func (e *Engine) applyProjectAction(m *mutator, a Action) error {
	proj := e.reg.Project(a.Project)
	m.doc.Player(a.Player).Card(a.Project).UsedGen = m.doc.Generation
	return proj.DoActionServer(m, a.Decision)
}

func (e *Engine) applyCorpAction(m *mutator, a Action) error {
	p := m.doc.Player(a.Player)
	act := e.reg.Corp(p.Corporation).Action
	if act.FirstAction {
		p.FirstAction = false
	} else {
		p.CorpActionGen = m.doc.Generation
	}
	if act.Server == nil {
		return nil
	}
	return act.Server(m, a.Decision)
}

func (e *Engine) applyMilestone(m *mutator, a Action) error {
	if err := m.Spend(a.Player, economy.Credits, e.tun.Milestones.Price); err != nil {
		return err
	}
	if m.doc.Milestones == nil {
		m.doc.Milestones = map[game.Milestone]int{}
	}
	m.doc.Milestones[a.Milestone] = a.Player
	return nil
}

func (e *Engine) applyAward(m *mutator, a Action) error {
	price, ok := e.awardPrice(m.doc)
	if !ok {
		return playerr.CardPlay("no awards left to fund")
	}
	if err := m.Spend(a.Player, economy.Credits, price); err != nil {
		return err
	}
	m.doc.Awards = append(m.doc.Awards, game.AwardFunding{Award: a.Award, Player: a.Player})
	return nil
}

func (e *Engine) applyPass(m *mutator, a Action) error {
	m.doc.Player(a.Player).Pass = true
	return nil
}

// placeChecked places t at pos after re-checking legal against the live field.
func (m *mutator) placeChecked(pos *int, legal board.Predicate, t board.Tile) error {
	if pos == nil {
		return playerr.CardPlay("%s position is required", t.Kind)
	}
	if !legal(*pos) {
		return playerr.CardPlay("bad %s position %d", t.Kind, *pos)
	}
	return m.PlaceTile(*pos, t)
}
