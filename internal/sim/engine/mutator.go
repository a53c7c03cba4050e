package engine

import (
	"math/rand"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// mutator is the cards.Mutator bound to one acting player and one working
// copy of the document. Tile and play events are queued and dispatched to
// reactors once the acting hook has finished.
type mutator struct {
	e   *Engine
	doc *game.Document
	me  int

	tiles []cards.TileEvent
	plays []cards.PlayEvent
}

var _ cards.Mutator = (*mutator)(nil)

func (e *Engine) newMutator(doc *game.Document, me int) *mutator {
	return &mutator{e: e, doc: doc, me: me}
}

func (m *mutator) View() cards.View { return m.e.view(m.doc, m.me) }
func (m *mutator) Me() int          { return m.me }

func (m *mutator) stock(player int) *economy.Stock {
	if p := m.doc.Player(player); p != nil {
		return &p.Resources
	}
	return nil
}

func (m *mutator) PlaceTile(pos int, t board.Tile) error {
	if t.Kind == board.TileOcean && m.doc.Field.Oceans() >= m.e.reg.MaxOceans() {
		return playerr.CardPlay("all oceans are placed")
	}
	if err := m.doc.Field.Place(pos, t); err != nil {
		return playerr.CardPlay("%v", err)
	}
	s := m.stock(m.me)
	for _, r := range board.Cell(pos).Rewards {
		switch r.Kind {
		case board.RewardSteel:
			s.Gain(economy.Steel, r.Amount)
		case board.RewardTitanium:
			s.Gain(economy.Titanium, r.Amount)
		case board.RewardPlants:
			s.Gain(economy.Plants, r.Amount)
		case board.RewardProject:
			m.DrawToHand(r.Amount)
		}
	}
	s.Gain(economy.Credits, m.e.tun.OceanAdjacencyGain*m.doc.Field.AdjacentKind(pos, board.TileOcean))
	switch t.Kind {
	case board.TileOcean:
		m.GainTR(1)
	case board.TileGreenery:
		m.IncreaseGlobal(catalogs.ParamOxygen, 1)
	}
	m.tiles = append(m.tiles, cards.TileEvent{Player: m.me, Pos: pos, Tile: t})
	return nil
}

func (m *mutator) IncreaseGlobal(p catalogs.Param, steps int) int {
	applied := 0
	for i := 0; i < steps; i++ {
		switch p {
		case catalogs.ParamTemperature:
			if m.doc.Temperature+m.e.tun.TemperatureStep > m.e.tun.TemperatureMax {
				return applied
			}
			m.doc.Temperature += m.e.tun.TemperatureStep
		case catalogs.ParamOxygen:
			if m.doc.Oxygen+1 > m.e.tun.OxygenMax {
				return applied
			}
			m.doc.Oxygen++
		default:
			return applied
		}
		applied++
		m.GainTR(1)
	}
	return applied
}

func (m *mutator) GainTR(n int) {
	if p := m.doc.Player(m.me); p != nil && n > 0 {
		p.TR += n
		p.TRGain += n
	}
}

func (m *mutator) ValidateFee(price int, fee economy.Fee, rates economy.Rates) error {
	if err := economy.ValidateFee(*m.stock(m.me), price, fee, rates); err != nil {
		return playerr.CardPlay("%v", err)
	}
	return nil
}

func (m *mutator) Pay(price int, fee economy.Fee, rates economy.Rates) error {
	if err := m.ValidateFee(price, fee, rates); err != nil {
		return err
	}
	economy.Debit(m.stock(m.me), fee)
	return nil
}

func (m *mutator) Gain(player int, r economy.Resource, n int) {
	if s := m.stock(player); s != nil {
		s.Gain(r, n)
	}
}

func (m *mutator) Spend(player int, r economy.Resource, n int) error {
	s := m.stock(player)
	if s == nil {
		return playerr.CardPlay("no player %d", player)
	}
	if err := s.Spend(r, n); err != nil {
		return playerr.Newf(protocol.ErrNoResource, "not enough %s", r)
	}
	return nil
}

func (m *mutator) Remove(player int, r economy.Resource, n int) int {
	if s := m.stock(player); s != nil {
		return s.Remove(r, n)
	}
	return 0
}

func (m *mutator) AddProduction(player int, r economy.Resource, n int) {
	if s := m.stock(player); s != nil && n > 0 {
		if l := s.Of(r); l != nil {
			l.Production += n
		}
	}
}

func (m *mutator) ReduceProduction(player int, r economy.Resource, n int) error {
	s := m.stock(player)
	if s == nil || s.Of(r) == nil {
		return playerr.CardPlay("no player %d", player)
	}
	l := s.Of(r)
	if l.Production-n < cards.ProductionFloor(r) {
		return playerr.CardPlay("%s production is not enough", r)
	}
	l.Production -= n
	return nil
}

func (m *mutator) AddCardResource(project int, r economy.CardResource, n int) error {
	_, bc := m.doc.Owner(project)
	if bc == nil {
		return playerr.CardPlay("project %d is not on any board", project)
	}
	if bc.Res == nil {
		bc.Res = economy.CardResources{}
	}
	bc.Res[r] += n
	return nil
}

func (m *mutator) TakeCardResource(project int, r economy.CardResource, n int) error {
	owner, bc := m.doc.Owner(project)
	if bc == nil {
		return playerr.CardPlay("project %d is not on any board", project)
	}
	if owner != m.me && m.View().Def(project).DisallowResourceDecrease {
		return playerr.CardPlay("resources can't be taken from project %d", project)
	}
	if bc.Res.Get(r) < n {
		return playerr.CardPlay("project %d holds too few %s", project, r)
	}
	bc.Res[r] -= n
	return nil
}

// DeckPop draws from the top of the deck, reshuffling the discard pile when
// the deck runs out. It may return fewer than n when both are empty.
func (m *mutator) DeckPop(n int) []int {
	var out []int
	for i := 0; i < n; i++ {
		if len(m.doc.Deck) == 0 {
			m.reshuffle()
			if len(m.doc.Deck) == 0 {
				break
			}
		}
		out = append(out, m.doc.Deck[0])
		m.doc.Deck = m.doc.Deck[1:]
	}
	m.doc.DeckSize = len(m.doc.Deck)
	return out
}

func (m *mutator) reshuffle() {
	if len(m.doc.Discard) == 0 {
		return
	}
	m.doc.Shuffles++
	deck := m.doc.Discard
	m.doc.Discard = nil
	rng := rand.New(rand.NewSource(m.doc.Seed + int64(m.doc.Shuffles)))
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	m.doc.Deck = deck
}

func (m *mutator) Discard(projects ...int) {
	m.doc.Discard = append(m.doc.Discard, projects...)
}

func (m *mutator) DrawToHand(n int) []int {
	ids := m.DeckPop(n)
	if p := m.doc.Player(m.me); p != nil {
		p.AddToHand(ids...)
	}
	return ids
}

func (m *mutator) SetSpecialProject() {
	if p := m.doc.Player(m.me); p != nil {
		p.SpecialProject = true
	}
}

// dispatch delivers queued tile events, then play events, to every reactor:
// players in index order, each player's corporation before their cards.
func (m *mutator) dispatch() {
	tiles, plays := m.tiles, m.plays
	m.tiles, m.plays = nil, nil
	for _, ev := range tiles {
		for player := range m.doc.Players {
			for _, re := range m.e.reg.Reactors(m.doc, player) {
				if re.Effects.OnPlaceTile != nil {
					re.Effects.OnPlaceTile(m, re.Player, re.Card, ev)
				}
			}
		}
	}
	for _, ev := range plays {
		for player := range m.doc.Players {
			for _, re := range m.e.reg.Reactors(m.doc, player) {
				if re.Effects.OnPlayProjectCard != nil {
					re.Effects.OnPlayProjectCard(m, re.Player, re.Card, ev)
				}
			}
		}
	}
}

func (m *mutator) placed() []int {
	out := make([]int, 0, len(m.tiles))
	for _, ev := range m.tiles {
		out = append(out, ev.Pos)
	}
	return out
}
