package engine

import (
	"fmt"
	"math/rand"

	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/game"
)

const MaxPlayers = 5

type Seat struct {
	Name        string `json:"name"`
	Corporation int    `json:"corporation"`
}

type Setup struct {
	ID      string
	Players []Seat
	Seed    int64
}

// NewGame deals a fresh document: the deck is shuffled from Seed, each seat
// gets its corporation's starting stock and labels and a starting hand.
func (e *Engine) NewGame(s Setup) (*game.Document, error) {
	if len(s.Players) == 0 || len(s.Players) > MaxPlayers {
		return nil, fmt.Errorf("engine: need 1 to %d players, got %d", MaxPlayers, len(s.Players))
	}
	taken := map[int]bool{}
	for _, seat := range s.Players {
		if e.reg.Corp(seat.Corporation) == nil {
			return nil, fmt.Errorf("engine: unknown corporation %d", seat.Corporation)
		}
		if taken[seat.Corporation] {
			return nil, fmt.Errorf("engine: corporation %d taken twice", seat.Corporation)
		}
		taken[seat.Corporation] = true
	}

	deck := append([]int(nil), e.reg.ProjectIDs()...)
	rng := rand.New(rand.NewSource(s.Seed))
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	doc := &game.Document{
		ID:          s.ID,
		Temperature: e.tun.TemperatureMin,
		Generation:  1,
		Phase:       game.PhaseAction,
		Seed:        s.Seed,
		Milestones:  map[game.Milestone]int{},
	}
	for i, seat := range s.Players {
		c := e.reg.Corp(seat.Corporation)
		p := game.Player{
			Idx:         i,
			Name:        seat.Name,
			Corporation: seat.Corporation,
			TR:          e.tun.StartingTR,
			Resources:   c.Def.StartingStock(),
			Labels:      map[catalogs.Label]int{},
		}
		for _, l := range c.Def.Labels {
			p.Labels[l]++
		}
		p.FirstAction = c.Action != nil && c.Action.FirstAction
		n := min(e.tun.StartingHand, len(deck))
		p.AddToHand(deck[:n]...)
		deck = deck[n:]
		doc.Players = append(doc.Players, p)
	}
	doc.Deck = deck
	doc.DeckSize = len(deck)
	return doc, nil
}
