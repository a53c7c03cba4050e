package game

import "redplanet.games/internal/sim/catalogs"

// Clone returns a deep copy. Mutations on the copy never reach d.
func (d *Document) Clone() *Document {
	out := *d
	out.Players = make([]Player, len(d.Players))
	for i := range d.Players {
		out.Players[i] = d.Players[i].clone()
	}
	out.Deck = append([]int(nil), d.Deck...)
	out.Discard = append([]int(nil), d.Discard...)
	out.Milestones = make(map[Milestone]int, len(d.Milestones))
	for k, v := range d.Milestones {
		out.Milestones[k] = v
	}
	out.Awards = append([]AwardFunding(nil), d.Awards...)
	out.Events = append([]Event(nil), d.Events...)
	return &out
}

func (p Player) clone() Player {
	out := p
	out.Labels = make(map[catalogs.Label]int, len(p.Labels))
	for k, v := range p.Labels {
		out.Labels[k] = v
	}
	out.Hand = append([]int(nil), p.Hand...)
	out.Played = append([]int(nil), p.Played...)
	out.Board = make([]BoardCard, len(p.Board))
	for i, bc := range p.Board {
		bc.Res = bc.Res.Clone()
		out.Board[i] = bc
	}
	return out
}

// Spectator is the player index used for views without any private hand.
const Spectator = -1

// ViewFor returns a copy safe to show player: the deck order and every other
// player's hand are hidden. Spectator sees no hands.
func (d *Document) ViewFor(player int) *Document {
	v := d.Clone()
	v.DeckSize = len(v.Deck)
	v.Deck = nil
	v.Seed = 0
	for i := range v.Players {
		p := &v.Players[i]
		p.HandSize = len(p.Hand)
		if i != player {
			p.Hand = nil
		}
	}
	return v
}
