package engine

import (
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
)

// ProductionPhase ends the generation: energy turns to heat, every player
// collects production (credits also collect TR), and the next generation
// starts with everyone back in play. The game finishes once every global
// parameter is at its limit.
func (e *Engine) ProductionPhase(doc *game.Document) {
	for i := range doc.Players {
		p := &doc.Players[i]
		s := &p.Resources
		s.Heat.Count += s.Energy.Count
		s.Energy.Count = 0
		s.Credits.Count += p.TR
		for _, r := range economy.Resources {
			l := s.Of(r)
			l.Count = max(0, l.Count+l.Production)
		}
		p.TRGain = 0
		p.Pass = false
	}
	doc.Generation++
	if n := len(doc.Players); n > 0 {
		doc.FirstPlayer = (doc.FirstPlayer + 1) % n
	}
	if e.Terraformed(doc) {
		doc.Phase = game.PhaseFinished
	}
	doc.Append(game.Event{Kind: game.EventGeneration, Player: doc.FirstPlayer})
}

// Terraformed reports whether temperature, oxygen and oceans are all maxed.
func (e *Engine) Terraformed(doc *game.Document) bool {
	return doc.Temperature >= e.tun.TemperatureMax &&
		doc.Oxygen >= e.tun.OxygenMax &&
		doc.Field.Oceans() >= e.reg.MaxOceans()
}
