package engine

import (
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/game"
)

// PlayerScore is one player's victory points broken down by source.
type PlayerScore struct {
	Player     int `json:"player"`
	TR         int `json:"tr"`
	Cards      int `json:"cards"`
	Greeneries int `json:"greeneries"`
	Cities     int `json:"cities"`
	Milestones int `json:"milestones"`
	Awards     int `json:"awards"`
	Total      int `json:"total"`
}

// Score totals every player's victory points. It only reads doc and may be
// called at any point of the game.
func (e *Engine) Score(doc *game.Document) []PlayerScore {
	out := make([]PlayerScore, len(doc.Players))
	for i := range doc.Players {
		p := &doc.Players[i]
		s := &out[i]
		s.Player = i
		s.TR = p.TR
		s.Cards = e.cardVP(doc, i)
		s.Greeneries = doc.Field.CountOwned(i, board.TileGreenery)
		for pos := 0; pos < board.Size; pos++ {
			if t := doc.Field.At(pos); t.Kind.IsCity() && t.OwnedBy(i) {
				s.Cities += doc.Field.AdjacentKind(pos, board.TileGreenery)
			}
		}
	}
	for _, m := range game.Milestones {
		if owner, ok := doc.Milestones[m]; ok && owner >= 0 && owner < len(out) {
			out[owner].Milestones += e.tun.Milestones.VP
		}
	}
	for _, f := range doc.Awards {
		for i, vp := range e.awardVP(doc, f.Award) {
			out[i].Awards += vp
		}
	}
	for i := range out {
		s := &out[i]
		s.Total = s.TR + s.Cards + s.Greeneries + s.Cities + s.Milestones + s.Awards
	}
	return out
}

// cardVP sums board cards through their VP hooks and played events through
// their printed VP.
func (e *Engine) cardVP(doc *game.Document, player int) int {
	p := doc.Player(player)
	v := e.view(doc, player)
	total := 0
	for i := range p.Board {
		if proj := e.reg.Project(p.Board[i].Project); proj != nil && proj.VP != nil {
			total += proj.VP(v, &p.Board[i])
		}
	}
	for _, id := range p.Played {
		if proj := e.reg.Project(id); proj != nil && proj.Def.Type == catalogs.TypeEvent {
			total += proj.Def.VP
		}
	}
	return total
}
