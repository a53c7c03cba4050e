package engine

import (
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
)

func validMilestone(m game.Milestone) bool {
	for _, x := range game.Milestones {
		if x == m {
			return true
		}
	}
	return false
}

func validAward(a game.Award) bool {
	for _, x := range game.Awards {
		if x == a {
			return true
		}
	}
	return false
}

func (e *Engine) milestoneReached(doc *game.Document, player int, m game.Milestone) bool {
	p := doc.Player(player)
	if p == nil {
		return false
	}
	switch m {
	case game.MilestoneTerraformer:
		return p.TR >= 35
	case game.MilestoneMayor:
		return doc.Field.CountOwned(player, board.TileCity, board.TileCapital) >= 3
	case game.MilestoneGardener:
		return doc.Field.CountOwned(player, board.TileGreenery) >= 3
	case game.MilestoneBuilder:
		return p.Label(catalogs.LabelBuilding) >= 8
	case game.MilestonePlanner:
		return len(p.Hand) >= 16
	}
	return false
}

// awardPrice is the cost of the next award to be funded.
func (e *Engine) awardPrice(doc *game.Document) (int, bool) {
	n := len(doc.Awards)
	if n >= len(e.tun.Awards.Prices) {
		return 0, false
	}
	return e.tun.Awards.Prices[n], true
}

// AwardMetric is the quantity an award ranks players by.
func AwardMetric(doc *game.Document, player int, a game.Award) int {
	p := doc.Player(player)
	if p == nil {
		return 0
	}
	switch a {
	case game.AwardLandlord:
		return doc.Field.CountOwned(player)
	case game.AwardBanker:
		return p.Resources.Production(economy.Credits)
	case game.AwardScientist:
		return p.Label(catalogs.LabelScience)
	case game.AwardThermalist:
		return p.Resources.Count(economy.Heat)
	case game.AwardMiner:
		return p.Resources.Count(economy.Steel) + p.Resources.Count(economy.Titanium)
	}
	return 0
}

// awardVP ranks every player for a funded award. Leaders share the first
// prize; the runners-up score only when the lead is not shared.
func (e *Engine) awardVP(doc *game.Document, a game.Award) []int {
	out := make([]int, len(doc.Players))
	if len(out) == 0 {
		return out
	}
	metric := make([]int, len(doc.Players))
	first := metric[0]
	for i := range doc.Players {
		metric[i] = AwardMetric(doc, i, a)
		if i == 0 || metric[i] > first {
			first = metric[i]
		}
	}
	leaders := 0
	second, haveSecond := 0, false
	for _, v := range metric {
		switch {
		case v == first:
			leaders++
		case !haveSecond || v > second:
			second, haveSecond = v, true
		}
	}
	for i, v := range metric {
		switch {
		case v == first:
			out[i] = e.tun.Awards.FirstVP
		case leaders == 1 && haveSecond && v == second:
			out[i] = e.tun.Awards.SecondVP
		}
	}
	return out
}
