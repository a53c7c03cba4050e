package engine

import (
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
)

// actor returns player if they may act at all right now.
func (e *Engine) actor(doc *game.Document, player int) *game.Player {
	if doc == nil || doc.Phase != game.PhaseAction {
		return nil
	}
	p := doc.Player(player)
	if p == nil || p.Pass {
		return nil
	}
	return p
}

// firstActionPending reports whether the player still owes their
// corporation's first action and can take it. Nothing else is allowed until then.
func (e *Engine) firstActionPending(doc *game.Document, p *game.Player) bool {
	if !p.FirstAction {
		return false
	}
	c := e.reg.Corp(p.Corporation)
	if c == nil || c.Action == nil || !c.Action.FirstAction {
		return false
	}
	return c.Action.CanDo == nil || c.Action.CanDo(e.view(doc, p.Idx))
}

func (e *Engine) CanPlayProject(doc *game.Document, player, project int) bool {
	p := e.actor(doc, player)
	if p == nil || e.firstActionPending(doc, p) || !p.InHand(project) {
		return false
	}
	proj := e.reg.Project(project)
	if proj == nil {
		return false
	}
	if !cards.RequirementsMet(doc, e.reg.EffectiveRequirements(doc, player, project)) {
		return false
	}
	cost := e.reg.EffectiveCost(doc, player, project)
	if economy.Potential(p.Resources, e.reg.PaymentRates(doc, player, proj.Def)) < cost {
		return false
	}
	return proj.CanPlay == nil || proj.CanPlay(e.view(doc, player))
}

func (e *Engine) CanDoProjectAction(doc *game.Document, player, project int) bool {
	p := e.actor(doc, player)
	if p == nil || e.firstActionPending(doc, p) {
		return false
	}
	bc := p.Card(project)
	proj := e.reg.Project(project)
	if bc == nil || proj == nil || !proj.Def.IsActionCard() || proj.DoActionServer == nil {
		return false
	}
	if bc.UsedGen == doc.Generation {
		return false
	}
	return proj.CanDoAction == nil || proj.CanDoAction(e.view(doc, player))
}

func (e *Engine) CanStandardProject(doc *game.Document, player, sp int) bool {
	p := e.actor(doc, player)
	if p == nil || e.firstActionPending(doc, p) {
		return false
	}
	credits := p.Resources.Count(economy.Credits)
	prices := e.tun.StandardProjects
	switch sp {
	case SellPatents:
		return len(p.Hand) > 0
	case PowerPlant:
		return credits >= prices.PowerPlant
	case AsteroidProject:
		return credits >= prices.Asteroid && e.temperatureOpen(doc)
	case HeatConversion:
		return p.Resources.Count(economy.Heat) >= e.tun.HeatConversion && e.temperatureOpen(doc)
	case Aquifer:
		return credits >= prices.Aquifer && board.Any(e.oceanPredicate(doc))
	case GreeneryProject:
		return credits >= prices.Greenery && board.Any(board.StandardGreenery(&doc.Field, player))
	case CityProject:
		return credits >= prices.City && board.Any(board.StandardCity(&doc.Field))
	case PlantConversion:
		return p.Resources.Count(economy.Plants) >= e.plantConversion(doc, player) &&
			board.Any(board.StandardGreenery(&doc.Field, player))
	}
	return false
}

func (e *Engine) CanCorpAction(doc *game.Document, player int) bool {
	p := e.actor(doc, player)
	if p == nil {
		return false
	}
	c := e.reg.Corp(p.Corporation)
	if c == nil || c.Action == nil {
		return false
	}
	if c.Action.FirstAction {
		if !p.FirstAction {
			return false
		}
	} else if e.firstActionPending(doc, p) || p.CorpActionGen == doc.Generation {
		return false
	}
	return c.Action.CanDo == nil || c.Action.CanDo(e.view(doc, player))
}

func (e *Engine) CanClaimMilestone(doc *game.Document, player int, m game.Milestone) bool {
	p := e.actor(doc, player)
	if p == nil || e.firstActionPending(doc, p) || !validMilestone(m) {
		return false
	}
	if _, claimed := doc.Milestones[m]; claimed || len(doc.Milestones) >= e.tun.Milestones.Limit {
		return false
	}
	if p.Resources.Count(economy.Credits) < e.tun.Milestones.Price {
		return false
	}
	return e.milestoneReached(doc, player, m)
}

func (e *Engine) CanFundAward(doc *game.Document, player int, a game.Award) bool {
	p := e.actor(doc, player)
	if p == nil || e.firstActionPending(doc, p) || !validAward(a) || doc.AwardFunded(a) {
		return false
	}
	price, ok := e.awardPrice(doc)
	return ok && p.Resources.Count(economy.Credits) >= price
}

func (e *Engine) CanPass(doc *game.Document, player int) bool {
	p := e.actor(doc, player)
	return p != nil && !e.firstActionPending(doc, p)
}

// Eligible runs the phase-one gate for any intent.
func (e *Engine) Eligible(doc *game.Document, in Intent) bool {
	switch in.Kind {
	case KindPlayProject:
		return e.CanPlayProject(doc, in.Player, in.Project)
	case KindProjectAction:
		return e.CanDoProjectAction(doc, in.Player, in.Project)
	case KindStandardProject:
		return e.CanStandardProject(doc, in.Player, in.StandardProject)
	case KindCorpAction:
		return e.CanCorpAction(doc, in.Player)
	case KindMilestone:
		return e.CanClaimMilestone(doc, in.Player, in.Milestone)
	case KindAward:
		return e.CanFundAward(doc, in.Player, in.Award)
	case KindPass:
		return e.CanPass(doc, in.Player)
	}
	return false
}

// Options lists every intent player may currently start.
func (e *Engine) Options(doc *game.Document, player int) []Intent {
	p := e.actor(doc, player)
	if p == nil {
		return nil
	}
	var out []Intent
	add := func(in Intent) {
		in.Player = player
		if e.Eligible(doc, in) {
			out = append(out, in)
		}
	}
	add(Intent{Kind: KindCorpAction})
	for _, id := range p.Hand {
		add(Intent{Kind: KindPlayProject, Project: id})
	}
	for _, bc := range p.Board {
		add(Intent{Kind: KindProjectAction, Project: bc.Project})
	}
	for sp := 0; sp < numStandardProjects; sp++ {
		add(Intent{Kind: KindStandardProject, StandardProject: sp})
	}
	for _, m := range game.Milestones {
		add(Intent{Kind: KindMilestone, Milestone: m})
	}
	for _, a := range game.Awards {
		add(Intent{Kind: KindAward, Award: a})
	}
	add(Intent{Kind: KindPass})
	return out
}

func (e *Engine) temperatureOpen(doc *game.Document) bool {
	return doc.Temperature+e.tun.TemperatureStep <= e.tun.TemperatureMax
}

func (e *Engine) oceanPredicate(doc *game.Document) board.Predicate {
	if doc.Field.Oceans() >= e.reg.MaxOceans() {
		return func(int) bool { return false }
	}
	return board.StandardOcean(&doc.Field)
}

func (e *Engine) plantConversion(doc *game.Document, player int) int {
	if p := doc.Player(player); p != nil {
		if c := e.reg.Corp(p.Corporation); c != nil && c.PlantConversion > 0 {
			return c.PlantConversion
		}
	}
	return e.tun.PlantConversion
}
