package cards

import (
	"fmt"

	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
)

type Options struct {
	MaxOceans int
}

// Registry resolves catalogue identities to capability bundles.
type Registry struct {
	cat       *catalogs.Catalogs
	projects  map[int]*Project
	corps     map[int]*Corp
	maxOceans int
}

func New(cat *catalogs.Catalogs, opts Options) (*Registry, error) {
	if opts.MaxOceans <= 0 {
		opts.MaxOceans = 9
	}
	r := &Registry{
		cat:       cat,
		projects:  make(map[int]*Project, len(cat.Projects.ByID)),
		corps:     make(map[int]*Corp, len(cat.Corps.ByID)),
		maxOceans: opts.MaxOceans,
	}
	for _, id := range cat.Projects.IDs {
		p := &Project{Def: cat.Projects.ByID[id]}
		if b, ok := projectHooks[id]; ok {
			b(p)
		}
		compileDeclarative(p)
		r.projects[id] = p
	}
	for id := range projectHooks {
		if _, ok := r.projects[id]; !ok {
			return nil, fmt.Errorf("cards: hooks for unknown project %d", id)
		}
	}
	for _, id := range cat.Corps.IDs {
		c := &Corp{Def: cat.Corps.ByID[id]}
		if b, ok := corpHooks[id]; ok {
			b(c)
		}
		r.corps[id] = c
	}
	return r, nil
}

func (r *Registry) Catalogs() *catalogs.Catalogs { return r.cat }
func (r *Registry) MaxOceans() int              { return r.maxOceans }
func (r *Registry) ProjectIDs() []int           { return r.cat.Projects.IDs }
func (r *Registry) CorpIDs() []int              { return r.cat.Corps.IDs }

// Project returns the bundle for id, or nil if the catalogue has no such project.
func (r *Registry) Project(id int) *Project { return r.projects[id] }

func (r *Registry) Corp(id int) *Corp { return r.corps[id] }

// Reactor is one source of passive effects belonging to a player.
type Reactor struct {
	Player  int
	Effects Effects
	// Card is the reacting board card, nil for the corporation.
	Card *game.BoardCard
}

// Reactors lists the effect sources of one player: the corporation first, then
// active effect cards in board order.
func (r *Registry) Reactors(doc *game.Document, player int) []Reactor {
	p := doc.Player(player)
	if p == nil {
		return nil
	}
	var out []Reactor
	if c := r.Corp(p.Corporation); c != nil {
		out = append(out, Reactor{Player: player, Effects: c.Effects})
	}
	for i := range p.Board {
		proj := r.Project(p.Board[i].Project)
		if proj == nil || !proj.Def.IsEffectCard() {
			continue
		}
		out = append(out, Reactor{Player: player, Effects: proj.Effects, Card: &p.Board[i]})
	}
	return out
}

// EffectiveCost composes the project's cost through the player's corporation,
// then their effect cards in board order. The result is never negative.
func (r *Registry) EffectiveCost(doc *game.Document, player, project int) int {
	proj := r.Project(project)
	if proj == nil {
		return 0
	}
	cost := proj.Def.Cost
	for _, re := range r.Reactors(doc, player) {
		if re.Effects.ModifyProjectCost != nil {
			cost = re.Effects.ModifyProjectCost(cost, proj.Def)
		}
	}
	if cost < 0 {
		cost = 0
	}
	return cost
}

// EffectiveRequirements composes the project's global requirements through the
// same chain as EffectiveCost, then widens every bound by 2 while the player
// holds a pending special-project bonus.
func (r *Registry) EffectiveRequirements(doc *game.Document, player, project int) catalogs.Requirements {
	proj := r.Project(project)
	if proj == nil {
		return nil
	}
	req := proj.Def.Requirements.Clone()
	for _, re := range r.Reactors(doc, player) {
		if re.Effects.ModifyGlobalRequirements != nil {
			req = re.Effects.ModifyGlobalRequirements(req)
		}
	}
	if p := doc.Player(player); p != nil && p.SpecialProject {
		req = req.Relaxed(2)
	}
	return req
}

// RequirementsMet checks composed requirements against the live parameters.
func RequirementsMet(doc *game.Document, req catalogs.Requirements) bool {
	for param, bound := range req {
		var value int
		switch param {
		case catalogs.ParamTemperature:
			value = doc.Temperature
		case catalogs.ParamOxygen:
			value = doc.Oxygen
		case catalogs.ParamOcean:
			value = doc.Field.Oceans()
		default:
			continue
		}
		if !bound.Satisfied(value) {
			return false
		}
	}
	return true
}

// PaymentRates returns the currencies player may use for project.
func (r *Registry) PaymentRates(doc *game.Document, player int, def catalogs.ProjectDef) economy.Rates {
	titanium, heat := economy.TitaniumRate, false
	if p := doc.Player(player); p != nil {
		if c := r.Corp(p.Corporation); c != nil {
			if c.TitaniumRate > 0 {
				titanium = c.TitaniumRate
			}
			heat = c.HeatAsCredits
		}
	}
	return economy.PaymentRates(def.HasLabel(catalogs.LabelBuilding), def.HasLabel(catalogs.LabelSpace), titanium, heat)
}

// TitaniumRate is the credit value of titanium for player.
func (r *Registry) TitaniumRate(doc *game.Document, player int) int {
	if p := doc.Player(player); p != nil {
		if c := r.Corp(p.Corporation); c != nil && c.TitaniumRate > 0 {
			return c.TitaniumRate
		}
	}
	return economy.TitaniumRate
}
