// Package engine resolves player actions against a game document: eligibility,
// decision gathering, validated all-or-nothing mutation and reaction dispatch.
package engine

import (
	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/tuning"
)

type Kind string

const (
	KindPlayProject     Kind = protocol.ActPlayProject
	KindProjectAction   Kind = protocol.ActProjectAction
	KindStandardProject Kind = protocol.ActStandardProject
	KindCorpAction      Kind = protocol.ActCorpAction
	KindMilestone       Kind = protocol.ActMilestone
	KindAward           Kind = protocol.ActAward
	KindPass            Kind = protocol.ActPass
)

// Intent names an action a player could take, before any decision is made.
type Intent struct {
	Kind            Kind           `json:"kind"`
	Player          int            `json:"player"`
	Project         int            `json:"project,omitempty"`
	StandardProject int            `json:"standard_project,omitempty"`
	Milestone       game.Milestone `json:"milestone,omitempty"`
	Award           game.Award     `json:"award,omitempty"`
}

// Action is an intent with every decision gathered, ready to apply.
type Action struct {
	Intent
	Fee      economy.Fee    `json:"fee,omitempty"`
	Pos      *int           `json:"pos,omitempty"`
	Sell     []int          `json:"sell,omitempty"`
	Decision cards.Decision `json:"data"`
}

// Standard projects by menu index.
const (
	SellPatents = iota
	PowerPlant
	AsteroidProject
	HeatConversion
	Aquifer
	GreeneryProject
	CityProject
	PlantConversion

	numStandardProjects
)

type Engine struct {
	reg *cards.Registry
	tun tuning.Tuning
}

func New(reg *cards.Registry, tun tuning.Tuning) *Engine {
	return &Engine{reg: reg, tun: tun}
}

func (e *Engine) Registry() *cards.Registry { return e.reg }
func (e *Engine) Tuning() tuning.Tuning     { return e.tun }

func (e *Engine) view(doc *game.Document, player int) cards.View {
	return cards.View{Doc: doc, Me: player, Reg: e.reg}
}
