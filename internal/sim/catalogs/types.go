package catalogs

import "redplanet.games/internal/sim/economy"

type Label string

const (
	LabelBuilding Label = "building"
	LabelSpace    Label = "space"
	LabelEnergy   Label = "energy"
	LabelScience  Label = "science"
	LabelJupiter  Label = "jupiter"
	LabelEarth    Label = "earth"
	LabelPlants   Label = "plants"
	LabelMicrobes Label = "microbes"
	LabelAnimals  Label = "animals"
	LabelCity     Label = "city"
)

type ProjectType string

const (
	TypeAutomated ProjectType = "automated"
	TypeEvent     ProjectType = "event"
	TypeActive    ProjectType = "active"
)

type Subtype string

const (
	SubtypeAction Subtype = "action"
	SubtypeEffect Subtype = "effect"
)

// Param is a global parameter a requirement can refer to.
type Param string

const (
	ParamTemperature Param = "temperature"
	ParamOxygen      Param = "oxygen"
	ParamOcean       Param = "ocean"
)

type Bound string

const (
	Min Bound = "min"
	Max Bound = "max"
)

type Requirement struct {
	Type   Bound `json:"type"`
	Amount int   `json:"amount"`
}

// Satisfied reports whether value meets the bound.
func (r Requirement) Satisfied(value int) bool {
	if r.Type == Max {
		return value <= r.Amount
	}
	return value >= r.Amount
}

// Relaxed widens the bound by n: minimums drop, maximums rise.
func (r Requirement) Relaxed(n int) Requirement {
	if r.Type == Max {
		r.Amount += n
	} else {
		r.Amount -= n
	}
	return r
}

type Requirements map[Param]Requirement

func (r Requirements) Clone() Requirements {
	out := make(Requirements, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Relaxed returns a copy with every bound widened by n.
func (r Requirements) Relaxed(n int) Requirements {
	out := make(Requirements, len(r))
	for k, v := range r {
		out[k] = v.Relaxed(n)
	}
	return out
}

type ProjectDef struct {
	ID                       int                          `json:"id"`
	Name                     string                       `json:"name"`
	Cost                     int                          `json:"cost"`
	Type                     ProjectType                  `json:"type"`
	Subtype                  Subtype                      `json:"subtype,omitempty"`
	Labels                   []Label                      `json:"labels,omitempty"`
	Requirements             Requirements                 `json:"requirements,omitempty"`
	InitialResources         map[economy.CardResource]int `json:"initial_resources,omitempty"`
	DisallowResourceDecrease bool                         `json:"disallow_resource_decrease,omitempty"`
	VP                       int                          `json:"vp,omitempty"`
	Effect                   *Effect                      `json:"effect,omitempty"`
	Gate                     *Gate                        `json:"gate,omitempty"`
}

func (d ProjectDef) HasLabel(l Label) bool {
	for _, x := range d.Labels {
		if x == l {
			return true
		}
	}
	return false
}

// IsEffectCard reports whether the project is an active card with passive effects.
func (d ProjectDef) IsEffectCard() bool {
	return d.Type == TypeActive && d.Subtype == SubtypeEffect
}

func (d ProjectDef) IsActionCard() bool {
	return d.Type == TypeActive && d.Subtype == SubtypeAction
}

// Effect is the declarative play behavior of projects needing no decision:
// deltas applied to the acting player, then global steps and TR.
type Effect struct {
	Production map[economy.Resource]int `json:"production,omitempty"`
	Resources  map[economy.Resource]int `json:"resources,omitempty"`
	Raise      map[Param]int            `json:"raise,omitempty"`
	TR         int                      `json:"tr,omitempty"`
}

// Gate is the declarative playability check of a project.
type Gate struct {
	MinProduction map[economy.Resource]int `json:"min_production,omitempty"`
	MinResources  map[economy.Resource]int `json:"min_resources,omitempty"`
	MinLabels     map[Label]int            `json:"min_labels,omitempty"`
}

type CorpDef struct {
	ID     int                                 `json:"id"`
	Name   string                              `json:"name"`
	Labels []Label                             `json:"labels,omitempty"`
	Start  map[economy.Resource]economy.Ledger `json:"start"`
}
