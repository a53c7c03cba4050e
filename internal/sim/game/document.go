// Package game holds the authoritative per-game document. Every rule
// operation reads and writes through it; the runtime owns the only live copy.
package game

import (
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
)

type Phase string

const (
	PhaseResearch Phase = "research"
	PhaseAction   Phase = "action"
	PhaseFinished Phase = "finished"
)

// BoardCard is one played project on a player's board with the resources
// placed on it.
type BoardCard struct {
	Project int                   `json:"project"`
	Res     economy.CardResources `json:"res"`
	Gen     int                   `json:"gen"`
	// UsedGen is the last generation the card's action was taken (0 = never).
	UsedGen int `json:"used_gen,omitempty"`
}

type Player struct {
	Idx         int                    `json:"idx"`
	Name        string                 `json:"name,omitempty"`
	Corporation int                    `json:"corporation"`
	TR          int                    `json:"tr"`
	TRGain      int                    `json:"tr_gain"`
	Resources   economy.Stock          `json:"resources"`
	Labels      map[catalogs.Label]int `json:"labels"`
	Hand        []int                  `json:"hand,omitempty"`
	HandSize    int                    `json:"hand_size"`
	Board       []BoardCard            `json:"board"`
	Played      []int                  `json:"played"`
	Pass        bool                   `json:"pass"`

	SpecialProject bool `json:"special_project,omitempty"`
	FirstAction    bool `json:"first_action,omitempty"`
	CorpActionGen  int  `json:"corp_action_gen,omitempty"`
}

// Card returns the board card for project, or nil.
func (p *Player) Card(project int) *BoardCard {
	for i := range p.Board {
		if p.Board[i].Project == project {
			return &p.Board[i]
		}
	}
	return nil
}

func (p *Player) InHand(project int) bool {
	for _, id := range p.Hand {
		if id == project {
			return true
		}
	}
	return false
}

// RemoveFromHand drops project from the hand and reports whether it was there.
func (p *Player) RemoveFromHand(project int) bool {
	for i, id := range p.Hand {
		if id == project {
			p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
			p.HandSize = len(p.Hand)
			return true
		}
	}
	return false
}

func (p *Player) AddToHand(projects ...int) {
	p.Hand = append(p.Hand, projects...)
	p.HandSize = len(p.Hand)
}

func (p *Player) Label(l catalogs.Label) int {
	if p.Labels == nil {
		return 0
	}
	return p.Labels[l]
}

// AwardFunding records who funded an award.
type AwardFunding struct {
	Award  Award `json:"award"`
	Player int   `json:"player"`
}

type Document struct {
	ID      string      `json:"id"`
	Players []Player    `json:"players"`
	Field   board.Field `json:"field"`

	// Temperature is in degrees; Oxygen in percent.
	Temperature int `json:"temperature"`
	Oxygen      int `json:"oxygen"`

	Deck      []int `json:"deck,omitempty"`
	DeckSize  int   `json:"deck_size"`
	Discard   []int `json:"discard,omitempty"`
	Seed      int64 `json:"seed,omitempty"`
	Shuffles  int   `json:"shuffles,omitempty"`

	Generation  int   `json:"gen"`
	Phase       Phase `json:"phase"`
	FirstPlayer int   `json:"first_player"`

	Milestones map[Milestone]int `json:"milestones"`
	Awards     []AwardFunding    `json:"awards"`

	Events []Event `json:"events"`
}

func (d *Document) Player(idx int) *Player {
	if idx < 0 || idx >= len(d.Players) {
		return nil
	}
	return &d.Players[idx]
}

func (d *Document) Oceans() int { return d.Field.Oceans() }

// Owner finds the player whose board holds project.
func (d *Document) Owner(project int) (int, *BoardCard) {
	for i := range d.Players {
		if bc := d.Players[i].Card(project); bc != nil {
			return i, bc
		}
	}
	return -1, nil
}

// Seq is the index the next event will take.
func (d *Document) Seq() int { return len(d.Events) }
