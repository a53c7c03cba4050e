// Package cards is the capability registry: per-project and per-corporation
// bundles of optional hooks, looked up by catalogue identity.
package cards

import (
	"context"

	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
)

// View is a read-only look at a document from one player's seat.
type View struct {
	Doc *game.Document
	Me  int
	Reg *Registry
}

func (v View) Self() *game.Player     { return v.Doc.Player(v.Me) }
func (v View) Field() *board.Field    { return &v.Doc.Field }
func (v View) Oceans() int            { return v.Doc.Field.Oceans() }
func (v View) Stock() economy.Stock   { return v.Self().Resources }
func (v View) Def(id int) catalogs.ProjectDef {
	if p := v.Reg.Project(id); p != nil {
		return p.Def
	}
	return catalogs.ProjectDef{}
}

// OceansLeft reports how many more oceans may be placed.
func (v View) OceansLeft() int {
	left := v.Reg.MaxOceans() - v.Oceans()
	if left < 0 {
		return 0
	}
	return left
}

// Choice is one option offered by MakeChoice.
type Choice struct {
	Result string `json:"result"`
	Text   string `json:"text"`
}

// Queries are the interactive questions a client-side hook may ask while it
// gathers a decision. Implementations are a human UI or an automated player.
type Queries interface {
	MakeChoice(ctx context.Context, choices []Choice) (string, error)
	PlaceTile(ctx context.Context, tile string, legal board.Predicate) (int, error)
	NumberInRange(ctx context.Context, prompt string, min, max int) (int, error)
	DistributeResources(ctx context.Context, price int, rates economy.Rates) (economy.Fee, error)
	SelectPlayer(ctx context.Context, prompt string, eligible func(p *game.Player) bool) (int, error)
	SelectBoardCard(ctx context.Context, prompt string, anyPlayer bool, eligible func(bc game.BoardCard) bool) (int, error)
}

// Decision is the payload a client-side hook produces and the matching
// server-side hook consumes. Each project uses the fields it needs.
type Decision struct {
	Pos         *int        `json:"pos,omitempty"`
	Positions   []int       `json:"positions,omitempty"`
	Player      *int        `json:"player,omitempty"`
	Choice      string      `json:"choice,omitempty"`
	Card        *int        `json:"card,omitempty"`
	MicrobeCard *int        `json:"microbe_card,omitempty"`
	AnimalCard  *int        `json:"animal_card,omitempty"`
	Amount      *int        `json:"amount,omitempty"`
	Fee         economy.Fee `json:"fee,omitempty"`
}

func Int(v int) *int { return &v }

// TileEvent is delivered to every passive reactor after a tile is placed.
type TileEvent struct {
	Player int
	Pos    int
	Tile   board.Tile
}

// PlayEvent is delivered to every passive reactor after a project is played.
type PlayEvent struct {
	Player  int
	Project int
}

type (
	CostModifier        func(cost int, target catalogs.ProjectDef) int
	RequirementModifier func(req catalogs.Requirements) catalogs.Requirements
	ClientHook          func(ctx context.Context, v View, q Queries) (Decision, error)
	ServerHook          func(m Mutator, d Decision) error
	Check               func(v View) bool
)

// Effects are the passive hooks shared by effect cards and corporations.
// owner is the reacting player; self is the reacting board card, nil for
// corporations.
type Effects struct {
	ModifyProjectCost        CostModifier
	ModifyGlobalRequirements RequirementModifier
	OnPlaceTile              func(m Mutator, owner int, self *game.BoardCard, ev TileEvent)
	OnPlayProjectCard        func(m Mutator, owner int, self *game.BoardCard, ev PlayEvent)
}

// Project is the capability bundle of one catalogue project. Every hook is
// optional; a missing hook means "no behavior" (or "always allowed" for checks).
type Project struct {
	Def catalogs.ProjectDef
	Effects

	CanPlay    Check
	PlayClient ClientHook
	PlayServer ServerHook

	CanDoAction    Check
	DoActionClient ClientHook
	DoActionServer ServerHook

	VP func(v View, self *game.BoardCard) int
}

// Corp is the capability bundle of one corporation.
type Corp struct {
	Def catalogs.CorpDef
	Effects

	// TitaniumRate overrides the credit value of titanium on space projects.
	TitaniumRate int
	// HeatAsCredits lets heat pay for projects one to one.
	HeatAsCredits bool
	// PlantConversion overrides the plants needed for a greenery.
	PlantConversion int

	Action *CorpAction
}

// CorpAction is a corporation's own action. FirstAction actions are taken
// once, as the player's first action of the game.
type CorpAction struct {
	FirstAction bool
	CanDo       Check
	Client      ClientHook
	Server      ServerHook
}
