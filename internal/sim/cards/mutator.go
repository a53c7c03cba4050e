package cards

import (
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
)

// Mutator is the only way a server-side hook or passive reaction changes the
// game document. It is bound to one acting player (Me) and to a working copy
// of the document that is committed only if the whole action succeeds.
type Mutator interface {
	View() View
	Me() int

	// PlaceTile puts a tile on an empty cell, granting placement bonuses.
	PlaceTile(pos int, t board.Tile) error
	// IncreaseGlobal raises temperature or oxygen by up to steps, each
	// applied step giving the acting player 1 TR. It returns the steps applied.
	IncreaseGlobal(p catalogs.Param, steps int) int
	GainTR(n int)

	ValidateFee(price int, fee economy.Fee, rates economy.Rates) error
	// Pay validates then debits a fee from the acting player.
	Pay(price int, fee economy.Fee, rates economy.Rates) error

	Gain(player int, r economy.Resource, n int)
	Spend(player int, r economy.Resource, n int) error
	// Remove takes up to n and returns how many were taken.
	Remove(player int, r economy.Resource, n int) int
	AddProduction(player int, r economy.Resource, n int)
	// ReduceProduction fails when production would fall under its floor
	// (-5 for credits, 0 otherwise).
	ReduceProduction(player int, r economy.Resource, n int) error

	AddCardResource(project int, r economy.CardResource, n int) error
	TakeCardResource(project int, r economy.CardResource, n int) error

	DeckPop(n int) []int
	Discard(projects ...int)
	DrawToHand(n int) []int
	SetSpecialProject()
}

// ProductionFloor is the lowest production r may reach.
func ProductionFloor(r economy.Resource) int {
	if r == economy.Credits {
		return -5
	}
	return 0
}
