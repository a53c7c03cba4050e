// Package bot is an automated player: it answers client-side questions from
// a seeded random source and picks the next action among the legal ones.
package bot

import (
	"context"
	"math/rand"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// Strategy implements cards.Queries for one seat. Call SetView with the
// player's latest view before each decision.
type Strategy struct {
	me  int
	rng *rand.Rand
	doc *game.Document
}

var _ cards.Queries = (*Strategy)(nil)

func New(player int, seed int64) *Strategy {
	return &Strategy{me: player, rng: rand.New(rand.NewSource(seed))}
}

func (s *Strategy) Player() int { return s.me }

func (s *Strategy) SetView(doc *game.Document) { s.doc = doc }

func (s *Strategy) stock() economy.Stock {
	if s.doc == nil {
		return economy.Stock{}
	}
	if p := s.doc.Player(s.me); p != nil {
		return p.Resources
	}
	return economy.Stock{}
}

func (s *Strategy) MakeChoice(ctx context.Context, choices []cards.Choice) (string, error) {
	if len(choices) == 0 {
		return "", playerr.New(protocol.ErrInvalidTarget, "nothing to choose from")
	}
	return choices[s.rng.Intn(len(choices))].Result, nil
}

func (s *Strategy) PlaceTile(ctx context.Context, tile string, legal board.Predicate) (int, error) {
	cands := board.Legal(legal)
	if len(cands) == 0 {
		return 0, playerr.Newf(protocol.ErrInvalidTarget, "no legal %s position", tile)
	}
	return cands[s.rng.Intn(len(cands))], nil
}

func (s *Strategy) NumberInRange(ctx context.Context, prompt string, min, max int) (int, error) {
	if max < min {
		return 0, playerr.Newf(protocol.ErrInvalidTarget, "empty range for %s", prompt)
	}
	return min + s.rng.Intn(max-min+1), nil
}

// DistributeResources pays with the highest-rate currencies first without
// overpaying, tops up with credits, and only overshoots when it must.
func (s *Strategy) DistributeResources(ctx context.Context, price int, rates economy.Rates) (economy.Fee, error) {
	return Greedy(s.stock(), price, rates)
}

// Greedy is the fee split DistributeResources uses.
func Greedy(stock economy.Stock, price int, rates economy.Rates) (economy.Fee, error) {
	fee := economy.Fee{}
	left := price
	order := rates.Sorted()
	for _, r := range order {
		if r == economy.Credits || left <= 0 {
			continue
		}
		n := min(stock.Count(r), left/rates[r])
		if n > 0 {
			fee[r] = n
			left -= n * rates[r]
		}
	}
	if _, ok := rates[economy.Credits]; ok && left > 0 {
		n := min(stock.Count(economy.Credits), left)
		if n > 0 {
			fee[economy.Credits] = n
			left -= n
		}
	}
	for _, r := range order {
		if left <= 0 {
			break
		}
		if stock.Count(r) > fee[r] {
			fee[r]++
			left -= rates[r]
		}
	}
	if left > 0 {
		return nil, playerr.Newf(protocol.ErrNoResource, "cannot cover %d", price)
	}
	for r, n := range fee {
		if n == 0 {
			delete(fee, r)
		}
	}
	return fee, nil
}

func (s *Strategy) SelectPlayer(ctx context.Context, prompt string, eligible func(p *game.Player) bool) (int, error) {
	if s.doc == nil {
		return 0, playerr.New(protocol.ErrInvalidTarget, "no view")
	}
	var cands []int
	for i := range s.doc.Players {
		if eligible == nil || eligible(&s.doc.Players[i]) {
			cands = append(cands, i)
		}
	}
	if len(cands) == 0 {
		return 0, playerr.Newf(protocol.ErrInvalidTarget, "no player for %s", prompt)
	}
	return cands[s.rng.Intn(len(cands))], nil
}

func (s *Strategy) SelectBoardCard(ctx context.Context, prompt string, anyPlayer bool, eligible func(bc game.BoardCard) bool) (int, error) {
	if s.doc == nil {
		return 0, playerr.New(protocol.ErrInvalidTarget, "no view")
	}
	var cands []int
	for i := range s.doc.Players {
		if !anyPlayer && i != s.me {
			continue
		}
		for _, bc := range s.doc.Players[i].Board {
			if eligible == nil || eligible(bc) {
				cands = append(cands, bc.Project)
			}
		}
	}
	if len(cands) == 0 {
		return 0, playerr.Newf(protocol.ErrInvalidTarget, "no card for %s", prompt)
	}
	return cands[s.rng.Intn(len(cands))], nil
}

// NextIntent picks a random legal intent, passing only when nothing else is
// available or on a small random chance once the hand is spent.
func (s *Strategy) NextIntent(e *engine.Engine, doc *game.Document) (engine.Intent, bool) {
	opts := e.Options(doc, s.me)
	if len(opts) == 0 {
		return engine.Intent{}, false
	}
	var moves []engine.Intent
	var pass *engine.Intent
	for i := range opts {
		if opts[i].Kind == engine.KindPass {
			pass = &opts[i]
			continue
		}
		moves = append(moves, opts[i])
	}
	if len(moves) == 0 || (pass != nil && s.rng.Intn(8) == 0) {
		if pass == nil {
			return engine.Intent{}, false
		}
		return *pass, true
	}
	return moves[s.rng.Intn(len(moves))], true
}

// Turn picks and decides one action against doc. Intents whose decision
// cannot be gathered are skipped; it falls back to passing.
func (s *Strategy) Turn(ctx context.Context, e *engine.Engine, doc *game.Document) (engine.Action, error) {
	s.SetView(doc)
	for try := 0; try < 8; try++ {
		in, ok := s.NextIntent(e, doc)
		if !ok {
			return engine.Action{}, playerr.New(protocol.ErrIneligible, "no action available")
		}
		a, err := e.Decide(ctx, doc, in, s)
		if err == nil {
			return a, nil
		}
		if ctx.Err() != nil {
			return engine.Action{}, ctx.Err()
		}
	}
	pass := engine.Intent{Kind: engine.KindPass, Player: s.me}
	if !e.Eligible(doc, pass) {
		return engine.Action{}, playerr.New(protocol.ErrIneligible, "no action available")
	}
	return engine.Action{Intent: pass}, nil
}
