package engine

import (
	"context"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// Decide gathers everything in needs by asking q, reading doc as the deciding
// player sees it. It never writes doc and holds no lock, so it may block on q
// for as long as the player takes.
func (e *Engine) Decide(ctx context.Context, doc *game.Document, in Intent, q cards.Queries) (Action, error) {
	if !e.Eligible(doc, in) {
		return Action{}, playerr.New(protocol.ErrIneligible, "action is not available")
	}
	a := Action{Intent: in}
	v := e.view(doc, in.Player)
	var err error
	switch in.Kind {
	case KindPlayProject:
		proj := e.reg.Project(in.Project)
		price := e.reg.EffectiveCost(doc, in.Player, in.Project)
		a.Fee, err = gatherFee(ctx, q, price, e.reg.PaymentRates(doc, in.Player, proj.Def))
		if err == nil && proj.PlayClient != nil {
			a.Decision, err = proj.PlayClient(ctx, v, q)
		}
	case KindProjectAction:
		if h := e.reg.Project(in.Project).DoActionClient; h != nil {
			a.Decision, err = h(ctx, v, q)
		}
	case KindCorpAction:
		if h := e.reg.Corp(v.Self().Corporation).Action.Client; h != nil {
			a.Decision, err = h(ctx, v, q)
		}
	case KindStandardProject:
		err = e.decideStandard(ctx, doc, &a, q)
	}
	if err != nil {
		return Action{}, err
	}
	return a, nil
}

// gatherFee asks for a split only when something besides credits is accepted.
func gatherFee(ctx context.Context, q cards.Queries, price int, rates economy.Rates) (economy.Fee, error) {
	if price <= 0 {
		return nil, nil
	}
	if rates.CreditsOnly() {
		return economy.Fee{economy.Credits: price}, nil
	}
	return q.DistributeResources(ctx, price, rates)
}
