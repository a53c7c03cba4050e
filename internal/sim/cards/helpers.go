package cards

import (
	"context"

	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// placement builds a predicate against the field a view is looking at, so the
// same rule serves the client (pre-action snapshot) and the server (working copy).
type placement func(v View) board.Predicate

func cityPlacement(v View) board.Predicate { return board.StandardCity(v.Field()) }

func oceanPlacement(v View) board.Predicate {
	if v.OceansLeft() == 0 {
		return func(int) bool { return false }
	}
	return board.StandardOcean(v.Field())
}

func greeneryPlacement(v View) board.Predicate {
	return board.StandardGreenery(v.Field(), v.Me)
}

func fixedCell(pos int) placement {
	return func(v View) board.Predicate { return board.AnyOf(v.Field(), pos) }
}

func tileFor(kind board.TileKind, owner int) board.Tile {
	if kind == board.TileOcean {
		return board.Ocean()
	}
	return board.Owned(kind, owner)
}

func askTile(ctx context.Context, q Queries, name string, legal board.Predicate) (Decision, error) {
	pos, err := q.PlaceTile(ctx, name, legal)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Pos: Int(pos)}, nil
}

// placeTile validates d.Pos against the live field before placing.
func placeTile(m Mutator, d Decision, legal placement, kind board.TileKind) error {
	if d.Pos == nil {
		return playerr.CardPlay("%s position is required", kind)
	}
	if !legal(m.View())(*d.Pos) {
		return playerr.CardPlay("bad %s position %d", kind, *d.Pos)
	}
	return m.PlaceTile(*d.Pos, tileFor(kind, m.Me()))
}

// tileProject wires a project whose play places a single tile.
func tileProject(p *Project, kind board.TileKind, legal placement) {
	p.CanPlay = allOf(p.CanPlay, func(v View) bool { return board.Any(legal(v)) })
	p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
		return askTile(ctx, q, kind.String(), legal(v))
	}
	p.PlayServer = func(m Mutator, d Decision) error {
		return placeTile(m, d, legal, kind)
	}
}

// optionalOcean asks for an ocean only while oceans remain.
func optionalOcean(ctx context.Context, v View, q Queries) (Decision, error) {
	if v.OceansLeft() == 0 {
		return Decision{}, nil
	}
	return askTile(ctx, q, "ocean", oceanPlacement(v))
}

func placeOptionalOcean(m Mutator, d Decision) error {
	if m.View().OceansLeft() == 0 {
		return nil
	}
	return placeTile(m, d, oceanPlacement, board.TileOcean)
}

// oceans asks for up to n ocean positions, simulating each on a local copy
// of the field so later picks see earlier ones.
func oceans(n int) ClientHook {
	return func(ctx context.Context, v View, q Queries) (Decision, error) {
		want := min(n, v.OceansLeft())
		f := *v.Field()
		var d Decision
		for i := 0; i < want; i++ {
			pos, err := q.PlaceTile(ctx, "ocean", board.StandardOcean(&f))
			if err != nil {
				return Decision{}, err
			}
			if !board.Valid(pos) {
				return Decision{}, playerr.CardPlay("bad ocean position %d", pos)
			}
			f[pos] = board.Ocean()
			d.Positions = append(d.Positions, pos)
		}
		return d, nil
	}
}

func placeOceans(n int) ServerHook {
	return func(m Mutator, d Decision) error {
		want := min(n, m.View().OceansLeft())
		if len(d.Positions) != want {
			return playerr.CardPlay("expected %d ocean positions, got %d", want, len(d.Positions))
		}
		for _, pos := range d.Positions {
			if err := placeTile(m, Decision{Pos: Int(pos)}, oceanPlacement, board.TileOcean); err != nil {
				return err
			}
		}
		return nil
	}
}

// chainClient runs client hooks in order and merges their decisions.
func chainClient(hooks ...ClientHook) ClientHook {
	return func(ctx context.Context, v View, q Queries) (Decision, error) {
		var out Decision
		for _, h := range hooks {
			d, err := h(ctx, v, q)
			if err != nil {
				return Decision{}, err
			}
			out = out.merge(d)
		}
		return out, nil
	}
}

func (d Decision) merge(o Decision) Decision {
	if o.Pos != nil {
		d.Pos = o.Pos
	}
	if len(o.Positions) > 0 {
		d.Positions = o.Positions
	}
	if o.Player != nil {
		d.Player = o.Player
	}
	if o.Choice != "" {
		d.Choice = o.Choice
	}
	if o.Card != nil {
		d.Card = o.Card
	}
	if o.MicrobeCard != nil {
		d.MicrobeCard = o.MicrobeCard
	}
	if o.AnimalCard != nil {
		d.AnimalCard = o.AnimalCard
	}
	if o.Amount != nil {
		d.Amount = o.Amount
	}
	if o.Fee != nil {
		d.Fee = o.Fee
	}
	return d
}

func anyPlayer(*game.Player) bool { return true }

func selectPlayer(prompt string, eligible func(*game.Player) bool) ClientHook {
	return func(ctx context.Context, _ View, q Queries) (Decision, error) {
		idx, err := q.SelectPlayer(ctx, prompt, eligible)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Player: Int(idx)}, nil
	}
}

func chosenPlayer(m Mutator, d Decision) (int, error) {
	if d.Player == nil || m.View().Doc.Player(*d.Player) == nil {
		return 0, playerr.CardPlay("a player must be selected")
	}
	return *d.Player, nil
}

// removePlants lets the player strip up to n plants from anyone.
func removePlants(n int) (ClientHook, ServerHook) {
	return selectPlayer("remove plants from", anyPlayer),
		func(m Mutator, d Decision) error {
			player, err := chosenPlayer(m, d)
			if err != nil {
				return err
			}
			m.Remove(player, economy.Plants, n)
			return nil
		}
}

func canLoseProduction(r economy.Resource, n int) func(*game.Player) bool {
	return func(p *game.Player) bool {
		return p.Resources.Production(r)-n >= ProductionFloor(r)
	}
}

// reduceAnyProduction wires a play that lowers some player's production of r by n.
func reduceAnyProduction(p *Project, r economy.Resource, n int) {
	eligible := canLoseProduction(r, n)
	p.CanPlay = allOf(p.CanPlay, func(v View) bool {
		for i := range v.Doc.Players {
			if eligible(&v.Doc.Players[i]) {
				return true
			}
		}
		return false
	})
	p.PlayClient = selectPlayer("reduce "+string(r)+" production of", eligible)
	p.PlayServer = func(m Mutator, d Decision) error {
		player, err := chosenPlayer(m, d)
		if err != nil {
			return err
		}
		return m.ReduceProduction(player, r, n)
	}
}

// ownCards lists the acting player's board cards carrying label, except skip.
func ownCards(v View, label catalogs.Label, skip int) []game.BoardCard {
	var out []game.BoardCard
	for _, bc := range v.Self().Board {
		if bc.Project != skip && v.Def(bc.Project).HasLabel(label) {
			out = append(out, bc)
		}
	}
	return out
}

func hasOwnCard(label catalogs.Label, skip int) Check {
	return func(v View) bool { return len(ownCards(v, label, skip)) > 0 }
}

func selectOwnCard(ctx context.Context, v View, q Queries, prompt string, label catalogs.Label, skip int) (int, error) {
	return q.SelectBoardCard(ctx, prompt, false, func(bc game.BoardCard) bool {
		return bc.Project != skip && v.Self().Card(bc.Project) != nil && v.Def(bc.Project).HasLabel(label)
	})
}

// addToOwnCard validates that card is on the acting player's board with label
// and adds n of r to it.
func addToOwnCard(m Mutator, card *int, label catalogs.Label, r economy.CardResource, n int) error {
	if card == nil {
		return playerr.CardPlay("a card must be selected")
	}
	v := m.View()
	if v.Self().Card(*card) == nil {
		return playerr.CardPlay("project %d is not on your board", *card)
	}
	if !v.Def(*card).HasLabel(label) {
		return playerr.CardPlay("can't place %s on project %d", r, *card)
	}
	return m.AddCardResource(*card, r, n)
}

func vpPer(r economy.CardResource, div int) func(View, *game.BoardCard) int {
	return func(_ View, self *game.BoardCard) int {
		if self == nil {
			return 0
		}
		return self.Res.Get(r) / div
	}
}

func vpPerLabel(l catalogs.Label) func(View, *game.BoardCard) int {
	return func(v View, _ *game.BoardCard) int { return v.Self().Label(l) }
}

// addSelf puts n of r on the acting card itself.
func addSelf(project int, r economy.CardResource, n int) ServerHook {
	return func(m Mutator, _ Decision) error { return m.AddCardResource(project, r, n) }
}

// microbeSwap is the action of cards that either grow microbes or spend cost
// of them on a reward.
func microbeSwap(p *Project, cost int, alt string, reward func(m Mutator)) {
	id := p.Def.ID
	p.DoActionClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
		bc := v.Self().Card(id)
		if bc == nil || bc.Res.Get(economy.Microbes) < cost {
			return Decision{Choice: "add"}, nil
		}
		c, err := q.MakeChoice(ctx, []Choice{
			{Result: "add", Text: "add 1 microbe to this card"},
			{Result: alt, Text: "spend microbes from this card"},
		})
		return Decision{Choice: c}, err
	}
	p.DoActionServer = func(m Mutator, d Decision) error {
		switch d.Choice {
		case "add":
			return m.AddCardResource(id, economy.Microbes, 1)
		case alt:
			if err := m.TakeCardResource(id, economy.Microbes, cost); err != nil {
				return err
			}
			reward(m)
			return nil
		}
		return playerr.CardPlay("unknown choice %q", d.Choice)
	}
}

// takeFromAnyCard is the predator action: move one r from another card to this one.
func takeFromAnyCard(p *Project, r economy.CardResource) {
	id := p.Def.ID
	eligible := func(v View) func(game.BoardCard) bool {
		return func(bc game.BoardCard) bool {
			def := v.Def(bc.Project)
			return bc.Project != id && bc.Res.Get(r) > 0 && !def.DisallowResourceDecrease
		}
	}
	p.CanDoAction = func(v View) bool {
		ok := eligible(v)
		for _, pl := range v.Doc.Players {
			for _, bc := range pl.Board {
				if ok(bc) {
					return true
				}
			}
		}
		return false
	}
	p.DoActionClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
		card, err := q.SelectBoardCard(ctx, "take "+string(r)+" from", true, eligible(v))
		if err != nil {
			return Decision{}, err
		}
		return Decision{Card: Int(card)}, nil
	}
	p.DoActionServer = func(m Mutator, d Decision) error {
		if d.Card == nil || *d.Card == id {
			return playerr.CardPlay("another card must be selected")
		}
		if err := m.TakeCardResource(*d.Card, r, 1); err != nil {
			return err
		}
		return m.AddCardResource(id, r, 1)
	}
}

// spendFor is an action paying n of r for a reward.
func spendFor(p *Project, r economy.Resource, n int, reward func(m Mutator)) {
	p.CanDoAction = func(v View) bool { return v.Stock().Count(r) >= n }
	p.DoActionServer = func(m Mutator, _ Decision) error {
		if err := m.Spend(m.Me(), r, n); err != nil {
			return playerr.CardPlay("not enough %s", r)
		}
		reward(m)
		return nil
	}
}

// oceanForFee is an action paying price in the given currencies for an ocean.
func oceanForFee(p *Project, price int, rates func(v View) economy.Rates) {
	p.CanDoAction = func(v View) bool {
		return v.OceansLeft() > 0 && economy.Potential(v.Stock(), rates(v)) >= price
	}
	p.DoActionClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
		fee, err := q.DistributeResources(ctx, price, rates(v))
		if err != nil {
			return Decision{}, err
		}
		d, err := askTile(ctx, q, "ocean", oceanPlacement(v))
		d.Fee = fee
		return d, err
	}
	p.DoActionServer = func(m Mutator, d Decision) error {
		if m.View().OceansLeft() == 0 {
			return playerr.CardPlay("no oceans left")
		}
		if d.Pos == nil || !oceanPlacement(m.View())(*d.Pos) {
			return playerr.CardPlay("bad ocean position")
		}
		if err := m.Pay(price, d.Fee, rates(m.View())); err != nil {
			return err
		}
		return placeTile(m, d, oceanPlacement, board.TileOcean)
	}
}

func isCity(t board.Tile) bool { return t.Kind.IsCity() }
