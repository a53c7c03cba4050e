package engine

import (
	"context"
	"fmt"
	"strconv"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// StandardProjectName is the display name of a standard project.
func StandardProjectName(sp int) string {
	switch sp {
	case SellPatents:
		return "sell patents"
	case PowerPlant:
		return "power plant"
	case AsteroidProject:
		return "asteroid"
	case HeatConversion:
		return "heat conversion"
	case Aquifer:
		return "aquifer"
	case GreeneryProject:
		return "greenery"
	case CityProject:
		return "city"
	case PlantConversion:
		return "plant conversion"
	}
	return fmt.Sprintf("standard project %d", sp)
}

func (e *Engine) applyStandardProject(m *mutator, a Action) error {
	doc := m.doc
	me := a.Player
	prices := e.tun.StandardProjects
	pay := func(r economy.Resource, n int) error { return m.Spend(me, r, n) }

	switch a.StandardProject {
	case SellPatents:
		if len(a.Sell) == 0 {
			return playerr.CardPlay("no projects to sell")
		}
		p := doc.Player(me)
		for _, id := range a.Sell {
			if !p.RemoveFromHand(id) {
				return playerr.CardPlay("project %d is not in hand", id)
			}
		}
		m.Discard(a.Sell...)
		m.Gain(me, economy.Credits, len(a.Sell))
		return nil

	case PowerPlant:
		if err := pay(economy.Credits, prices.PowerPlant); err != nil {
			return err
		}
		m.AddProduction(me, economy.Energy, 1)
		return nil

	case AsteroidProject:
		if err := pay(economy.Credits, prices.Asteroid); err != nil {
			return err
		}
		m.IncreaseGlobal(catalogs.ParamTemperature, 1)
		return nil

	case HeatConversion:
		if err := pay(economy.Heat, e.tun.HeatConversion); err != nil {
			return err
		}
		m.IncreaseGlobal(catalogs.ParamTemperature, 1)
		return nil

	case Aquifer:
		legal := e.oceanPredicate(doc)
		if err := pay(economy.Credits, prices.Aquifer); err != nil {
			return err
		}
		return m.placeChecked(a.Pos, legal, board.Ocean())

	case GreeneryProject:
		legal := board.StandardGreenery(&doc.Field, me)
		if err := pay(economy.Credits, prices.Greenery); err != nil {
			return err
		}
		return m.placeChecked(a.Pos, legal, board.Owned(board.TileGreenery, me))

	case CityProject:
		legal := board.StandardCity(&doc.Field)
		if err := pay(economy.Credits, prices.City); err != nil {
			return err
		}
		if err := m.placeChecked(a.Pos, legal, board.Owned(board.TileCity, me)); err != nil {
			return err
		}
		m.AddProduction(me, economy.Credits, 1)
		return nil

	case PlantConversion:
		legal := board.StandardGreenery(&doc.Field, me)
		if err := pay(economy.Plants, e.plantConversion(doc, me)); err != nil {
			return err
		}
		return m.placeChecked(a.Pos, legal, board.Owned(board.TileGreenery, me))
	}
	return playerr.Newf(protocol.ErrBadRequest, "unknown standard project %d", a.StandardProject)
}

func (e *Engine) decideStandard(ctx context.Context, doc *game.Document, a *Action, q cards.Queries) error {
	me := a.Player
	var legal board.Predicate
	name := ""
	switch a.StandardProject {
	case SellPatents:
		sell, err := chooseToSell(ctx, doc.Player(me).Hand, q)
		a.Sell = sell
		return err
	case Aquifer:
		legal, name = e.oceanPredicate(doc), "ocean"
	case GreeneryProject, PlantConversion:
		legal, name = board.StandardGreenery(&doc.Field, me), "greenery"
	case CityProject:
		legal, name = board.StandardCity(&doc.Field), "city"
	default:
		return nil
	}
	pos, err := q.PlaceTile(ctx, name, legal)
	if err != nil {
		return err
	}
	a.Pos = cards.Int(pos)
	return nil
}

// chooseToSell asks for hand projects one at a time until "done".
func chooseToSell(ctx context.Context, hand []int, q cards.Queries) ([]int, error) {
	var sell []int
	picked := map[int]bool{}
	for len(sell) < len(hand) {
		var choices []cards.Choice
		if len(sell) > 0 {
			choices = append(choices, cards.Choice{Result: "done", Text: "stop selling"})
		}
		for _, id := range hand {
			if !picked[id] {
				choices = append(choices, cards.Choice{Result: strconv.Itoa(id), Text: fmt.Sprintf("sell project %d", id)})
			}
		}
		c, err := q.MakeChoice(ctx, choices)
		if err != nil {
			return nil, err
		}
		if c == "done" {
			break
		}
		id, err := strconv.Atoi(c)
		if err != nil || picked[id] {
			return nil, playerr.CardPlay("bad choice %q", c)
		}
		picked[id] = true
		sell = append(sell, id)
	}
	return sell, nil
}
