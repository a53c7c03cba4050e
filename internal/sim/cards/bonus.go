package cards

import (
	"context"
	"fmt"

	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/playerr"
)

// bonus is a "pick one" reward: plants for the player, or microbes or
// animals on one of their cards. Zero amounts are not offered.
type bonus struct {
	plants, microbes, animals int
	// skip is a card that may not receive the resources.
	skip int
}

func (b bonus) client(ctx context.Context, v View, q Queries) (Decision, error) {
	var choices []Choice
	if b.plants > 0 {
		choices = append(choices, Choice{Result: "plants", Text: fmt.Sprintf("gain %d plants", b.plants)})
	}
	if b.microbes > 0 && hasOwnCard(catalogs.LabelMicrobes, b.skip)(v) {
		choices = append(choices, Choice{Result: "microbes", Text: fmt.Sprintf("add %d microbes to a card", b.microbes)})
	}
	if b.animals > 0 && hasOwnCard(catalogs.LabelAnimals, b.skip)(v) {
		choices = append(choices, Choice{Result: "animals", Text: fmt.Sprintf("add %d animals to a card", b.animals)})
	}
	c, err := q.MakeChoice(ctx, choices)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Choice: c}
	var label catalogs.Label
	switch c {
	case "microbes":
		label = catalogs.LabelMicrobes
	case "animals":
		label = catalogs.LabelAnimals
	default:
		return d, nil
	}
	card, err := selectOwnCard(ctx, v, q, "add "+c+" to", label, b.skip)
	if err != nil {
		return Decision{}, err
	}
	d.Card = Int(card)
	return d, nil
}

func (b bonus) server(m Mutator, d Decision) error {
	if d.Card != nil && *d.Card == b.skip {
		return playerr.CardPlay("can't target this card")
	}
	switch {
	case d.Choice == "plants" && b.plants > 0:
		m.Gain(m.Me(), economy.Plants, b.plants)
		return nil
	case d.Choice == "microbes" && b.microbes > 0:
		return addToOwnCard(m, d.Card, catalogs.LabelMicrobes, economy.Microbes, b.microbes)
	case d.Choice == "animals" && b.animals > 0:
		return addToOwnCard(m, d.Card, catalogs.LabelAnimals, economy.Animals, b.animals)
	}
	return playerr.CardPlay("unknown choice %q", d.Choice)
}
