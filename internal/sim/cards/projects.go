package cards

import (
	"context"

	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// projectHooks holds the hand-written behavior of projects whose catalogue
// entry alone can't express them. Declarative effects and gates from the
// catalogue are compiled on top by the registry.
var projectHooks = map[int]func(p *Project){
	// Cloud Seeding
	4: func(p *Project) { reduceAnyProduction(p, economy.Heat, 1) },

	// Search For Life
	5: func(p *Project) {
		p.CanDoAction = func(v View) bool { return v.Stock().Count(economy.Credits) >= 1 }
		p.DoActionServer = func(m Mutator, _ Decision) error {
			if err := m.Spend(m.Me(), economy.Credits, 1); err != nil {
				return playerr.CardPlay("not enough credits")
			}
			for _, id := range m.DeckPop(1) {
				if m.View().Def(id).HasLabel(catalogs.LabelMicrobes) {
					if err := m.AddCardResource(5, economy.Science, 1); err != nil {
						return err
					}
				}
				m.Discard(id)
			}
			return nil
		}
		p.VP = func(_ View, self *game.BoardCard) int {
			if self != nil && self.Res.Get(economy.Science) > 0 {
				return 3
			}
			return 0
		}
	},

	// Martian Rails
	7: func(p *Project) {
		spendFor(p, economy.Energy, 1, func(m Mutator) {
			m.Gain(m.Me(), economy.Credits, m.View().Field().CitiesOnMars())
		})
	},

	// Capital
	8: func(p *Project) {
		tileProject(p, board.TileCapital, cityPlacement)
		p.VP = func(v View, _ *game.BoardCard) int {
			f := v.Field()
			for pos := 0; pos < board.Size; pos++ {
				if f[pos].Kind == board.TileCapital && f[pos].OwnedBy(v.Me) {
					return f.AdjacentKind(pos, board.TileOcean)
				}
			}
			return 0
		}
	},

	9:  func(p *Project) { p.PlayClient, p.PlayServer = removePlants(3) },
	11: func(p *Project) { p.PlayClient, p.PlayServer = removePlants(4) },
	39: func(p *Project) { p.PlayClient, p.PlayServer = removePlants(8) },
	63: func(p *Project) { p.PlayClient, p.PlayServer = removePlants(2) },

	// Comet
	10: func(p *Project) {
		c, s := removePlants(3)
		p.PlayClient = chainClient(optionalOcean, c)
		p.PlayServer = chainServer(placeOptionalOcean, s)
	},

	// Giant Ice Asteroid
	80: func(p *Project) {
		c, s := removePlants(6)
		p.PlayClient = chainClient(oceans(2), c)
		p.PlayServer = chainServer(placeOceans(2), s)
	},

	53: twoOceans,
	78: twoOceans,

	// Water Import From Europa
	12: func(p *Project) {
		oceanForFee(p, 12, func(v View) economy.Rates {
			return economy.Rates{economy.Credits: 1, economy.Titanium: v.Reg.TitaniumRate(v.Doc, v.Me)}
		})
		p.VP = vpPerLabel(catalogs.LabelJupiter)
	},

	// Aquifer Pumping
	187: func(p *Project) {
		oceanForFee(p, 8, func(View) economy.Rates {
			return economy.Rates{economy.Credits: 1, economy.Steel: economy.SteelRate}
		})
	},

	16:  city,
	29:  city,
	32:  city,
	108: city,
	17:  func(p *Project) { tileProject(p, board.TileCity, fixedCell(board.NoctisCity)) },
	21:  func(p *Project) { tileProject(p, board.TileCity, fixedCell(board.PhobosSpaceHaven)) },
	81: func(p *Project) {
		tileProject(p, board.TileCity, fixedCell(board.GanymedeColony))
		p.VP = vpPerLabel(catalogs.LabelJupiter)
	},
	120: func(p *Project) {
		tileProject(p, board.TileCity, func(v View) board.Predicate {
			return board.NextTo(v.Field(), 2, board.TileCity, board.TileCapital)
		})
	},

	// Imported Hydrogen
	19: func(p *Project) {
		b := bonus{plants: 3, microbes: 3, animals: 2}
		p.PlayClient = chainClient(optionalOcean, b.client)
		p.PlayServer = chainServer(placeOptionalOcean, b.server)
	},

	// Research Outpost
	20: func(p *Project) {
		p.ModifyProjectCost = func(cost int, _ catalogs.ProjectDef) int { return cost - 1 }
		tileProject(p, board.TileCity, func(v View) board.Predicate { return board.Isolated(v.Field()) })
	},

	// Natural Preserve
	44: func(p *Project) {
		tileProject(p, board.TilePreserve, func(v View) board.Predicate { return board.Isolated(v.Field()) })
	},

	22:  oceanOnly,
	75:  oceanOnly,
	127: oceanOnly,
	181: oceanOnly,
	191: oceanOnly,

	// Arctic Algae
	23: func(p *Project) {
		p.OnPlaceTile = func(m Mutator, owner int, _ *game.BoardCard, ev TileEvent) {
			if ev.Tile.Kind == board.TileOcean {
				m.Gain(owner, economy.Plants, 2)
			}
		}
	},

	// Predators
	24: func(p *Project) {
		takeFromAnyCard(p, economy.Animals)
		p.VP = vpPer(economy.Animals, 1)
	},

	// Ants
	35: func(p *Project) {
		takeFromAnyCard(p, economy.Microbes)
		p.VP = vpPer(economy.Microbes, 2)
	},

	// Eos Chasma National Park
	26: func(p *Project) {
		p.CanPlay = hasOwnCard(catalogs.LabelAnimals, 26)
		p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			card, err := selectOwnCard(ctx, v, q, "add 1 animal to", catalogs.LabelAnimals, 26)
			if err != nil {
				return Decision{}, err
			}
			return Decision{Card: Int(card)}, nil
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			return addToOwnCard(m, d.Card, catalogs.LabelAnimals, economy.Animals, 1)
		}
	},

	// Optimal Aerobraking
	31: func(p *Project) {
		p.OnPlayProjectCard = func(m Mutator, owner int, _ *game.BoardCard, ev PlayEvent) {
			def := m.View().Def(ev.Project)
			if ev.Player == owner && def.Type == catalogs.TypeEvent && def.HasLabel(catalogs.LabelSpace) {
				m.Gain(owner, economy.Credits, 3)
				m.Gain(owner, economy.Heat, 3)
			}
		}
	},

	// Regolith Eaters
	33: func(p *Project) {
		microbeSwap(p, 2, "oxygen", func(m Mutator) { m.IncreaseGlobal(catalogs.ParamOxygen, 1) })
	},

	// GHG Producing Bacteria
	34: func(p *Project) {
		microbeSwap(p, 2, "temperature", func(m Mutator) { m.IncreaseGlobal(catalogs.ParamTemperature, 1) })
	},

	// Nitrite Reducing Bacteria
	157: func(p *Project) {
		microbeSwap(p, 3, "tr", func(m Mutator) { m.GainTR(1) })
	},

	// Nitrogen-Rich Asteroid
	37: func(p *Project) {
		p.PlayServer = func(m Mutator, _ Decision) error {
			n := 1
			if m.View().Self().Label(catalogs.LabelPlants) >= 3 {
				n = 4
			}
			m.AddProduction(m.Me(), economy.Plants, n)
			return nil
		}
	},

	// Rover Construction
	38: func(p *Project) {
		p.OnPlaceTile = func(m Mutator, owner int, _ *game.BoardCard, ev TileEvent) {
			if isCity(ev.Tile) {
				m.Gain(owner, economy.Credits, 2)
			}
		}
	},

	52:  func(p *Project) { grazer(p, 1, 1) },
	54:  func(p *Project) { grazer(p, 1, 2) },
	72:  func(p *Project) { grazer(p, 2, 1) },
	// Livestock
	184: func(p *Project) {
		p.DoActionServer = addSelf(184, economy.Animals, 1)
		p.VP = vpPer(economy.Animals, 1)
	},

	// Mangrove, Protected Valley
	59:  func(p *Project) { tileProject(p, board.TileGreenery, onOceanCell) },
	174: func(p *Project) { tileProject(p, board.TileGreenery, onOceanCell) },
	193: func(p *Project) { tileProject(p, board.TileGreenery, greeneryPlacement) },

	// Mining Rights
	67: func(p *Project) {
		legal := func(v View) board.Predicate {
			return board.WithReward(v.Field(), board.RewardSteel, board.RewardTitanium)
		}
		tileProject(p, board.TileMining, legal)
		place := p.PlayServer
		p.PlayServer = func(m Mutator, d Decision) error {
			if err := place(m, d); err != nil {
				return err
			}
			r := economy.Titanium
			if board.Cell(*d.Pos).HasReward(board.RewardSteel) {
				r = economy.Steel
			}
			m.AddProduction(m.Me(), r, 1)
			return nil
		}
	},

	// Space Mirrors
	76: func(p *Project) {
		spendFor(p, economy.Credits, 7, func(m Mutator) { m.AddProduction(m.Me(), economy.Energy, 1) })
	},
	// Underground Detonations
	202: func(p *Project) {
		spendFor(p, economy.Credits, 10, func(m Mutator) { m.AddProduction(m.Me(), economy.Heat, 2) })
	},
	// Water Splitting Plant
	177: func(p *Project) {
		spendFor(p, economy.Energy, 3, func(m Mutator) { m.IncreaseGlobal(catalogs.ParamOxygen, 1) })
	},
	101: func(p *Project) { smelter(p, economy.Steel, 1) },
	103: func(p *Project) { smelter(p, economy.Steel, 2) },
	104: func(p *Project) { smelter(p, economy.Titanium, 1) },

	// Greenhouses
	96: func(p *Project) {
		p.PlayServer = func(m Mutator, _ Decision) error {
			m.Gain(m.Me(), economy.Plants, m.View().Field().Cities())
			return nil
		}
	},

	97: func(p *Project) {
		tileProject(p, board.TileNuclear, func(v View) board.Predicate { return board.Land(v.Field()) })
	},

	102: productionPerLabel(economy.Energy, catalogs.LabelEnergy, 1),
	148: productionPerLabel(economy.Plants, catalogs.LabelPlants, 1),
	130: productionPerLabel(economy.Plants, catalogs.LabelMicrobes, 2),

	// Artificial Photosynthesis
	115: func(p *Project) {
		p.PlayClient = func(ctx context.Context, _ View, q Queries) (Decision, error) {
			c, err := q.MakeChoice(ctx, []Choice{
				{Result: "plants", Text: "increase plants production by 1"},
				{Result: "energy", Text: "increase energy production by 2"},
			})
			return Decision{Choice: c}, err
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			switch d.Choice {
			case "plants":
				m.AddProduction(m.Me(), economy.Plants, 1)
			case "energy":
				m.AddProduction(m.Me(), economy.Energy, 2)
			default:
				return playerr.CardPlay("unknown choice %q", d.Choice)
			}
			return nil
		}
	},

	// Artificial Lake
	116: func(p *Project) {
		legal := func(v View) board.Predicate {
			if v.OceansLeft() == 0 {
				return func(int) bool { return false }
			}
			return board.Land(v.Field())
		}
		p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			if v.OceansLeft() == 0 {
				return Decision{}, nil
			}
			return askTile(ctx, q, "ocean", legal(v))
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			if m.View().OceansLeft() == 0 {
				return nil
			}
			return placeTile(m, d, legal, board.TileOcean)
		}
	},

	// Ecological Zone
	128: func(p *Project) {
		tileProject(p, board.TileEcological, func(v View) board.Predicate {
			return board.NextTo(v.Field(), 1, board.TileGreenery)
		})
		p.CanPlay = allOf(p.CanPlay, func(v View) bool {
			return v.Field().CountOwned(v.Me, board.TileGreenery) > 0
		})
		p.OnPlayProjectCard = func(m Mutator, owner int, _ *game.BoardCard, ev PlayEvent) {
			if ev.Player != owner || ev.Project == 128 {
				return
			}
			n := labelCount(m.View().Def(ev.Project), catalogs.LabelPlants, catalogs.LabelAnimals)
			if n > 0 {
				_ = m.AddCardResource(128, economy.Animals, n)
			}
		}
		p.VP = vpPer(economy.Animals, 2)
	},

	// Zeppelins
	129: func(p *Project) {
		p.PlayServer = func(m Mutator, _ Decision) error {
			m.AddProduction(m.Me(), economy.Credits, m.View().Field().CitiesOnMars())
			return nil
		}
	},

	// Decomposers
	131: func(p *Project) {
		p.OnPlayProjectCard = func(m Mutator, owner int, _ *game.BoardCard, ev PlayEvent) {
			if ev.Player != owner {
				return
			}
			n := labelCount(m.View().Def(ev.Project), catalogs.LabelAnimals, catalogs.LabelPlants, catalogs.LabelMicrobes)
			if n > 0 {
				_ = m.AddCardResource(131, economy.Microbes, n)
			}
		}
		p.VP = vpPer(economy.Microbes, 3)
	},

	// Symbiotic Fungus
	133: func(p *Project) {
		p.CanDoAction = hasOwnCard(catalogs.LabelMicrobes, 133)
		p.DoActionClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			card, err := selectOwnCard(ctx, v, q, "add 1 microbe to", catalogs.LabelMicrobes, 133)
			if err != nil {
				return Decision{}, err
			}
			return Decision{Card: Int(card)}, nil
		}
		p.DoActionServer = func(m Mutator, d Decision) error {
			if d.Card != nil && *d.Card == 133 {
				return playerr.CardPlay("can't target this card")
			}
			return addToOwnCard(m, d.Card, catalogs.LabelMicrobes, economy.Microbes, 1)
		}
	},

	// Extreme-Cold Fungus
	134: func(p *Project) {
		b := bonus{plants: 1, microbes: 2, skip: 134}
		p.DoActionClient, p.DoActionServer = b.client, b.server
	},

	// Lava Flows
	140: func(p *Project) {
		tileProject(p, board.TileLava, func(v View) board.Predicate {
			return board.AnyOf(v.Field(), board.Volcanic...)
		})
	},

	142: func(p *Project) { tileProject(p, board.TileMohole, onOceanCell) },

	// Large Convoy
	143: func(p *Project) {
		b := bonus{plants: 5, animals: 4}
		p.PlayClient = chainClient(optionalOcean, b.client)
		p.PlayServer = chainServer(placeOptionalOcean, b.server, draw(2))
	},

	// Convoy From Europa
	161: func(p *Project) {
		p.PlayClient = optionalOcean
		p.PlayServer = chainServer(placeOptionalOcean, draw(1))
	},

	// Herbivores
	147: func(p *Project) {
		reduceAnyProduction(p, economy.Plants, 1)
		p.OnPlaceTile = func(m Mutator, owner int, _ *game.BoardCard, ev TileEvent) {
			if ev.Tile.Kind == board.TileGreenery && ev.Tile.Owner == owner {
				_ = m.AddCardResource(147, economy.Animals, 1)
			}
		}
		p.VP = vpPer(economy.Animals, 2)
	},

	// Insulation
	152: func(p *Project) {
		p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			n, err := q.NumberInRange(ctx, "heat production to convert", 1, v.Stock().Production(economy.Heat))
			if err != nil {
				return Decision{}, err
			}
			return Decision{Amount: Int(n)}, nil
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			if d.Amount == nil || *d.Amount < 1 {
				return playerr.CardPlay("amount must be at least 1")
			}
			if err := m.ReduceProduction(m.Me(), economy.Heat, *d.Amount); err != nil {
				return err
			}
			m.AddProduction(m.Me(), economy.Credits, *d.Amount)
			return nil
		}
	},

	// Adaptation Technology
	153: func(p *Project) {
		p.ModifyGlobalRequirements = func(req catalogs.Requirements) catalogs.Requirements { return req.Relaxed(2) }
	},

	// Imported Nitrogen
	163: func(p *Project) {
		p.CanPlay = allOf(hasOwnCard(catalogs.LabelMicrobes, 0), hasOwnCard(catalogs.LabelAnimals, 0))
		p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			mc, err := selectOwnCard(ctx, v, q, "add 3 microbes to", catalogs.LabelMicrobes, 0)
			if err != nil {
				return Decision{}, err
			}
			ac, err := selectOwnCard(ctx, v, q, "add 2 animals to", catalogs.LabelAnimals, 0)
			if err != nil {
				return Decision{}, err
			}
			return Decision{MicrobeCard: Int(mc), AnimalCard: Int(ac)}, nil
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			if err := addToOwnCard(m, d.MicrobeCard, catalogs.LabelMicrobes, economy.Microbes, 3); err != nil {
				return err
			}
			return addToOwnCard(m, d.AnimalCard, catalogs.LabelAnimals, economy.Animals, 2)
		}
	},

	// Shuttles
	166: func(p *Project) {
		p.ModifyProjectCost = func(cost int, target catalogs.ProjectDef) int {
			if target.HasLabel(catalogs.LabelSpace) {
				return cost - 2
			}
			return cost
		}
	},

	// Aerobraked Ammonia Asteroid
	170: func(p *Project) {
		p.CanPlay = hasOwnCard(catalogs.LabelMicrobes, 0)
		p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			card, err := selectOwnCard(ctx, v, q, "add 2 microbes to", catalogs.LabelMicrobes, 0)
			if err != nil {
				return Decision{}, err
			}
			return Decision{Card: Int(card)}, nil
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			return addToOwnCard(m, d.Card, catalogs.LabelMicrobes, economy.Microbes, 2)
		}
	},

	// Pets
	172: func(p *Project) {
		p.OnPlaceTile = func(m Mutator, _ int, _ *game.BoardCard, ev TileEvent) {
			if isCity(ev.Tile) {
				_ = m.AddCardResource(172, economy.Animals, 1)
			}
		}
		p.VP = vpPer(economy.Animals, 2)
	},

	178: func(p *Project) { reduceAnyProduction(p, economy.Heat, 2) },
	183: func(p *Project) { reduceAnyProduction(p, economy.Plants, 1) },

	// Flooding
	188: func(p *Project) {
		p.CanPlay = func(v View) bool { return v.OceansLeft() > 0 }
		p.PlayClient = func(ctx context.Context, v View, q Queries) (Decision, error) {
			d, err := askTile(ctx, q, "ocean", oceanPlacement(v))
			if err != nil {
				return Decision{}, err
			}
			victims := floodVictims(v.Field(), *d.Pos, v.Me)
			if len(victims) == 0 {
				return d, nil
			}
			player, err := q.SelectPlayer(ctx, "make pay up to 4 credits", func(p *game.Player) bool {
				return contains(victims, p.Idx)
			})
			if err != nil {
				return Decision{}, err
			}
			d.Player = Int(player)
			return d, nil
		}
		p.PlayServer = func(m Mutator, d Decision) error {
			if m.View().OceansLeft() == 0 {
				return playerr.CardPlay("no oceans left")
			}
			if d.Pos != nil && d.Player != nil && !contains(floodVictims(m.View().Field(), *d.Pos, m.Me()), *d.Player) {
				return playerr.CardPlay("player %d has no tile next to cell %d", *d.Player, *d.Pos)
			}
			if err := placeTile(m, d, oceanPlacement, board.TileOcean); err != nil {
				return err
			}
			if d.Player != nil {
				m.Remove(*d.Player, economy.Credits, 4)
			}
			return nil
		}
	},

	// Energy Saving
	189: func(p *Project) {
		p.CanPlay = func(v View) bool { return v.Field().Cities() > 0 }
		p.PlayServer = func(m Mutator, _ Decision) error {
			m.AddProduction(m.Me(), economy.Energy, m.View().Field().Cities())
			return nil
		}
	},

	// Local Heat Trapping
	190: func(p *Project) {
		b := bonus{plants: 4, animals: 2}
		p.PlayClient = b.client
		p.PlayServer = func(m Mutator, d Decision) error {
			if err := m.Spend(m.Me(), economy.Heat, 5); err != nil {
				return playerr.CardPlay("not enough heat")
			}
			return b.server(m, d)
		}
	},

	// Immigration Shuttles
	198: func(p *Project) {
		p.VP = func(v View, _ *game.BoardCard) int { return v.Field().Cities() / 3 }
	},

	// Immigrant City
	200: func(p *Project) {
		tileProject(p, board.TileCity, cityPlacement)
		p.OnPlaceTile = func(m Mutator, owner int, _ *game.BoardCard, ev TileEvent) {
			if isCity(ev.Tile) {
				m.AddProduction(owner, economy.Credits, 1)
			}
		}
	},

	// Special Design
	206: func(p *Project) {
		p.PlayServer = func(m Mutator, _ Decision) error {
			m.SetSpecialProject()
			return nil
		}
	},
}

func city(p *Project) { tileProject(p, board.TileCity, cityPlacement) }

func oceanOnly(p *Project) {
	p.PlayClient = optionalOcean
	p.PlayServer = placeOptionalOcean
}

func twoOceans(p *Project) {
	p.PlayClient = oceans(2)
	p.PlayServer = placeOceans(2)
}

func onOceanCell(v View) board.Predicate { return board.OceanCell(v.Field()) }

func draw(n int) ServerHook {
	return func(m Mutator, _ Decision) error {
		m.DrawToHand(n)
		return nil
	}
}

// grazer is an animal card that eats into someone's plants production when
// played and grows by one animal per action.
func grazer(p *Project, eat, vpDiv int) {
	reduceAnyProduction(p, economy.Plants, eat)
	p.DoActionServer = addSelf(p.Def.ID, economy.Animals, 1)
	p.VP = vpPer(economy.Animals, vpDiv)
}

// smelter turns 4 energy into n of r and one oxygen step.
func smelter(p *Project, r economy.Resource, n int) {
	spendFor(p, economy.Energy, 4, func(m Mutator) {
		m.Gain(m.Me(), r, n)
		m.IncreaseGlobal(catalogs.ParamOxygen, 1)
	})
}

func productionPerLabel(r economy.Resource, l catalogs.Label, div int) func(*Project) {
	return func(p *Project) {
		p.PlayServer = func(m Mutator, _ Decision) error {
			if n := m.View().Self().Label(l) / div; n > 0 {
				m.AddProduction(m.Me(), r, n)
			}
			return nil
		}
	}
}

func labelCount(def catalogs.ProjectDef, labels ...catalogs.Label) int {
	n := 0
	for _, have := range def.Labels {
		for _, l := range labels {
			if have == l {
				n++
			}
		}
	}
	return n
}

// floodVictims lists other players owning a tile next to pos.
func floodVictims(f *board.Field, pos, me int) []int {
	var out []int
	for _, owner := range f.AdjacentOwners(pos) {
		if owner != me {
			out = append(out, owner)
		}
	}
	return out
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
