package cards

import (
	"context"

	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

const (
	MiningGuild = iota
	Inventrix
	Thorgate
	Phobolog
	Tharsis
	InterplanetaryCinematics
	Ecoline
	UNMI
	Helion
	Credicor
)

var corpHooks = map[int]func(c *Corp){
	MiningGuild: func(c *Corp) {
		c.OnPlaceTile = func(m Mutator, owner int, _ *game.BoardCard, ev TileEvent) {
			if board.Cell(ev.Pos).HasReward(board.RewardSteel, board.RewardTitanium) {
				m.AddProduction(owner, economy.Steel, 1)
			}
		}
	},

	Inventrix: func(c *Corp) {
		c.ModifyGlobalRequirements = func(req catalogs.Requirements) catalogs.Requirements { return req.Relaxed(2) }
		c.Action = &CorpAction{
			FirstAction: true,
			Server: func(m Mutator, _ Decision) error {
				m.DrawToHand(3)
				return nil
			},
		}
	},

	Thorgate: func(c *Corp) {
		c.ModifyProjectCost = func(cost int, target catalogs.ProjectDef) int {
			if target.HasLabel(catalogs.LabelEnergy) {
				return cost - 3
			}
			return cost
		}
	},

	Phobolog: func(c *Corp) { c.TitaniumRate = economy.PhobologTitanium },

	Tharsis: func(c *Corp) {
		c.OnPlaceTile = func(m Mutator, owner int, _ *game.BoardCard, ev TileEvent) {
			if ev.Tile.Kind != board.TileCity {
				return
			}
			m.AddProduction(owner, economy.Credits, 1)
			if ev.Tile.Owner == owner {
				m.Gain(owner, economy.Credits, 3)
			}
		}
		c.Action = &CorpAction{
			FirstAction: true,
			CanDo:       func(v View) bool { return board.Any(cityPlacement(v)) },
			Client: func(ctx context.Context, v View, q Queries) (Decision, error) {
				return askTile(ctx, q, "city", cityPlacement(v))
			},
			Server: func(m Mutator, d Decision) error {
				return placeTile(m, d, cityPlacement, board.TileCity)
			},
		}
	},

	InterplanetaryCinematics: func(c *Corp) {
		c.OnPlayProjectCard = func(m Mutator, owner int, _ *game.BoardCard, ev PlayEvent) {
			if ev.Player == owner && m.View().Def(ev.Project).Type == catalogs.TypeEvent {
				m.Gain(owner, economy.Credits, 2)
			}
		}
	},

	Ecoline: func(c *Corp) { c.PlantConversion = 7 },

	// UNMI may buy 1 TR for 3 credits once per generation, after raising TR
	// some other way that generation.
	UNMI: func(c *Corp) {
		c.Action = &CorpAction{
			CanDo: func(v View) bool {
				me := v.Self()
				return me.TRGain > 0 && me.CorpActionGen != v.Doc.Generation && me.Resources.Count(economy.Credits) >= 3
			},
			Server: func(m Mutator, _ Decision) error {
				if m.View().Self().TRGain == 0 {
					return playerr.CardPlay("no TR gained this generation")
				}
				if err := m.Spend(m.Me(), economy.Credits, 3); err != nil {
					return playerr.CardPlay("not enough credits")
				}
				m.GainTR(1)
				return nil
			},
		}
	},

	Helion: func(c *Corp) { c.HeatAsCredits = true },

	Credicor: func(c *Corp) {
		c.OnPlayProjectCard = func(m Mutator, owner int, _ *game.BoardCard, ev PlayEvent) {
			if ev.Player == owner && m.View().Def(ev.Project).Cost >= 20 {
				m.Gain(owner, economy.Credits, 4)
			}
		}
	},
}
