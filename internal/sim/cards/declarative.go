package cards

import (
	"context"

	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// compileDeclarative turns the catalogue's Effect, Gate and VP into hooks,
// running alongside any hand-written hook for the same project.
func compileDeclarative(p *Project) {
	def := p.Def
	if def.Gate != nil {
		p.CanPlay = allOf(gateCheck(*def.Gate), p.CanPlay)
	}
	if def.Effect != nil {
		p.PlayServer = chainServer(effectHook(*def.Effect), p.PlayServer)
	}
	if p.VP == nil && def.VP != 0 {
		vp := def.VP
		p.VP = func(View, *game.BoardCard) int { return vp }
	}
}

func allOf(checks ...Check) Check {
	return func(v View) bool {
		for _, c := range checks {
			if c != nil && !c(v) {
				return false
			}
		}
		return true
	}
}

func chainServer(hooks ...ServerHook) ServerHook {
	return func(m Mutator, d Decision) error {
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if err := h(m, d); err != nil {
				return err
			}
		}
		return nil
	}
}

func gateCheck(g catalogs.Gate) Check {
	return func(v View) bool {
		me := v.Self()
		for r, n := range g.MinProduction {
			if me.Resources.Production(r) < n {
				return false
			}
		}
		for r, n := range g.MinResources {
			if me.Resources.Count(r) < n {
				return false
			}
		}
		for l, n := range g.MinLabels {
			if me.Label(l) < n {
				return false
			}
		}
		return true
	}
}

func effectHook(e catalogs.Effect) ServerHook {
	return func(m Mutator, _ Decision) error {
		me := m.Me()
		for _, r := range economy.Resources {
			n := e.Production[r]
			switch {
			case n > 0:
				m.AddProduction(me, r, n)
			case n < 0:
				if err := m.ReduceProduction(me, r, -n); err != nil {
					return err
				}
			}
		}
		for _, r := range economy.Resources {
			n := e.Resources[r]
			switch {
			case n > 0:
				m.Gain(me, r, n)
			case n < 0:
				if err := m.Spend(me, r, -n); err != nil {
					return playerr.CardPlay("not enough %s", r)
				}
			}
		}
		for _, param := range []catalogs.Param{catalogs.ParamTemperature, catalogs.ParamOxygen} {
			if n := e.Raise[param]; n > 0 {
				m.IncreaseGlobal(param, n)
			}
		}
		if e.TR > 0 {
			m.GainTR(e.TR)
		}
		return nil
	}
}

// noDecision is the client hook of projects that ask nothing.
func noDecision(context.Context, View, Queries) (Decision, error) {
	return Decision{}, nil
}
