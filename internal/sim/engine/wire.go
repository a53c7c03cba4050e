package engine

import (
	"encoding/json"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
)

// FromRequest turns an ACT payload into player's action. Only the shape is
// checked here; Apply validates it against the game.
func FromRequest(player int, req protocol.ActionReq) (Action, error) {
	a := Action{
		Intent: Intent{
			Kind:            Kind(req.Kind),
			Player:          player,
			Project:         req.Project,
			StandardProject: req.StandardProject,
			Milestone:       game.Milestone(req.Milestone),
			Award:           game.Award(req.Award),
		},
		Pos:  req.Pos,
		Sell: req.Sell,
	}
	if _, ok := applyDispatch[a.Kind]; !ok {
		return Action{}, playerr.Newf(protocol.ErrBadRequest, "unknown action kind %q", req.Kind)
	}
	if len(req.Fee) > 0 {
		a.Fee = economy.Fee{}
		for name, n := range req.Fee {
			r := economy.Resource(name)
			if !r.Valid() || n < 0 {
				return Action{}, playerr.Newf(protocol.ErrBadRequest, "bad fee entry %s=%d", name, n)
			}
			a.Fee[r] = n
		}
	}
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if err := json.Unmarshal(req.Data, &a.Decision); err != nil {
			return Action{}, playerr.Newf(protocol.ErrBadRequest, "bad decision data: %v", err)
		}
	}
	return a, nil
}

// Request is the ACT payload for a.
func (a Action) Request() (protocol.ActionReq, error) {
	req := protocol.ActionReq{
		Kind:            string(a.Kind),
		Project:         a.Project,
		StandardProject: a.StandardProject,
		Pos:             a.Pos,
		Sell:            a.Sell,
		Milestone:       string(a.Milestone),
		Award:           string(a.Award),
	}
	if len(a.Fee) > 0 {
		req.Fee = map[string]int{}
		for r, n := range a.Fee {
			req.Fee[string(r)] = n
		}
	}
	data, err := json.Marshal(a.Decision)
	if err != nil {
		return req, err
	}
	req.Data = data
	return req, nil
}
