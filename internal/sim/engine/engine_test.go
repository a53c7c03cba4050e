package engine

import (
	"context"
	"testing"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
	"redplanet.games/internal/sim/tuning"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalogs.Default()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tun := tuning.Defaults()
	reg, err := cards.New(cat, cards.Options{MaxOceans: tun.MaxOceans})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return New(reg, tun)
}

func newTestGame(t *testing.T, e *Engine, corps ...int) *game.Document {
	t.Helper()
	var seats []Seat
	for _, c := range corps {
		seats = append(seats, Seat{Name: "p", Corporation: c})
	}
	doc, err := e.NewGame(Setup{ID: "g1", Players: seats, Seed: 7})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i := range doc.Players {
		doc.Players[i].FirstAction = false
		doc.Players[i].Hand = nil
		doc.Players[i].HandSize = 0
	}
	return doc
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if got := playerr.CodeOf(err); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}

func play(player, project int, fee economy.Fee) Action {
	return Action{Intent: Intent{Kind: KindPlayProject, Player: player, Project: project}, Fee: fee}
}

const solarPower = 113

func TestNewGame_Deal(t *testing.T) {
	e := newTestEngine(t)
	doc, err := e.NewGame(Setup{ID: "g", Players: []Seat{{Corporation: cards.Credicor}, {Corporation: cards.Tharsis}}, Seed: 3})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if doc.Temperature != -30 || doc.Oxygen != 0 || doc.Generation != 1 || doc.Phase != game.PhaseAction {
		t.Fatalf("bad globals: %+v", doc)
	}
	total := len(doc.Deck)
	for _, p := range doc.Players {
		if len(p.Hand) != 10 || p.TR != 20 {
			t.Fatalf("player %d: hand=%d tr=%d", p.Idx, len(p.Hand), p.TR)
		}
		total += len(p.Hand)
	}
	if total != len(e.reg.ProjectIDs()) {
		t.Fatalf("cards dealt %d, want %d", total, len(e.reg.ProjectIDs()))
	}
	if doc.Players[0].Resources.Count(economy.Credits) != 57 {
		t.Fatalf("credicor credits: %d", doc.Players[0].Resources.Count(economy.Credits))
	}
	if !doc.Players[1].FirstAction {
		t.Fatalf("tharsis must owe its first action")
	}

	again, _ := e.NewGame(Setup{ID: "g", Players: []Seat{{Corporation: cards.Credicor}, {Corporation: cards.Tharsis}}, Seed: 3})
	for i := range doc.Deck {
		if doc.Deck[i] != again.Deck[i] {
			t.Fatalf("same seed dealt different decks at %d", i)
		}
	}

	if _, err := e.NewGame(Setup{Players: []Seat{{Corporation: 1}, {Corporation: 1}}}); err == nil {
		t.Fatalf("expected duplicate corporation error")
	}
}

func TestApply_PlayProject(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor, cards.MiningGuild)
	doc.Players[0].AddToHand(solarPower)

	next, ev, err := e.Apply(doc, play(0, solarPower, economy.Fee{economy.Credits: 11}))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := next.Players[0]
	if got := p.Resources.Count(economy.Credits); got != 46 {
		t.Fatalf("credits: got %d want 46", got)
	}
	if got := p.Resources.Production(economy.Energy); got != 1 {
		t.Fatalf("energy production: got %d want 1", got)
	}
	if len(p.Board) != 1 || p.Board[0].Project != solarPower || len(p.Hand) != 0 {
		t.Fatalf("board=%v hand=%v", p.Board, p.Hand)
	}
	if p.Label(catalogs.LabelEnergy) != 1 || p.Label(catalogs.LabelBuilding) != 1 {
		t.Fatalf("labels: %v", p.Labels)
	}
	if ev.Kind != game.EventPlayProject || ev.Project != solarPower || len(next.Events) != 1 {
		t.Fatalf("event: %+v", ev)
	}
	// The input document is untouched.
	if doc.Players[0].Resources.Count(economy.Credits) != 57 || len(doc.Players[0].Board) != 0 || len(doc.Events) != 0 {
		t.Fatalf("input document was modified")
	}
}

func TestApply_EventCardSkipsBoard(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor)
	const lavaFlows = 140
	doc.Players[0].AddToHand(lavaFlows)

	a := play(0, lavaFlows, economy.Fee{economy.Credits: 18})
	a.Decision.Pos = cards.Int(board.Volcanic[0])
	next, _, err := e.Apply(doc, a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := next.Players[0]
	if len(p.Board) != 0 || len(p.Played) != 1 || next.Field.At(board.Volcanic[0]).Kind != board.TileLava {
		t.Fatalf("event card: board=%v played=%v", p.Board, p.Played)
	}
	if next.Temperature != -26 || p.TR != 22 {
		t.Fatalf("temperature=%d tr=%d", next.Temperature, p.TR)
	}
	if p.Label(catalogs.LabelSpace) != 0 {
		t.Fatalf("event labels must not count")
	}
}

func TestApply_CredicorRebate(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor)
	const soletta = 203
	doc.Players[0].AddToHand(soletta)

	next, _, err := e.Apply(doc, play(0, soletta, economy.Fee{economy.Credits: 35}))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := next.Players[0].Resources.Count(economy.Credits); got != 57-35+4 {
		t.Fatalf("credits: got %d", got)
	}
}

func TestApply_TitaniumFee(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Phobolog)
	const soletta = 203
	doc.Players[0].AddToHand(soletta)

	// Phobolog titanium is worth 4.
	next, _, err := e.Apply(doc, play(0, soletta, economy.Fee{economy.Titanium: 8, economy.Credits: 3}))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	s := next.Players[0].Resources
	if s.Count(economy.Titanium) != 2 || s.Count(economy.Credits) != 20 {
		t.Fatalf("stock after titanium fee: %+v", s)
	}

	_, _, err = e.Apply(doc, play(0, soletta, economy.Fee{economy.Titanium: 8, economy.Credits: 2}))
	wantCode(t, err, protocol.ErrCardPlay)

	_, _, err = e.Apply(doc, play(0, soletta, economy.Fee{economy.Steel: 1, economy.Credits: 35}))
	wantCode(t, err, protocol.ErrCardPlay)
}

func TestApply_RejectsWithoutChange(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor)

	_, _, err := e.Apply(doc, play(0, solarPower, economy.Fee{economy.Credits: 11}))
	wantCode(t, err, protocol.ErrIneligible)

	// An aquifer aimed at a land cell fails after the price was taken from the
	// working copy; the live document keeps its credits.
	land := board.Legal(board.Land(&doc.Field))[0]
	a := Action{Intent: Intent{Kind: KindStandardProject, Player: 0, StandardProject: Aquifer}, Pos: cards.Int(land)}
	_, _, err = e.Apply(doc, a)
	wantCode(t, err, protocol.ErrCardPlay)
	if doc.Players[0].Resources.Count(economy.Credits) != 57 || doc.Field.Oceans() != 0 || len(doc.Events) != 0 {
		t.Fatalf("failed action leaked into the document")
	}

	doc.Phase = game.PhaseFinished
	_, _, err = e.Apply(doc, Action{Intent: Intent{Kind: KindPass}})
	wantCode(t, err, protocol.ErrGameFinished)
}

func TestApply_ReactionsGoToOwner(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor, cards.Tharsis)
	pos := board.Legal(board.StandardCity(&doc.Field))[0]

	a := Action{Intent: Intent{Kind: KindStandardProject, Player: 0, StandardProject: CityProject}, Pos: cards.Int(pos)}
	next, ev, err := e.Apply(doc, a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(ev.Tiles) != 1 || ev.Tiles[0] != pos {
		t.Fatalf("event tiles: %v", ev.Tiles)
	}
	p0, p1 := next.Players[0], next.Players[1]
	if p0.Resources.Count(economy.Credits) != 57-25 || p0.Resources.Production(economy.Credits) != 1 {
		t.Fatalf("builder: %+v", p0.Resources.Credits)
	}
	// Tharsis gains production for any city but credits only for its own.
	if p1.Resources.Production(economy.Credits) != 1 || p1.Resources.Count(economy.Credits) != 40 {
		t.Fatalf("tharsis: %+v", p1.Resources.Credits)
	}
}

func TestFirstActionBlocksEverythingElse(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Tharsis)
	doc.Players[0].FirstAction = true

	opts := e.Options(doc, 0)
	if len(opts) != 1 || opts[0].Kind != KindCorpAction {
		t.Fatalf("options with pending first action: %+v", opts)
	}
	pos := board.Legal(board.StandardCity(&doc.Field))[0]
	next, _, err := e.Apply(doc, Action{Intent: Intent{Kind: KindCorpAction, Player: 0}, Decision: cards.Decision{Pos: cards.Int(pos)}})
	if err != nil {
		t.Fatalf("first action: %v", err)
	}
	p := next.Players[0]
	if p.FirstAction || p.Resources.Count(economy.Credits) != 43 || p.Resources.Production(economy.Credits) != 1 {
		t.Fatalf("after first action: first=%v credits=%+v", p.FirstAction, p.Resources.Credits)
	}
	if e.CanCorpAction(next, 0) {
		t.Fatalf("first action is taken once")
	}
}

func TestStandardProjects(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor)

	next, _, err := e.Apply(doc, Action{Intent: Intent{Kind: KindStandardProject, Player: 0, StandardProject: PowerPlant}})
	if err != nil {
		t.Fatalf("power plant: %v", err)
	}
	if next.Players[0].Resources.Production(economy.Energy) != 1 || next.Players[0].Resources.Count(economy.Credits) != 46 {
		t.Fatalf("power plant: %+v", next.Players[0].Resources)
	}

	ocean := board.Legal(board.StandardOcean(&next.Field))[0]
	next, _, err = e.Apply(next, Action{Intent: Intent{Kind: KindStandardProject, Player: 0, StandardProject: Aquifer}, Pos: cards.Int(ocean)})
	if err != nil {
		t.Fatalf("aquifer: %v", err)
	}
	if next.Field.Oceans() != 1 || next.Players[0].TR != 21 {
		t.Fatalf("aquifer: oceans=%d tr=%d", next.Field.Oceans(), next.Players[0].TR)
	}

	if e.CanStandardProject(next, 0, HeatConversion) {
		t.Fatalf("heat conversion without heat")
	}
	next.Players[0].Resources.Heat.Count = 8
	next, _, err = e.Apply(next, Action{Intent: Intent{Kind: KindStandardProject, Player: 0, StandardProject: HeatConversion}})
	if err != nil {
		t.Fatalf("heat conversion: %v", err)
	}
	if next.Temperature != -28 || next.Players[0].Resources.Count(economy.Heat) != 0 {
		t.Fatalf("heat conversion: temp=%d", next.Temperature)
	}
}

func TestSellPatents(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor)
	doc.Players[0].AddToHand(solarPower, 140)

	a, err := e.Decide(context.Background(), doc, Intent{Kind: KindStandardProject, Player: 0, StandardProject: SellPatents}, firstChoice{})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if len(a.Sell) != 1 || a.Sell[0] != solarPower {
		t.Fatalf("sell: %v", a.Sell)
	}
	next, _, err := e.Apply(doc, a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := next.Players[0]
	if len(p.Hand) != 1 || p.Resources.Count(economy.Credits) != 58 || len(next.Discard) != 1 {
		t.Fatalf("after selling: hand=%v credits=%d discard=%v", p.Hand, p.Resources.Count(economy.Credits), next.Discard)
	}

	a.Sell = []int{999}
	_, _, err = e.Apply(doc, a)
	wantCode(t, err, protocol.ErrCardPlay)
}

func TestMilestoneAndAward(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor, cards.MiningGuild)

	if e.CanClaimMilestone(doc, 0, game.MilestoneTerraformer) {
		t.Fatalf("terraformer needs TR 35")
	}
	doc.Players[0].TR = 35
	next, _, err := e.Apply(doc, Action{Intent: Intent{Kind: KindMilestone, Player: 0, Milestone: game.MilestoneTerraformer}})
	if err != nil {
		t.Fatalf("milestone: %v", err)
	}
	if next.Milestones[game.MilestoneTerraformer] != 0 || next.Players[0].Resources.Count(economy.Credits) != 49 {
		t.Fatalf("milestone not claimed: %+v", next.Milestones)
	}
	if e.CanClaimMilestone(next, 0, game.MilestoneTerraformer) {
		t.Fatalf("milestone claimed twice")
	}

	next, _, err = e.Apply(next, Action{Intent: Intent{Kind: KindAward, Player: 1, Award: game.AwardMiner}})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !next.AwardFunded(game.AwardMiner) || next.Players[1].Resources.Count(economy.Credits) != 22 {
		t.Fatalf("award not funded")
	}
	if e.CanFundAward(next, 0, game.AwardMiner) {
		t.Fatalf("award funded twice")
	}
	if price, _ := e.awardPrice(next); price != 14 {
		t.Fatalf("second award price: %d", price)
	}
}

func TestPassRunsProduction(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor, cards.MiningGuild)
	doc.Players[0].Resources.Energy = economy.Ledger{Count: 3, Production: 1}
	doc.Players[0].Resources.Credits.Production = -2

	next, _, err := e.Apply(doc, Action{Intent: Intent{Kind: KindPass, Player: 0}})
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if next.Generation != 1 || e.CanPass(next, 0) {
		t.Fatalf("one pass must not end the generation")
	}
	next, _, err = e.Apply(next, Action{Intent: Intent{Kind: KindPass, Player: 1}})
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if next.Generation != 2 {
		t.Fatalf("generation: %d", next.Generation)
	}
	p := next.Players[0]
	if p.Pass || p.Resources.Count(economy.Heat) != 3 || p.Resources.Count(economy.Energy) != 1 {
		t.Fatalf("player 0 after production: %+v", p.Resources)
	}
	if got := p.Resources.Count(economy.Credits); got != 57+20-2 {
		t.Fatalf("credits after production: %d", got)
	}
	// Mining Guild starts with one steel production.
	if got := next.Players[1].Resources.Count(economy.Steel); got != 6 {
		t.Fatalf("steel after production: %d", got)
	}
	last := next.Events[len(next.Events)-1]
	if last.Kind != game.EventGeneration || last.Generation != 2 {
		t.Fatalf("last event: %+v", last)
	}
}

func TestProductionFinishesTerraformedGame(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor)
	doc.Temperature = 8
	doc.Oxygen = 14
	for i, pos := range board.Legal(board.StandardOcean(&doc.Field)) {
		if i == 9 {
			break
		}
		if err := doc.Field.Place(pos, board.Ocean()); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	e.ProductionPhase(doc)
	if doc.Phase != game.PhaseFinished {
		t.Fatalf("phase: %s", doc.Phase)
	}
}

func TestScore(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor, cards.MiningGuild)

	city := board.Legal(board.StandardCity(&doc.Field))[0]
	if err := doc.Field.Place(city, board.Owned(board.TileCity, 0)); err != nil {
		t.Fatalf("place city: %v", err)
	}
	var greens int
	for _, n := range board.Neighbors(city) {
		if greens == 2 {
			break
		}
		if board.Land(&doc.Field)(n) {
			if err := doc.Field.Place(n, board.Owned(board.TileGreenery, greens)); err != nil {
				t.Fatalf("place greenery: %v", err)
			}
			greens++
		}
	}
	if greens != 2 {
		t.Fatalf("test board has no room around %d", city)
	}
	doc.Milestones[game.MilestoneMayor] = 1
	doc.Players[0].Board = append(doc.Players[0].Board, game.BoardCard{Project: solarPower})

	s := e.Score(doc)
	// Player 0: 20 TR + 1 card + 1 greenery + 2 next to the city.
	if s[0].Total != 24 || s[0].Cities != 2 || s[0].Greeneries != 1 || s[0].Cards != 1 {
		t.Fatalf("player 0 score: %+v", s[0])
	}
	// Player 1: 20 TR + 1 greenery + 5 milestone.
	if s[1].Total != 26 || s[1].Milestones != 5 {
		t.Fatalf("player 1 score: %+v", s[1])
	}
}

func TestAwardVP(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.Credicor, cards.MiningGuild, cards.Helion)
	for i := range doc.Players {
		doc.Players[i].Resources.Steel.Count = 0
		doc.Players[i].Resources.Titanium.Count = 0
	}
	doc.Players[0].Resources.Steel.Count = 5
	doc.Players[1].Resources.Steel.Count = 3
	doc.Players[2].Resources.Titanium.Count = 1

	vp := e.awardVP(doc, game.AwardMiner)
	if vp[0] != 5 || vp[1] != 2 || vp[2] != 0 {
		t.Fatalf("clear lead: %v", vp)
	}
	doc.Players[1].Resources.Steel.Count = 5
	vp = e.awardVP(doc, game.AwardMiner)
	if vp[0] != 5 || vp[1] != 5 || vp[2] != 0 {
		t.Fatalf("shared lead: %v", vp)
	}
}

// firstChoice answers every query with the first legal option.
type firstChoice struct{}

func (firstChoice) MakeChoice(_ context.Context, choices []cards.Choice) (string, error) {
	return choices[0].Result, nil
}

func (firstChoice) PlaceTile(_ context.Context, _ string, legal board.Predicate) (int, error) {
	return board.Legal(legal)[0], nil
}

func (firstChoice) NumberInRange(_ context.Context, _ string, min, _ int) (int, error) {
	return min, nil
}

func (firstChoice) DistributeResources(_ context.Context, price int, _ economy.Rates) (economy.Fee, error) {
	return economy.Fee{economy.Credits: price}, nil
}

func (firstChoice) SelectPlayer(_ context.Context, _ string, _ func(p *game.Player) bool) (int, error) {
	return 0, nil
}

func (firstChoice) SelectBoardCard(_ context.Context, _ string, _ bool, _ func(bc game.BoardCard) bool) (int, error) {
	return 0, nil
}

func TestApply_NaturalPreservePlacesIsolatedTile(t *testing.T) {
	e := newTestEngine(t)
	const naturalPreserve = 44
	doc := newTestGame(t, e, cards.Credicor)
	doc.Players[0].AddToHand(naturalPreserve)
	in := Intent{Kind: KindPlayProject, Player: 0, Project: naturalPreserve}

	pos := board.Legal(board.Isolated(&doc.Field))[0]
	a := play(0, naturalPreserve, economy.Fee{economy.Credits: 9})
	a.Decision.Pos = cards.Int(pos)
	next, ev, err := e.Apply(doc, a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if tile := next.Field.At(pos); tile.Kind != board.TilePreserve || !tile.OwnedBy(0) {
		t.Fatalf("cell %d holds %+v", pos, tile)
	}
	if got := next.Players[0].Resources.Production(economy.Credits); len(ev.Tiles) != 1 || got != doc.Players[0].Resources.Production(economy.Credits)+1 {
		t.Fatalf("tiles=%v credit production=%d", ev.Tiles, got)
	}

	// A cell with a neighbour is refused.
	crowded := doc.Clone()
	_ = crowded.Field.Place(pos, board.Owned(board.TileCity, 1))
	for _, np := range board.Cell(pos).Neighbors {
		if board.Land(&crowded.Field)(np) {
			a.Decision.Pos = cards.Int(np)
			_, _, err = e.Apply(crowded, a)
			wantCode(t, err, protocol.ErrCardPlay)
			break
		}
	}

	// Once every land cell touches a tile the project can't be played.
	for {
		free := board.Legal(board.Isolated(&doc.Field))
		if len(free) == 0 {
			break
		}
		if err := doc.Field.Place(free[0], board.Owned(board.TileGreenery, 0)); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	if e.Eligible(doc, in) {
		t.Fatalf("natural preserve playable without an isolated cell")
	}
	_, _, err = e.Apply(doc, play(0, naturalPreserve, economy.Fee{economy.Credits: 9}))
	wantCode(t, err, protocol.ErrIneligible)
}

func TestApply_MiningGuildAnyTileOnMetalCell(t *testing.T) {
	e := newTestEngine(t)
	doc := newTestGame(t, e, cards.MiningGuild, cards.Credicor)
	before := doc.Players[0].Resources

	// Cell 3 is ocean-reserved and rewards two steel.
	aq := Action{Intent: Intent{Kind: KindStandardProject, Player: 0, StandardProject: Aquifer}, Pos: cards.Int(3)}
	next, _, err := e.Apply(doc, aq)
	if err != nil {
		t.Fatalf("aquifer: %v", err)
	}
	s := next.Players[0].Resources
	if s.Count(economy.Steel) != before.Count(economy.Steel)+2 || s.Production(economy.Steel) != before.Production(economy.Steel)+1 {
		t.Fatalf("mining guild after own ocean: steel %d prod %d", s.Count(economy.Steel), s.Production(economy.Steel))
	}

	// Cell 2 rewards steel too; the city belongs to the other player.
	city := Action{Intent: Intent{Kind: KindStandardProject, Player: 1, StandardProject: CityProject}, Pos: cards.Int(2)}
	after, _, err := e.Apply(next, city)
	if err != nil {
		t.Fatalf("city: %v", err)
	}
	if got := after.Players[0].Resources.Production(economy.Steel); got != before.Production(economy.Steel)+2 {
		t.Fatalf("mining guild after rival city: steel prod %d", got)
	}
	if got := after.Players[1].Resources.Production(economy.Steel); got != 0 {
		t.Fatalf("builder steel production: %d", got)
	}
}

func TestApply_TharsisIgnoresCapital(t *testing.T) {
	e := newTestEngine(t)
	const capital = 8
	doc := newTestGame(t, e, cards.Credicor, cards.Tharsis)
	for _, pos := range board.Legal(board.StandardOcean(&doc.Field))[:4] {
		_ = doc.Field.Place(pos, board.Ocean())
	}
	doc.Players[0].Resources.Energy.Production = 2
	doc.Players[0].AddToHand(capital)
	tharsis := doc.Players[1].Resources

	a := play(0, capital, economy.Fee{economy.Credits: 26})
	a.Decision.Pos = cards.Int(board.Legal(board.StandardCity(&doc.Field))[0])
	next, _, err := e.Apply(doc, a)
	if err != nil {
		t.Fatalf("capital: %v", err)
	}
	if next.Field.At(*a.Decision.Pos).Kind != board.TileCapital {
		t.Fatalf("capital not placed")
	}
	if next.Players[1].Resources.Credits != tharsis.Credits {
		t.Fatalf("tharsis reacted to a capital: %+v", next.Players[1].Resources.Credits)
	}
}

func TestApply_PlayReactionsStayWithActingPlayer(t *testing.T) {
	e := newTestEngine(t)
	const (
		asteroid           = 9
		optimalAerobraking = 31
		decomposers        = 131
	)
	doc := newTestGame(t, e, cards.Credicor, cards.Ecoline)
	for i := range doc.Players {
		doc.Players[i].Board = append(doc.Players[i].Board, game.BoardCard{Project: optimalAerobraking})
	}
	doc.Players[0].AddToHand(asteroid)
	p0, p1 := doc.Players[0].Resources, doc.Players[1].Resources

	a := play(0, asteroid, economy.Fee{economy.Credits: 14})
	a.Decision.Player = cards.Int(0)
	next, _, err := e.Apply(doc, a)
	if err != nil {
		t.Fatalf("asteroid: %v", err)
	}
	s := next.Players[0].Resources
	if s.Count(economy.Credits) != p0.Count(economy.Credits)-14+3 || s.Count(economy.Heat) != p0.Count(economy.Heat)+3 {
		t.Fatalf("aerobraking on actor: credits %d heat %d", s.Count(economy.Credits), s.Count(economy.Heat))
	}
	o := next.Players[1].Resources
	if o.Count(economy.Credits) != p1.Count(economy.Credits) || o.Count(economy.Heat) != p1.Count(economy.Heat) {
		t.Fatalf("aerobraking fired for a bystander: credits %d heat %d", o.Count(economy.Credits), o.Count(economy.Heat))
	}

	// Decomposers reacts to its own microbe label once it is on the board.
	next.Oxygen = 3
	next.Players[0].AddToHand(decomposers)
	after, _, err := e.Apply(next, play(0, decomposers, economy.Fee{economy.Credits: 5}))
	if err != nil {
		t.Fatalf("decomposers: %v", err)
	}
	if _, bc := after.Owner(decomposers); bc == nil || bc.Res.Get(economy.Microbes) != 1 {
		t.Fatalf("decomposers microbes: %+v", bc)
	}
}

// outOfRange places every tile off the board.
type outOfRange struct{ firstChoice }

func (outOfRange) PlaceTile(context.Context, string, board.Predicate) (int, error) {
	return board.Size + 3, nil
}

func TestDecide_RejectsOffBoardOcean(t *testing.T) {
	e := newTestEngine(t)
	const iceAsteroid = 78
	doc := newTestGame(t, e, cards.Credicor)
	doc.Players[0].AddToHand(iceAsteroid)

	_, err := e.Decide(context.Background(), doc, Intent{Kind: KindPlayProject, Player: 0, Project: iceAsteroid}, outOfRange{})
	wantCode(t, err, protocol.ErrCardPlay)
}
