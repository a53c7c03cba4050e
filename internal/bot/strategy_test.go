package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"redplanet.games/internal/protocol"
	"redplanet.games/internal/sim/board"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/economy"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/playerr"
	"redplanet.games/internal/sim/tuning"
)

func newTestEngine(t *testing.T) *engine.Engine {
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
	return engine.New(reg, tun)
}

func snapshotJSON(t *testing.T, doc *game.Document) []byte {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func checkInvariants(t *testing.T, e *engine.Engine, doc *game.Document, what string) {
	t.Helper()
	tun := e.Tuning()
	for i, p := range doc.Players {
		for _, r := range economy.Resources {
			if n := p.Resources.Count(r); n < 0 {
				t.Fatalf("%s: player %d has %d %s", what, i, n, r)
			}
			if n := p.Resources.Production(r); n < cards.ProductionFloor(r) {
				t.Fatalf("%s: player %d has %s production %d", what, i, r, n)
			}
		}
		for _, bc := range p.Board {
			for r, n := range bc.Res {
				if n < 0 {
					t.Fatalf("%s: project %d holds %d %s", what, bc.Project, n, r)
				}
			}
		}
	}
	if doc.Temperature < tun.TemperatureMin || doc.Temperature > tun.TemperatureMax {
		t.Fatalf("%s: temperature %d", what, doc.Temperature)
	}
	if doc.Oxygen < 0 || doc.Oxygen > tun.OxygenMax {
		t.Fatalf("%s: oxygen %d", what, doc.Oxygen)
	}
	if doc.Field.Oceans() > tun.MaxOceans {
		t.Fatalf("%s: %d oceans", what, doc.Field.Oceans())
	}
}

func TestGreedy(t *testing.T) {
	stock := economy.Stock{
		Credits:  economy.Ledger{Count: 10},
		Steel:    economy.Ledger{Count: 3},
		Titanium: economy.Ledger{Count: 1},
	}
	rates := economy.PaymentRates(true, true, 0, false)

	fee, err := Greedy(stock, 10, rates)
	if err != nil {
		t.Fatalf("greedy: %v", err)
	}
	// titanium 3 + steel 6 + credits 1
	if fee[economy.Titanium] != 1 || fee[economy.Steel] != 3 || fee[economy.Credits] != 1 {
		t.Fatalf("fee: %v", fee)
	}
	if err := economy.ValidateFee(stock, 10, fee, rates); err != nil {
		t.Fatalf("greedy fee invalid: %v", err)
	}

	// Without credits the split has to overshoot.
	fee, err = Greedy(economy.Stock{Steel: economy.Ledger{Count: 3}}, 5, economy.Rates{economy.Credits: 1, economy.Steel: 2})
	if err != nil || fee[economy.Steel] != 3 {
		t.Fatalf("overshoot: %v %v", fee, err)
	}

	_, err = Greedy(economy.Stock{Credits: economy.Ledger{Count: 2}}, 5, economy.Rates{economy.Credits: 1})
	if playerr.CodeOf(err) != protocol.ErrNoResource {
		t.Fatalf("expected E_NO_RESOURCE, got %v", err)
	}
}

func TestQueriesStayInsideLegalSets(t *testing.T) {
	s := New(0, 1)
	var f board.Field
	legal := board.StandardOcean(&f)
	for i := 0; i < 20; i++ {
		pos, err := s.PlaceTile(context.Background(), "ocean", legal)
		if err != nil || !legal(pos) {
			t.Fatalf("PlaceTile: %d %v", pos, err)
		}
		n, err := s.NumberInRange(context.Background(), "n", 2, 4)
		if err != nil || n < 2 || n > 4 {
			t.Fatalf("NumberInRange: %d %v", n, err)
		}
	}
	if _, err := s.PlaceTile(context.Background(), "city", func(int) bool { return false }); playerr.CodeOf(err) != protocol.ErrInvalidTarget {
		t.Fatalf("expected E_INVALID_TARGET, got %v", err)
	}
}

// richDoc seats two players with plenty of every resource; player 0 holds
// only project.
func richDoc(t *testing.T, e *engine.Engine, project int, midGame bool) *game.Document {
	t.Helper()
	doc, err := e.NewGame(engine.Setup{ID: "prop", Players: []engine.Seat{{Corporation: cards.Credicor}, {Corporation: cards.Ecoline}}, Seed: int64(project)})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i := range doc.Players {
		p := &doc.Players[i]
		p.FirstAction = false
		p.Hand = nil
		for _, r := range economy.Resources {
			l := p.Resources.Of(r)
			l.Count = 60
			l.Production = 2
		}
	}
	doc.Players[0].Hand = []int{project}
	if midGame {
		doc.Temperature = 0
		doc.Oxygen = 7
		for i, pos := range board.Legal(board.StandardOcean(&doc.Field)) {
			if i == 4 {
				break
			}
			_ = doc.Field.Place(pos, board.Ocean())
		}
	}
	return doc
}

// Every project either resolves into a state with no negative stock or is
// rejected without touching the document. A project whose gathered decision
// is always refused by its server hook fails the test.
func TestEveryProjectKeepsStockNonNegative(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	for _, id := range e.Registry().ProjectIDs() {
		decided, applied := 0, 0
		for _, mid := range []bool{false, true} {
			for seed := int64(0); seed < 3; seed++ {
				doc := richDoc(t, e, id, mid)
				in := engine.Intent{Kind: engine.KindPlayProject, Player: 0, Project: id}
				if !e.Eligible(doc, in) {
					continue
				}
				before := snapshotJSON(t, doc)
				s := New(0, int64(id)*10+seed)
				s.SetView(doc)
				a, err := e.Decide(ctx, doc, in, s)
				if !bytes.Equal(before, snapshotJSON(t, doc)) {
					t.Fatalf("project %d: Decide changed the document", id)
				}
				if err != nil {
					continue
				}
				decided++
				next, _, err := e.Apply(doc, a)
				if !bytes.Equal(before, snapshotJSON(t, doc)) {
					t.Fatalf("project %d: Apply changed its input", id)
				}
				if err != nil {
					if playerr.CodeOf(err) == protocol.ErrInternal {
						t.Fatalf("project %d: untyped rejection %v", id, err)
					}
					continue
				}
				applied++
				checkInvariants(t, e, next, "project")
				if next.Seq() != doc.Seq()+1 {
					t.Fatalf("project %d: seq %d -> %d", id, doc.Seq(), next.Seq())
				}
			}
		}
		if decided > 0 && applied == 0 {
			t.Fatalf("project %d: %d decided plays, none applied", id, decided)
		}
	}
}

func TestRandomGamesKeepInvariants(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	for seed := int64(1); seed <= 3; seed++ {
		doc, err := e.NewGame(engine.Setup{ID: "rand", Players: []engine.Seat{{Corporation: cards.Tharsis}, {Corporation: cards.Phobolog}, {Corporation: cards.Inventrix}}, Seed: seed})
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		bots := []*Strategy{New(0, seed), New(1, seed+10), New(2, seed+20)}
		for step := 0; step < 300 && doc.Phase != game.PhaseFinished; step++ {
			progressed := false
			for _, b := range bots {
				if len(e.Options(doc, b.Player())) == 0 {
					continue
				}
				a, err := b.Turn(ctx, e, doc.ViewFor(b.Player()))
				if err != nil {
					continue
				}
				next, _, err := e.Apply(doc, a)
				if err != nil {
					continue
				}
				doc = next
				progressed = true
				checkInvariants(t, e, doc, "random game")
				break
			}
			if !progressed {
				t.Fatalf("seed %d step %d: nobody could act", seed, step)
			}
		}
		if doc.Generation < 2 {
			t.Fatalf("seed %d: game never reached production (gen %d)", seed, doc.Generation)
		}
	}
}
