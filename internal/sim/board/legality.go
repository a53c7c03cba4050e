package board

// Predicate reports whether a tile may be placed at pos. Predicates are built
// against a snapshot of the field and never panic on bad positions.
type Predicate func(pos int) bool

// land is an empty, non-ocean, non-reserved cell.
func land(f *Field, pos int) bool {
	if !f.Empty(pos) {
		return false
	}
	c := cells[pos]
	return !c.Ocean && !c.SpecialCity
}

// Land accepts any empty cell that is neither ocean-reserved nor a special city slot.
func Land(f *Field) Predicate {
	return func(pos int) bool { return land(f, pos) }
}

// StandardCity accepts land cells with no city or capital next to them.
func StandardCity(f *Field) Predicate {
	return func(pos int) bool {
		if !land(f, pos) {
			return false
		}
		return f.AdjacentKind(pos, TileCity, TileCapital) == 0
	}
}

// StandardOcean accepts empty ocean-reserved cells.
func StandardOcean(f *Field) Predicate {
	return func(pos int) bool {
		return f.Empty(pos) && cells[pos].Ocean
	}
}

// StandardGreenery accepts land next to one of player's own tiles when such
// a spot exists; otherwise any land cell is accepted.
func StandardGreenery(f *Field, player int) Predicate {
	nextToOwn := func(pos int) bool {
		if !land(f, pos) {
			return false
		}
		for _, np := range cells[pos].Neighbors {
			if f[np].OwnedBy(player) {
				return true
			}
		}
		return false
	}
	for pos := 0; pos < Size; pos++ {
		if !f[pos].OwnedBy(player) {
			continue
		}
		for _, np := range cells[pos].Neighbors {
			if land(f, np) {
				return nextToOwn
			}
		}
	}
	return Land(f)
}

// Isolated accepts land cells with no tile of any kind around them.
func Isolated(f *Field) Predicate {
	return func(pos int) bool {
		if !land(f, pos) {
			return false
		}
		for _, np := range cells[pos].Neighbors {
			if !f[np].Empty() {
				return false
			}
		}
		return true
	}
}

// OceanCell accepts empty ocean-reserved cells regardless of the ocean limit.
func OceanCell(f *Field) Predicate { return StandardOcean(f) }

// NonOceanLand accepts empty non-ocean land cells that are not special city slots.
func NonOceanLand(f *Field) Predicate { return Land(f) }

// NextTo accepts land cells with at least n neighbors holding one of kinds.
func NextTo(f *Field, n int, kinds ...TileKind) Predicate {
	return func(pos int) bool {
		return land(f, pos) && f.AdjacentKind(pos, kinds...) >= n
	}
}

// NextToOwned accepts land cells next to any tile of player.
func NextToOwned(f *Field, player int) Predicate {
	return func(pos int) bool {
		if !land(f, pos) {
			return false
		}
		for _, np := range cells[pos].Neighbors {
			if f[np].OwnedBy(player) {
				return true
			}
		}
		return false
	}
}

// WithReward accepts land cells whose placement reward includes one of kinds.
func WithReward(f *Field, kinds ...RewardKind) Predicate {
	return func(pos int) bool {
		return land(f, pos) && cells[pos].HasReward(kinds...)
	}
}

// AnyOf accepts empty cells among positions.
func AnyOf(f *Field, positions ...int) Predicate {
	return func(pos int) bool {
		if !f.Empty(pos) {
			return false
		}
		for _, p := range positions {
			if p == pos {
				return true
			}
		}
		return false
	}
}

// And combines predicates.
func And(preds ...Predicate) Predicate {
	return func(pos int) bool {
		for _, p := range preds {
			if !p(pos) {
				return false
			}
		}
		return true
	}
}

// Legal lists every position pred accepts, in ascending order.
func Legal(pred Predicate) []int {
	var out []int
	for pos := 0; pos < Size; pos++ {
		if pred(pos) {
			out = append(out, pos)
		}
	}
	return out
}

// Any reports whether pred accepts at least one position.
func Any(pred Predicate) bool {
	for pos := 0; pos < Size; pos++ {
		if pred(pos) {
			return true
		}
	}
	return false
}
