package board

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange = errors.New("cell out of range")
	ErrOccupied   = errors.New("cell occupied")
)

// Field holds the mutable contents of every cell. The zero Tile is empty.
type Field [Size]Tile

func (f *Field) At(pos int) Tile {
	if !Valid(pos) {
		return Tile{}
	}
	return f[pos]
}

func (f *Field) Empty(pos int) bool {
	return Valid(pos) && f[pos].Kind == TileNone
}

// Place puts t on an empty cell.
func (f *Field) Place(pos int, t Tile) error {
	if !Valid(pos) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	if f[pos].Kind != TileNone {
		return fmt.Errorf("%w: %d holds %s", ErrOccupied, pos, f[pos].Kind)
	}
	f[pos] = t
	return nil
}

func (f *Field) count(from int, match func(Tile) bool) int {
	n := 0
	for pos := from; pos < Size; pos++ {
		if match(f[pos]) {
			n++
		}
	}
	return n
}

func (f *Field) Oceans() int {
	return f.count(0, func(t Tile) bool { return t.Kind == TileOcean })
}

// Cities counts cities and capitals anywhere, off-grid slots included.
func (f *Field) Cities() int {
	return f.count(0, func(t Tile) bool { return t.Kind.IsCity() })
}

func (f *Field) CitiesOnMars() int {
	return f.count(GanymedeColony+1, func(t Tile) bool { return t.Kind.IsCity() })
}

// CountOwned counts tiles of player, optionally restricted to kinds.
func (f *Field) CountOwned(player int, kinds ...TileKind) int {
	return f.count(0, func(t Tile) bool {
		if !t.OwnedBy(player) {
			return false
		}
		if len(kinds) == 0 {
			return true
		}
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	})
}

// AdjacentKind counts neighbors of pos holding one of kinds.
func (f *Field) AdjacentKind(pos int, kinds ...TileKind) int {
	n := 0
	for _, np := range Neighbors(pos) {
		for _, k := range kinds {
			if f[np].Kind == k {
				n++
				break
			}
		}
	}
	return n
}

// AdjacentOwners returns the distinct owners of tiles around pos.
func (f *Field) AdjacentOwners(pos int) []int {
	var out []int
	seen := map[int]bool{}
	for _, np := range Neighbors(pos) {
		t := f[np]
		if t.Kind == TileNone || t.Kind == TileOcean || seen[t.Owner] {
			continue
		}
		seen[t.Owner] = true
		out = append(out, t.Owner)
	}
	return out
}
