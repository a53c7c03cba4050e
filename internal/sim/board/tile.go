package board

import (
	"encoding/json"
	"fmt"
)

type TileKind uint8

const (
	TileNone TileKind = iota
	TileOcean
	TileGreenery
	TileCity
	TileCapital
	TileEcological
	TileLava
	TileMining
	TileMohole
	TileNuclear
	TilePreserve
)

var tileNames = [...]string{
	TileNone:       "",
	TileOcean:      "ocean",
	TileGreenery:   "greenery",
	TileCity:       "city",
	TileCapital:    "capital",
	TileEcological: "ecological",
	TileLava:       "lava",
	TileMining:     "mining",
	TileMohole:     "mohole",
	TileNuclear:    "nuclear",
	TilePreserve:   "preserve",
}

func (k TileKind) String() string {
	if int(k) < len(tileNames) {
		return tileNames[k]
	}
	return fmt.Sprintf("tile(%d)", uint8(k))
}

func ParseTileKind(s string) (TileKind, bool) {
	for i, n := range tileNames {
		if n == s {
			return TileKind(i), true
		}
	}
	return TileNone, false
}

func (k TileKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TileKind) UnmarshalText(b []byte) error {
	v, ok := ParseTileKind(string(b))
	if !ok {
		return fmt.Errorf("unknown tile kind %q", b)
	}
	*k = v
	return nil
}

// IsCity reports whether the tile counts as a city (cities and the capital).
func (k TileKind) IsCity() bool { return k == TileCity || k == TileCapital }

// Tile is the content of one cell. Every kind except ocean carries an owner.
type Tile struct {
	Kind  TileKind `json:"type"`
	Owner int      `json:"owner"`
}

func Ocean() Tile { return Tile{Kind: TileOcean, Owner: -1} }

func Owned(kind TileKind, owner int) Tile { return Tile{Kind: kind, Owner: owner} }

func (t Tile) Empty() bool { return t.Kind == TileNone }

// OwnedBy reports whether t is a non-ocean tile of player.
func (t Tile) OwnedBy(player int) bool {
	return t.Kind != TileNone && t.Kind != TileOcean && t.Owner == player
}

type tileJSON struct {
	Kind  TileKind `json:"type"`
	Owner *int     `json:"owner,omitempty"`
}

func (t Tile) MarshalJSON() ([]byte, error) {
	if t.Kind == TileNone {
		return []byte("null"), nil
	}
	out := tileJSON{Kind: t.Kind}
	if t.Kind != TileOcean {
		owner := t.Owner
		out.Owner = &owner
	}
	return json.Marshal(out)
}

func (t *Tile) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Tile{}
		return nil
	}
	var in tileJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	t.Kind = in.Kind
	t.Owner = -1
	if in.Owner != nil {
		t.Owner = *in.Owner
	}
	return nil
}
