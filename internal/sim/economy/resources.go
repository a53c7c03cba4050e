// Package economy holds the per-player resource ledgers and fee arithmetic.
package economy

import "errors"

var ErrInsufficient = errors.New("insufficient resources")

type Resource string

const (
	Credits  Resource = "credits"
	Steel    Resource = "steel"
	Titanium Resource = "titanium"
	Plants   Resource = "plants"
	Energy   Resource = "energy"
	Heat     Resource = "heat"
)

// Resources lists the six resource kinds in display order.
var Resources = [...]Resource{Credits, Steel, Titanium, Plants, Energy, Heat}

func (r Resource) Valid() bool {
	switch r {
	case Credits, Steel, Titanium, Plants, Energy, Heat:
		return true
	}
	return false
}

// Ledger is the stock count and per-generation production of one resource.
// Count never goes below zero; production may (credits production down to -5).
type Ledger struct {
	Count      int `json:"count"`
	Production int `json:"production"`
}

type Stock struct {
	Credits  Ledger `json:"credits"`
	Steel    Ledger `json:"steel"`
	Titanium Ledger `json:"titanium"`
	Plants   Ledger `json:"plants"`
	Energy   Ledger `json:"energy"`
	Heat     Ledger `json:"heat"`
}

// Of returns the ledger for r, or nil for an unknown resource.
func (s *Stock) Of(r Resource) *Ledger {
	switch r {
	case Credits:
		return &s.Credits
	case Steel:
		return &s.Steel
	case Titanium:
		return &s.Titanium
	case Plants:
		return &s.Plants
	case Energy:
		return &s.Energy
	case Heat:
		return &s.Heat
	}
	return nil
}

func (s Stock) Count(r Resource) int {
	if l := s.Of(r); l != nil {
		return l.Count
	}
	return 0
}

func (s Stock) Production(r Resource) int {
	if l := s.Of(r); l != nil {
		return l.Production
	}
	return 0
}

// Spend removes n of r, failing without change when the count is short.
func (s *Stock) Spend(r Resource, n int) error {
	l := s.Of(r)
	if l == nil || n < 0 {
		return ErrInsufficient
	}
	if l.Count < n {
		return ErrInsufficient
	}
	l.Count -= n
	return nil
}

// Remove takes up to n of r and returns how many were removed.
func (s *Stock) Remove(r Resource, n int) int {
	l := s.Of(r)
	if l == nil || n <= 0 {
		return 0
	}
	if n > l.Count {
		n = l.Count
	}
	l.Count -= n
	return n
}

func (s *Stock) Gain(r Resource, n int) {
	if l := s.Of(r); l != nil && n > 0 {
		l.Count += n
	}
}

// CardResource is a resource that lives on a board card rather than the player.
type CardResource string

const (
	Science  CardResource = "science"
	Microbes CardResource = "microbes"
	Animals  CardResource = "animals"
)

func (r CardResource) Valid() bool {
	return r == Science || r == Microbes || r == Animals
}

// CardResources reads as zero for kinds never set.
type CardResources map[CardResource]int

func (c CardResources) Get(r CardResource) int {
	if c == nil {
		return 0
	}
	return c[r]
}

func (c CardResources) Clone() CardResources {
	if c == nil {
		return nil
	}
	out := make(CardResources, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
