package economy

import (
	"fmt"
	"sort"
)

// Rates maps each currency accepted for one payment to its credit value.
type Rates map[Resource]int

// Fee is how a player splits a payment across currencies.
type Fee map[Resource]int

const (
	SteelRate        = 2
	TitaniumRate     = 3
	PhobologTitanium = 4
)

// PaymentRates builds the accepted currencies for a project payment.
// Steel is accepted for building projects, titanium for space projects and
// heat only when the corporation allows it.
func PaymentRates(building, space bool, titaniumRate int, heatAsCredits bool) Rates {
	r := Rates{Credits: 1}
	if building {
		r[Steel] = SteelRate
	}
	if space {
		if titaniumRate <= 0 {
			titaniumRate = TitaniumRate
		}
		r[Titanium] = titaniumRate
	}
	if heatAsCredits {
		r[Heat] = 1
	}
	return r
}

// CreditsOnly reports whether nothing but credits is accepted.
func (r Rates) CreditsOnly() bool {
	for res := range r {
		if res != Credits {
			return false
		}
	}
	return true
}

// Sorted returns the accepted currencies by descending rate, credits last.
func (r Rates) Sorted() []Resource {
	out := make([]Resource, 0, len(r))
	for res := range r {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if r[out[i]] != r[out[j]] {
			return r[out[i]] > r[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Potential is the most credit value the stock can put towards a payment.
func Potential(s Stock, rates Rates) int {
	total := 0
	for res, rate := range rates {
		total += s.Count(res) * rate
	}
	return total
}

// Value is the credit value of a fee under the given rates, ignoring
// currencies the rates do not accept.
func (f Fee) Value(rates Rates) int {
	v := 0
	for res, n := range f {
		v += n * rates[res]
	}
	return v
}

func (f Fee) Clone() Fee {
	if f == nil {
		return nil
	}
	out := make(Fee, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ValidateFee checks that the fee only uses accepted currencies, covers the
// price and is within what the stock holds. It never changes the stock.
func ValidateFee(s Stock, price int, fee Fee, rates Rates) error {
	for res, n := range fee {
		if n < 0 {
			return fmt.Errorf("negative %s in fee", res)
		}
		if n == 0 {
			continue
		}
		if _, ok := rates[res]; !ok {
			return fmt.Errorf("%s not accepted for this payment", res)
		}
		if s.Count(res) < n {
			return fmt.Errorf("%w: %s %d < %d", ErrInsufficient, res, s.Count(res), n)
		}
	}
	if v := fee.Value(rates); v < price {
		return fmt.Errorf("fee worth %d does not cover price %d", v, price)
	}
	return nil
}

// Debit removes an already validated fee from the stock.
func Debit(s *Stock, fee Fee) {
	for res, n := range fee {
		if l := s.Of(res); l != nil && n > 0 {
			l.Count -= n
		}
	}
}
