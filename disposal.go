package cryptotax

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax/date"
)

// ShortfallPolicy decides how the unmatched part of an oversold disposal is
// accounted for.
type ShortfallPolicy int

const (
	// ShortfallExclude only reports the shortfall as a diagnostic. Its share
	// of the proceeds is not part of any record.
	ShortfallExclude ShortfallPolicy = iota
	// ShortfallZeroBasis also records the unmatched quantity as a disposal
	// with a zero cost basis, held for zero days.
	ShortfallZeroBasis
)

func (p ShortfallPolicy) String() string {
	switch p {
	case ShortfallExclude:
		return "exclude"
	case ShortfallZeroBasis:
		return "zero-basis"
	default:
		return "unknown"
	}
}

// ParseShortfallPolicy parses "exclude" or "zero-basis".
func ParseShortfallPolicy(s string) (ShortfallPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exclude":
		return ShortfallExclude, nil
	case "zero-basis", "zero":
		return ShortfallZeroBasis, nil
	default:
		return 0, fmt.Errorf("unknown shortfall policy %q", s)
	}
}

// disposal turns the slices consumed for d into gain/loss records.
//
// Proceeds are allocated to each slice in proportion to its amount. When
// the whole requested quantity is matched (by lots, or by a zero-basis
// shortfall record) the last record takes the rounding remainder so that the
// allocated proceeds add up exactly to the disposal proceeds.
func disposal(d disposeLot, slices []Slice, shortfall Quantity, method Method, policy ShortfallPolicy) []GainLoss {
	on := date.Of(d.at)
	records := make([]GainLoss, 0, len(slices)+1)
	allocated := M(0, d.proceeds.Currency())

	for i, s := range slices {
		proceeds := d.proceeds.Mul(s.Amount).Div(d.quantity)
		if shortfall.IsZero() && i == len(slices)-1 {
			proceeds = d.proceeds.Sub(allocated)
		}
		allocated = allocated.Add(proceeds)

		acquired := s.Lot.AcquiredOn()
		days := on.Sub(acquired)
		records = append(records, GainLoss{
			DisposalDate: on,
			Asset:        d.sym,
			Amount:       s.Amount,
			Proceeds:     proceeds,
			CostBasis:    s.CostBasis,
			GainLoss:     proceeds.Sub(s.CostBasis),
			AcquiredDate: acquired,
			HoldingDays:  days,
			Term:         termOf(days),
			Method:       method,
			Kind:         d.kind,
			Transaction:  d.tx,
			Lot:          s.Lot.ID,
		})
	}

	if shortfall.IsPositive() && policy == ShortfallZeroBasis {
		proceeds := d.proceeds.Sub(allocated)
		zero := M(0, d.proceeds.Currency())
		records = append(records, GainLoss{
			DisposalDate: on,
			Asset:        d.sym,
			Amount:       shortfall,
			Proceeds:     proceeds,
			CostBasis:    zero,
			GainLoss:     proceeds,
			AcquiredDate: on,
			HoldingDays:  0,
			Term:         ShortTerm,
			Method:       method,
			Kind:         Shortfall,
			Transaction:  d.tx,
		})
	}
	return records
}
