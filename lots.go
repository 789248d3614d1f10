package cryptotax

import (
	"fmt"
	"time"

	"github.com/etnz/cryptotax/date"
)

// Lot is a quantity of an asset acquired at one point in time, carrying its
// cost basis. Only Remaining changes after creation, and only downward.
type Lot struct {
	ID        string    // ID is "lot-<sequence>".
	Asset     string    // Asset is the symbol of the asset held.
	Original  Quantity  // Original is the quantity acquired.
	Remaining Quantity  // Remaining is the quantity not yet disposed of.
	CostBasis Money     // CostBasis is the total cost of the Original quantity.
	Acquired  time.Time // Acquired is the acquisition instant (UTC).
	Sequence  uint64    // Sequence orders lots created at the same instant.
	Origin    string    // Origin is the ID of the transaction that created the lot.

	unitCost Money // CostBasis / Original, computed once.
	released Money // cost basis already attributed to disposals.
}

// newLot creates a Lot. Callers guarantee that quantity is positive.
func newLot(seq uint64, asset string, quantity Quantity, cost Money, acquired time.Time, origin string) *Lot {
	return &Lot{
		ID:        fmt.Sprintf("lot-%d", seq),
		Asset:     asset,
		Original:  quantity,
		Remaining: quantity,
		CostBasis: cost,
		Acquired:  acquired.UTC(),
		Sequence:  seq,
		Origin:    origin,
		unitCost:  cost.Div(quantity),
		released:  M(0, cost.Currency()),
	}
}

// UnitCost returns the cost basis of one unit of the lot.
func (l *Lot) UnitCost() Money { return l.unitCost }

// AcquiredOn returns the acquisition calendar date.
func (l *Lot) AcquiredOn() date.Date { return date.Of(l.Acquired) }

// Exhausted reports whether nothing remains in the lot.
func (l *Lot) Exhausted() bool { return l.Remaining.IsZero() }

// RemainingCost returns the cost basis still attached to the remaining quantity.
func (l *Lot) RemainingCost() Money { return l.CostBasis.Sub(l.released) }

// take removes quantity from the lot and returns the cost basis released.
// Taking the whole remaining quantity releases exactly the remaining cost, so
// that a fully consumed lot never leaks rounding residue.
func (l *Lot) take(quantity Quantity) (Money, error) {
	if !quantity.IsPositive() {
		return Money{}, fmt.Errorf("%w: take %s from %s", ErrInvariant, quantity, l.ID)
	}
	remaining := l.Remaining.Sub(quantity)
	if remaining.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s remaining would be %s", ErrInvariant, l.ID, remaining)
	}
	var cost Money
	if remaining.IsZero() {
		cost = l.RemainingCost()
	} else {
		cost = l.unitCost.Mul(quantity)
	}
	l.Remaining = remaining
	l.released = l.released.Add(cost)
	return cost, nil
}
