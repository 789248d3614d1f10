package cryptotax

import (
	"fmt"
	"iter"
	"time"
)

// Slice is the part of a single lot consumed by a disposal.
type Slice struct {
	Lot       *Lot
	Amount    Quantity // Amount taken from the lot.
	CostBasis Money    // CostBasis released by the lot for Amount.
}

// Inventory holds the active lots of exactly one asset. Lots are kept in
// insertion order; the consumption order is computed on demand by the Method.
type Inventory struct {
	asset  string
	method Method
	lots   []*Lot
}

// NewInventory creates an empty inventory for asset.
func NewInventory(asset string, method Method) *Inventory {
	return &Inventory{asset: asset, method: method}
}

// Asset returns the symbol of the inventory.
func (inv *Inventory) Asset() string { return inv.asset }

// Add appends a lot to the active set.
func (inv *Inventory) Add(lot *Lot) error {
	if lot.Asset != inv.asset {
		return fmt.Errorf("%w: lot %s of %s added to %s inventory", ErrInvariant, lot.ID, lot.Asset, inv.asset)
	}
	if !lot.Remaining.IsPositive() {
		return fmt.Errorf("%w: lot %s is empty", ErrInvariant, lot.ID)
	}
	inv.lots = append(inv.lots, lot)
	return nil
}

// Lots iterates over the active lots in consumption order.
func (inv *Inventory) Lots() iter.Seq[*Lot] {
	return func(yield func(*Lot) bool) {
		for _, l := range inv.method.Order(inv.lots) {
			if !yield(l) {
				return
			}
		}
	}
}

// Len returns the number of active lots.
func (inv *Inventory) Len() int { return len(inv.lots) }

// Held returns the total remaining quantity.
func (inv *Inventory) Held() Quantity {
	var total Quantity
	for _, l := range inv.lots {
		total = total.Add(l.Remaining)
	}
	return total
}

// Consume withdraws amount units following the inventory method and returns
// one slice per lot touched. Exhausted lots leave the active set.
//
// If less than amount is held, everything is consumed and the returned error
// is an *InsufficientInventoryError; the slices are still valid. Any other
// error wraps ErrInvariant.
func (inv *Inventory) Consume(amount Quantity, asOf time.Time) ([]Slice, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: consume %s %s", ErrInvariant, amount, inv.asset)
	}
	var slices []Slice
	needed := amount
	for _, l := range inv.method.Order(inv.lots) {
		if needed.IsZero() {
			break
		}
		if l.Acquired.After(asOf) {
			return nil, fmt.Errorf("%w: %s acquired on %s after disposal on %s", ErrInvariant, l.ID, l.Acquired, asOf)
		}
		taken := l.Remaining.Min(needed)
		cost, err := l.take(taken)
		if err != nil {
			return nil, err
		}
		slices = append(slices, Slice{Lot: l, Amount: taken, CostBasis: cost})
		needed = needed.Sub(taken)
	}
	inv.prune()

	if needed.IsPositive() {
		return slices, &InsufficientInventoryError{
			Asset:     inv.asset,
			Requested: amount,
			Available: amount.Sub(needed),
		}
	}
	return slices, nil
}

// prune removes exhausted lots, keeping insertion order.
func (inv *Inventory) prune() {
	active := inv.lots[:0]
	for _, l := range inv.lots {
		if !l.Exhausted() {
			active = append(active, l)
		}
	}
	clear(inv.lots[len(active):])
	inv.lots = active
}
