package cryptotax

// Holding is the open position of one asset at the end of a run.
type Holding struct {
	Asset string
	Lots  []Lot // Lots are the active lots, in consumption order.
}

func newHolding(inv *Inventory) Holding {
	h := Holding{Asset: inv.Asset()}
	for l := range inv.Lots() {
		h.Lots = append(h.Lots, *l)
	}
	return h
}

// Quantity is the total quantity held.
func (h Holding) Quantity() Quantity {
	var q Quantity
	for _, l := range h.Lots {
		q = q.Add(l.Remaining)
	}
	return q
}

// CostBasis is the cost basis still attached to the quantity held.
func (h Holding) CostBasis() Money {
	var m Money
	for _, l := range h.Lots {
		m = m.Add(l.RemainingCost())
	}
	return m
}
