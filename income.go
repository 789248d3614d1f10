package cryptotax

import "github.com/etnz/cryptotax/date"

// income recognizes the fair market value of a receipt as income and
// returns the lot it creates, whose cost basis is that same value so that
// a later disposal is not taxed twice.
func income(e receiveIncome) (Income, *Lot) {
	record := Income{
		ReceiptDate:     date.Of(e.at),
		Asset:           e.sym,
		Amount:          e.quantity,
		Price:           e.price,
		FairMarketValue: e.value,
		Type:            e.typ,
		Transaction:     e.tx,
	}
	return record, newLot(e.seq, e.sym, e.quantity, e.value, e.at, e.tx)
}
