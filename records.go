package cryptotax

import (
	"github.com/etnz/cryptotax/date"
)

// Term is the holding period classification of a gain or loss.
type Term string

const (
	ShortTerm Term = "short"
	LongTerm  Term = "long"
)

// LongTermDays is the holding period, in days, from which a gain is long term.
const LongTermDays = 365

// termOf classifies a holding period.
func termOf(days int) Term {
	if days >= LongTermDays {
		return LongTerm
	}
	return ShortTerm
}

// DisposalKind tells what produced a GainLoss record.
type DisposalKind string

const (
	Sale       DisposalKind = "sale"
	Withdrawal DisposalKind = "withdrawal"
	FeePayment DisposalKind = "fee"       // FeePayment is a fee paid in a non quote asset.
	Shortfall  DisposalKind = "shortfall" // Shortfall is the unmatched part of an oversold disposal.
)

// GainLoss is the realized result of disposing of a slice of a single lot.
type GainLoss struct {
	DisposalDate date.Date
	Asset        string
	Amount       Quantity
	Proceeds     Money
	CostBasis    Money
	GainLoss     Money
	AcquiredDate date.Date
	HoldingDays  int
	Term         Term
	Method       Method
	Kind         DisposalKind
	Transaction  string // Transaction is the ID of the disposal transaction.
	Lot          string // Lot is the ID of the consumed lot, empty for a shortfall.
}

// MarshalJSON implements the json.Marshaler interface for GainLoss.
func (g GainLoss) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("disposal_date", g.DisposalDate)
	w.Append("asset", g.Asset)
	w.Append("amount_consumed", g.Amount)
	w.Append("proceeds_allocated", g.Proceeds)
	w.Append("cost_basis_consumed", g.CostBasis)
	w.Append("gain_loss", g.GainLoss)
	w.Optional("acquisition_date", g.AcquiredDate)
	w.Append("holding_days", g.HoldingDays)
	w.Append("term", g.Term)
	w.Append("accounting_method", g.Method)
	w.Append("kind", g.Kind)
	w.Append("source_transaction_id", g.Transaction)
	w.Optional("source_lot_id", g.Lot)
	return w.MarshalJSON()
}

// Income is ordinary income recognized when an asset is received (staking,
// airdrop). Its fair market value is the cost basis of the lot it creates.
type Income struct {
	ReceiptDate     date.Date
	Asset           string
	Amount          Quantity
	Price           Money
	FairMarketValue Money
	Type            TxType
	Transaction     string
}

// MarshalJSON implements the json.Marshaler interface for Income.
func (i Income) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("receipt_date", i.ReceiptDate)
	w.Append("asset", i.Asset)
	w.Append("amount", i.Amount)
	w.Append("price", i.Price)
	w.Append("fair_market_value", i.FairMarketValue)
	w.Append("type", i.Type)
	w.Append("source_transaction_id", i.Transaction)
	return w.MarshalJSON()
}
