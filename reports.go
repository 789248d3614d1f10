package cryptotax

import (
	"github.com/etnz/cryptotax/date"
)

// Result is the complete output of a ledger run.
type Result struct {
	Method       Method
	Currency     string
	ShortTerm    Money // ShortTerm is the net short term gain or loss.
	LongTerm     Money // LongTerm is the net long term gain or loss.
	Income       Money // Income is the total fair market value of income received.
	Gains        []GainLoss
	Incomes      []Income
	Diagnostics  []Diagnostic
	Holdings     []Holding // Holdings are the open positions, sorted by asset.
	Transactions int       // Transactions is the number of input transactions.
}

// add accumulates a record into the short or long term total.
func (r *Result) add(g GainLoss) {
	if g.Term == LongTerm {
		r.LongTerm = r.LongTerm.Add(g.GainLoss)
	} else {
		r.ShortTerm = r.ShortTerm.Add(g.GainLoss)
	}
}

// CapitalGains is the net capital gain or loss, short and long term.
func (r *Result) CapitalGains() Money { return r.ShortTerm.Add(r.LongTerm) }

// Assets returns the distinct assets disposed of, in order of first disposal.
func (r *Result) Assets() []string {
	seen := make(map[string]bool)
	var assets []string
	for _, g := range r.Gains {
		if !seen[g.Asset] {
			seen[g.Asset] = true
			assets = append(assets, g.Asset)
		}
	}
	return assets
}

// Holding returns the open position in asset, if any.
func (r *Result) Holding(asset string) (Holding, bool) {
	for _, h := range r.Holdings {
		if h.Asset == asset {
			return h, true
		}
	}
	return Holding{}, false
}

// Filter returns the records dated within rng with their totals. The lots
// consumed are those of the full history: filtering happens after the run.
// Holdings and diagnostics are kept as is. A zero range returns r.
func (r *Result) Filter(rng date.Range) *Result {
	if rng.IsZero() {
		return r
	}
	f := &Result{
		Method:       r.Method,
		Currency:     r.Currency,
		ShortTerm:    M(0, r.Currency),
		LongTerm:     M(0, r.Currency),
		Income:       M(0, r.Currency),
		Diagnostics:  r.Diagnostics,
		Holdings:     r.Holdings,
		Transactions: r.Transactions,
	}
	for _, g := range r.Gains {
		if rng.Contains(g.DisposalDate) {
			f.Gains = append(f.Gains, g)
			f.add(g)
		}
	}
	for _, i := range r.Incomes {
		if rng.Contains(i.ReceiptDate) {
			f.Incomes = append(f.Incomes, i)
			f.Income = f.Income.Add(i.FairMarketValue)
		}
	}
	return f
}
