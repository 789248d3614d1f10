package cryptotax

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// event is an atomic change to the inventory of a single asset. A
// transaction is lowered into one or more events; the ledger only replays
// events.
type event interface {
	position() int  // position is the rank of the event in the journal.
	asset() string  // asset is the inventory the event applies to.
	when() time.Time
}

type base struct {
	pos int
	at  time.Time
	tx  string // ID of the originating transaction.
	sym string
}

func (b base) position() int   { return b.pos }
func (b base) asset() string   { return b.sym }
func (b base) when() time.Time { return b.at }

// acquireLot adds a new lot.
type acquireLot struct {
	base
	seq      uint64
	quantity Quantity
	cost     Money
}

// disposeLot consumes lots and, when taxable, realizes gains.
type disposeLot struct {
	base
	quantity Quantity
	proceeds Money
	kind     DisposalKind
	taxable  bool
}

// receiveIncome recognizes income and adds a lot valued at fair market value.
type receiveIncome struct {
	base
	seq      uint64
	typ      TxType
	quantity Quantity
	price    Money
	value    Money
}

// note is a diagnostic raised while lowering a transaction.
type note struct {
	pos int
	Diagnostic
}

// Journal is the chronologically sorted list of events derived from a
// transaction stream, plus the diagnostics of the transactions that could
// not be lowered.
type Journal struct {
	cur          string
	events       []event
	notes        []note
	transactions int
}

// Events returns the number of events in the journal.
func (j *Journal) Events() int { return len(j.events) }

// NewJournal sorts txs by timestamp (stable on input order) and lowers them
// into events valued in currency. Transactions without an ID are named
// "tx-<n>" after their 1-based input position.
func NewJournal(txs []Transaction, currency string, nonTaxableWithdrawals bool) *Journal {
	currency = strings.ToUpper(currency)
	sorted := make([]Transaction, len(txs))
	for i, tx := range txs {
		if tx.ID == "" {
			tx.ID = fmt.Sprintf("tx-%d", i+1)
		}
		tx.Timestamp = tx.Timestamp.UTC()
		tx.BaseAsset = normalizeSymbol(tx.BaseAsset)
		tx.QuoteAsset = normalizeSymbol(tx.QuoteAsset)
		tx.FeeAsset = normalizeSymbol(tx.FeeAsset)
		sorted[i] = tx
	}
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Timestamp.Compare(b.Timestamp) })

	l := lowering{
		journal:     &Journal{cur: currency, events: make([]event, 0, len(txs)), transactions: len(txs)},
		withdrawals: !nonTaxableWithdrawals,
	}
	for _, tx := range sorted {
		l.lower(tx)
	}
	return l.journal
}

// normalizeSymbol makes "btc" and " BTC" the same inventory.
func normalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// lowering holds the counters used while building a journal.
type lowering struct {
	journal     *Journal
	withdrawals bool // true when withdrawals are taxable.
	pos         int
	seq         uint64
}

func (l *lowering) next() int {
	l.pos++
	return l.pos
}

func (l *lowering) nextLot() uint64 {
	l.seq++
	return l.seq
}

func (l *lowering) report(kind DiagnosticKind, tx Transaction, format string, args ...any) {
	l.journal.notes = append(l.journal.notes, note{
		pos: l.next(),
		Diagnostic: Diagnostic{
			Kind:        kind,
			Transaction: tx.ID,
			Asset:       tx.BaseAsset,
			Detail:      fmt.Sprintf(format, args...),
		},
	})
}

func (l *lowering) emit(e event) { l.journal.events = append(l.journal.events, e) }

func (l *lowering) base(tx Transaction, asset string) base {
	return base{pos: l.next(), at: tx.Timestamp, tx: tx.ID, sym: asset}
}

// lower appends the events of a single transaction.
func (l *lowering) lower(tx Transaction) {
	cur := l.journal.cur
	if err := tx.check(); err != nil {
		l.report(SkippedTransaction, tx, "%s", strings.ReplaceAll(err.Error(), "\n", "; "))
		return
	}
	if tx.QuoteAsset != "" && !strings.EqualFold(tx.QuoteAsset, cur) {
		l.report(CurrencyMismatch, tx, "valued in %s, tax currency is %s", tx.QuoteAsset, cur)
		return
	}

	value, valued := tx.value()
	value = value.In(cur)
	cashFee := M(0, cur)
	if tx.FeeAmount.IsPositive() && tx.feeInCash(cur) {
		cashFee = M(tx.FeeAmount.Decimal(), cur)
	}

	switch tx.Type {
	case TxBuy, TxDeposit:
		if !valued {
			if tx.Type == TxBuy {
				l.report(SkippedTransaction, tx, "buy has neither a quote amount nor a price")
				return
			}
			l.report(MissingValuation, tx, "deposit of %s %s recorded with a zero cost basis", tx.BaseAmount, tx.BaseAsset)
		}
		l.emit(acquireLot{base: l.base(tx, tx.BaseAsset), seq: l.nextLot(), quantity: tx.BaseAmount, cost: value.Add(cashFee)})

	case TxSell, TxWithdraw:
		kind, taxable := Sale, true
		if tx.Type == TxWithdraw {
			kind, taxable = Withdrawal, l.withdrawals
		}
		if !valued {
			if tx.Type == TxSell {
				l.report(SkippedTransaction, tx, "sell has neither a quote amount nor a price")
				return
			}
			if taxable {
				l.report(MissingValuation, tx, "withdrawal of %s %s has zero proceeds", tx.BaseAmount, tx.BaseAsset)
			}
		}
		l.emit(disposeLot{base: l.base(tx, tx.BaseAsset), quantity: tx.BaseAmount, proceeds: value.Sub(cashFee), kind: kind, taxable: taxable})

	case TxFee:
		l.emit(disposeLot{base: l.base(tx, tx.BaseAsset), quantity: tx.BaseAmount, proceeds: M(0, cur), kind: FeePayment, taxable: true})

	case TxStake, TxAirdrop:
		// Cash fees on income are not deducted: income is the fair market value.
		price := tx.Price.In(cur)
		switch {
		case !tx.Price.IsZero():
			value = price.Mul(tx.BaseAmount)
		case !tx.QuoteAmount.IsZero():
			price = value.Div(tx.BaseAmount)
		default:
			l.report(SkippedTransaction, tx, "%s has no fair market value", tx.Type)
			return
		}
		l.emit(receiveIncome{base: l.base(tx, tx.BaseAsset), seq: l.nextLot(), typ: tx.Type, quantity: tx.BaseAmount, price: price, value: value})
	}

	if tx.assetFee(cur) {
		l.emit(disposeLot{base: l.base(tx, tx.FeeAsset), quantity: tx.FeeAmount, proceeds: M(0, cur), kind: FeePayment, taxable: true})
	}
}

// shards splits the events by asset, keeping the journal order in each shard.
func (j *Journal) shards() [][]event {
	index := make(map[string]int)
	var shards [][]event
	for _, e := range j.events {
		i, ok := index[e.asset()]
		if !ok {
			i = len(shards)
			index[e.asset()] = i
			shards = append(shards, nil)
		}
		shards[i] = append(shards[i], e)
	}
	return shards
}
