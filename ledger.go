package cryptotax

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config is the configuration of a Ledger, fixed for all its runs.
type Config struct {
	Method      Method // Method is the lot selection strategy.
	TaxCurrency string // TaxCurrency is the ISO-4217 currency all values are expressed in.
	Shortfall   ShortfallPolicy
	// NonTaxableWithdrawals makes withdrawals consume lots without realizing
	// any gain, as transfers to a wallet the user still owns.
	NonTaxableWithdrawals bool
	// Parallel replays the inventories of distinct assets concurrently. The
	// result is identical to a sequential run.
	Parallel bool
	Logger   *zerolog.Logger // Logger defaults to a disabled logger.
}

// Ledger computes capital gains and income from a transaction stream. A
// Ledger holds no state between runs: every Run starts from empty
// inventories.
type Ledger struct {
	cfg Config
	log zerolog.Logger
}

// NewLedger validates cfg and creates a Ledger.
func NewLedger(cfg Config) (*Ledger, error) {
	if !cfg.Method.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(cfg.Method))
	}
	if err := ValidateCurrency(cfg.TaxCurrency); err != nil {
		return nil, fmt.Errorf("invalid tax currency: %w", err)
	}
	cfg.TaxCurrency = strings.ToUpper(cfg.TaxCurrency)
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Ledger{cfg: cfg, log: log.With().Str("method", cfg.Method.String()).Logger()}, nil
}

// Config returns the ledger configuration.
func (l *Ledger) Config() Config { return l.cfg }

// Run processes txs in chronological order and returns the complete result.
// On error (cancellation or invariant violation) no partial result is
// returned.
func (l *Ledger) Run(ctx context.Context, txs []Transaction) (*Result, error) {
	journal := NewJournal(txs, l.cfg.TaxCurrency, l.cfg.NonTaxableWithdrawals)
	for _, n := range journal.notes {
		l.log.Warn().Str("tx", n.Transaction).Str("kind", string(n.Kind)).Msg(n.Detail)
	}

	shards := [][]event{journal.events}
	if l.cfg.Parallel {
		shards = journal.shards()
	}
	books := make([]*book, len(shards))
	for i := range shards {
		books[i] = l.newBook()
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, events := range shards {
		replay := func() error { return books[i].replay(ctx, events) }
		if !l.cfg.Parallel {
			if err := replay(); err != nil {
				return nil, err
			}
			continue
		}
		g.Go(replay)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := l.collect(journal, books)
	l.log.Info().
		Int("transactions", res.Transactions).
		Int("gains", len(res.Gains)).
		Int("incomes", len(res.Incomes)).
		Int("diagnostics", len(res.Diagnostics)).
		Str("short_term", res.ShortTerm.String()).
		Str("long_term", res.LongTerm.String()).
		Str("income", res.Income.String()).
		Msg("tax calculation complete")
	return res, nil
}

// collect merges the books in journal order and computes the totals.
func (l *Ledger) collect(journal *Journal, books []*book) *Result {
	cur := l.cfg.TaxCurrency
	res := &Result{
		Method:       l.cfg.Method,
		Currency:     cur,
		ShortTerm:    M(0, cur),
		LongTerm:     M(0, cur),
		Income:       M(0, cur),
		Transactions: journal.transactions,
	}

	var gains []ranked[GainLoss]
	var incomes []ranked[Income]
	var diags []ranked[Diagnostic]
	for _, n := range journal.notes {
		diags = append(diags, ranked[Diagnostic]{n.pos, n.Diagnostic})
	}
	holdings := make(map[string]*Inventory)
	for _, b := range books {
		gains = append(gains, b.gains...)
		incomes = append(incomes, b.incomes...)
		diags = append(diags, b.diags...)
		maps.Copy(holdings, b.inventories)
	}
	res.Gains = sortRanked(gains)
	res.Incomes = sortRanked(incomes)
	res.Diagnostics = sortRanked(diags)

	for _, g := range res.Gains {
		res.add(g)
	}
	for _, i := range res.Incomes {
		res.Income = res.Income.Add(i.FairMarketValue)
	}
	for _, asset := range slices.Sorted(maps.Keys(holdings)) {
		if h := newHolding(holdings[asset]); len(h.Lots) > 0 {
			res.Holdings = append(res.Holdings, h)
		}
	}
	return res
}

// ranked is a value tagged with the journal position of the event that
// produced it.
type ranked[T any] struct {
	pos int
	v   T
}

func sortRanked[T any](list []ranked[T]) []T {
	slices.SortStableFunc(list, func(a, b ranked[T]) int { return a.pos - b.pos })
	out := make([]T, len(list))
	for i, r := range list {
		out[i] = r.v
	}
	return out
}

// book is the state of one replay: the inventories it owns and what they
// produced. Books never share inventories.
type book struct {
	method      Method
	policy      ShortfallPolicy
	log         zerolog.Logger
	inventories map[string]*Inventory
	gains       []ranked[GainLoss]
	incomes     []ranked[Income]
	diags       []ranked[Diagnostic]
}

func (l *Ledger) newBook() *book {
	return &book{
		method:      l.cfg.Method,
		policy:      l.cfg.Shortfall,
		log:         l.log,
		inventories: make(map[string]*Inventory),
	}
}

// inventory returns the inventory of asset, created on first reference.
func (b *book) inventory(asset string) *Inventory {
	inv, ok := b.inventories[asset]
	if !ok {
		inv = NewInventory(asset, b.method)
		b.inventories[asset] = inv
	}
	return inv
}

func (b *book) replay(ctx context.Context, events []event) error {
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.apply(e); err != nil {
			return err
		}
	}
	return nil
}

func (b *book) apply(e event) error {
	switch v := e.(type) {
	case acquireLot:
		lot := newLot(v.seq, v.sym, v.quantity, v.cost, v.at, v.tx)
		b.log.Debug().Str("tx", v.tx).Str("lot", lot.ID).Str("asset", v.sym).
			Stringer("quantity", v.quantity).Stringer("cost", v.cost).Msg("acquired lot")
		return b.inventory(v.sym).Add(lot)

	case receiveIncome:
		record, lot := income(v)
		b.incomes = append(b.incomes, ranked[Income]{v.pos, record})
		b.log.Debug().Str("tx", v.tx).Str("lot", lot.ID).Str("asset", v.sym).
			Stringer("quantity", v.quantity).Stringer("value", v.value).Msg("income received")
		return b.inventory(v.sym).Add(lot)

	case disposeLot:
		return b.dispose(v)

	default:
		return fmt.Errorf("%w: unhandled event %T", ErrInvariant, e)
	}
}

func (b *book) dispose(d disposeLot) error {
	consumed, err := b.inventory(d.sym).Consume(d.quantity, d.at)
	var shortfall Quantity
	var insufficient *InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		shortfall = insufficient.Shortfall()
		b.diags = append(b.diags, ranked[Diagnostic]{d.pos, Diagnostic{
			Kind:        InsufficientInventory,
			Transaction: d.tx,
			Asset:       d.sym,
			Amount:      shortfall,
			Detail:      insufficient.Error(),
		}})
		b.log.Warn().Str("tx", d.tx).Str("asset", d.sym).Stringer("shortfall", shortfall).Msg("insufficient inventory")
	case err != nil:
		return fmt.Errorf("disposal %s: %w", d.tx, err)
	}

	for _, s := range consumed {
		b.log.Debug().Str("tx", d.tx).Str("lot", s.Lot.ID).Str("asset", d.sym).
			Stringer("quantity", s.Amount).Stringer("cost", s.CostBasis).Msg("consumed lot")
	}
	if !d.taxable {
		return nil
	}
	for _, g := range disposal(d, consumed, shortfall, b.method, b.policy) {
		b.gains = append(b.gains, ranked[GainLoss]{d.pos, g})
	}
	return nil
}
