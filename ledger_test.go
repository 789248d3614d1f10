package cryptotax

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/etnz/cryptotax/date"
	"github.com/google/go-cmp/cmp"
)

func TestNewLedger(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Method: HIFO, TaxCurrency: "usd"}},
		{name: "unknown method", cfg: Config{Method: Method(9), TaxCurrency: "USD"}, wantErr: true},
		{name: "missing currency", cfg: Config{Method: FIFO}, wantErr: true},
		{name: "unknown currency", cfg: Config{Method: FIFO, TaxCurrency: "XYZW"}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLedger(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewLedger() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && l.Config().TaxCurrency != "USD" {
				t.Errorf("TaxCurrency = %q, want USD", l.Config().TaxCurrency)
			}
		})
	}
}

func TestLedger_MixedTerm(t *testing.T) {
	res := run(t, Config{Method: FIFO},
		NewBuy(day(0), "BTC", Q(1), USD(10000)),
		NewBuy(day(40), "BTC", Q(1), USD(20000)),
		NewSell(day(400), "BTC", Q(1.5), USD(30000)),
	)

	want := []GainLoss{
		{
			DisposalDate: date.Of(day(400)), Asset: "BTC", Amount: Q(1),
			Proceeds: USD(20000), CostBasis: USD(10000), GainLoss: USD(10000),
			AcquiredDate: date.Of(day(0)), HoldingDays: 400, Term: LongTerm,
			Method: FIFO, Kind: Sale, Transaction: "tx-3", Lot: "lot-1",
		},
		{
			DisposalDate: date.Of(day(400)), Asset: "BTC", Amount: Q(0.5),
			Proceeds: USD(10000), CostBasis: USD(10000), GainLoss: USD(0),
			AcquiredDate: date.Of(day(40)), HoldingDays: 360, Term: ShortTerm,
			Method: FIFO, Kind: Sale, Transaction: "tx-3", Lot: "lot-2",
		},
	}
	if diff := cmp.Diff(want, res.Gains, resultOptions); diff != "" {
		t.Errorf("Gains mismatch (-want +got):\n%s", diff)
	}
	assertMoney(t, "LongTerm", res.LongTerm, USD(10000))
	assertMoney(t, "ShortTerm", res.ShortTerm, USD(0))

	h, ok := res.Holding("BTC")
	if !ok {
		t.Fatal("no BTC holding left")
	}
	assertQuantity(t, "held", h.Quantity(), Q(0.5))
	assertMoney(t, "held cost", h.CostBasis(), USD(10000))
}

func TestLedger_HIFOTieBreak(t *testing.T) {
	res := run(t, Config{Method: HIFO},
		NewBuy(day(0), "ETH", Q(1), USD(2000)).WithID("early"),
		NewBuy(day(10), "ETH", Q(1), USD(2000)).WithID("late"),
		NewSell(day(20), "ETH", Q(1), USD(2500)),
	)
	if len(res.Gains) != 1 {
		t.Fatalf("got %d gains, want 1", len(res.Gains))
	}
	if got := res.Gains[0].AcquiredDate; got != date.Of(day(0)) {
		t.Errorf("HIFO consumed the lot acquired on %s, want the earliest %s", got, date.Of(day(0)))
	}
}

func TestLedger_IncomeThenDisposal(t *testing.T) {
	res := run(t, Config{Method: FIFO},
		NewIncome(TxAirdrop, day(0), "TOK", Q(10), USD(5)),
		NewSell(day(1), "TOK", Q(10), USD(80)),
	)

	if len(res.Incomes) != 1 {
		t.Fatalf("got %d incomes, want 1", len(res.Incomes))
	}
	assertMoney(t, "FairMarketValue", res.Incomes[0].FairMarketValue, USD(50))
	assertMoney(t, "Income", res.Income, USD(50))

	if len(res.Gains) != 1 {
		t.Fatalf("got %d gains, want 1", len(res.Gains))
	}
	g := res.Gains[0]
	assertMoney(t, "CostBasis", g.CostBasis, USD(50))
	assertMoney(t, "GainLoss", g.GainLoss, USD(30))
	if g.HoldingDays != 1 || g.Term != ShortTerm {
		t.Errorf("held %d days %s, want 1 day short", g.HoldingDays, g.Term)
	}
	if len(res.Holdings) != 0 {
		t.Errorf("Holdings = %v, want none", res.Holdings)
	}
}

func TestLedger_InsufficientInventory(t *testing.T) {
	txs := []Transaction{
		NewBuy(day(0), "BTC", Q(1), USD(10000)),
		NewSell(day(10), "BTC", Q(2), USD(50000)),
	}

	t.Run("exclude", func(t *testing.T) {
		res := run(t, Config{Method: FIFO}, txs...)
		if len(res.Gains) != 1 {
			t.Fatalf("got %d gains, want 1", len(res.Gains))
		}
		assertQuantity(t, "Amount", res.Gains[0].Amount, Q(1))
		assertMoney(t, "Proceeds", res.Gains[0].Proceeds, USD(25000))
		assertMoney(t, "ShortTerm", res.ShortTerm, USD(15000))

		if len(res.Diagnostics) != 1 {
			t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
		}
		d := res.Diagnostics[0]
		if d.Kind != InsufficientInventory || d.Transaction != "tx-2" || d.Asset != "BTC" {
			t.Errorf("diagnostic = %+v", d)
		}
		assertQuantity(t, "shortfall", d.Amount, Q(1))
	})

	t.Run("zero basis", func(t *testing.T) {
		res := run(t, Config{Method: FIFO, Shortfall: ShortfallZeroBasis}, txs...)
		if len(res.Gains) != 2 {
			t.Fatalf("got %d gains, want 2", len(res.Gains))
		}
		if res.Gains[1].Kind != Shortfall {
			t.Errorf("Kind = %q, want shortfall", res.Gains[1].Kind)
		}
		assertMoney(t, "ShortTerm", res.ShortTerm, USD(40000))
		if len(res.Diagnostics) != 1 {
			t.Errorf("got %d diagnostics, want 1", len(res.Diagnostics))
		}
	})
}

func TestLedger_Fees(t *testing.T) {
	t.Run("cash fees adjust cost and proceeds", func(t *testing.T) {
		res := run(t, Config{Method: FIFO},
			NewBuy(day(0), "BTC", Q(1), USD(100)).WithFee(Q(1), "USD"),
			NewSell(day(1), "BTC", Q(1), USD(200)).WithFee(Q(2), ""),
		)
		if len(res.Gains) != 1 {
			t.Fatalf("got %d gains, want 1", len(res.Gains))
		}
		assertMoney(t, "CostBasis", res.Gains[0].CostBasis, USD(101))
		assertMoney(t, "Proceeds", res.Gains[0].Proceeds, USD(198))
	})

	t.Run("asset fee is a disposal", func(t *testing.T) {
		res := run(t, Config{Method: FIFO},
			NewBuy(day(0), "BNB", Q(1), USD(300)),
			NewBuy(day(5), "ETH", Q(1), USD(1000)).WithFee(Q(0.01), "bnb"),
		)
		if len(res.Gains) != 1 {
			t.Fatalf("got %d gains, want 1", len(res.Gains))
		}
		g := res.Gains[0]
		if g.Kind != FeePayment || g.Asset != "BNB" || g.Transaction != "tx-2" {
			t.Errorf("fee record = kind %q asset %q tx %q", g.Kind, g.Asset, g.Transaction)
		}
		assertMoney(t, "Proceeds", g.Proceeds, USD(0))
		assertMoney(t, "CostBasis", g.CostBasis, USD(3))
		assertMoney(t, "GainLoss", g.GainLoss, USD(-3))

		eth, _ := res.Holding("ETH")
		assertMoney(t, "ETH cost", eth.CostBasis(), USD(1000))
		bnb, _ := res.Holding("BNB")
		assertQuantity(t, "BNB held", bnb.Quantity(), Q(0.99))
	})
}

func TestLedger_Withdrawals(t *testing.T) {
	txs := []Transaction{
		NewBuy(day(0), "BTC", Q(2), USD(20000)),
		NewWithdraw(day(30), "BTC", Q(1), USD(15000)),
	}

	res := run(t, Config{Method: FIFO}, txs...)
	if len(res.Gains) != 1 || res.Gains[0].Kind != Withdrawal {
		t.Fatalf("Gains = %v, want one withdrawal", res.Gains)
	}
	assertMoney(t, "GainLoss", res.Gains[0].GainLoss, USD(5000))

	res = run(t, Config{Method: FIFO, NonTaxableWithdrawals: true}, txs...)
	if len(res.Gains) != 0 {
		t.Errorf("non taxable withdrawal produced %d gains", len(res.Gains))
	}
	h, _ := res.Holding("BTC")
	assertQuantity(t, "held after withdrawal", h.Quantity(), Q(1))
}

func TestLedger_FeeAndTransferOut(t *testing.T) {
	res := run(t, Config{Method: FIFO},
		NewBuy(day(0), "BTC", Q(1), USD(10000)),
		Transaction{Timestamp: day(1), Type: ParseTxType("fee"), BaseAsset: "BTC", BaseAmount: Q(0.1)},
		Transaction{Timestamp: day(2), Type: ParseTxType("transfer_out"), BaseAsset: "BTC", BaseAmount: Q(0.1), QuoteAsset: "USD", QuoteAmount: USD(1500)},
	)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v, want none", res.Diagnostics)
	}
	if len(res.Gains) != 2 {
		t.Fatalf("got %d gains, want 2: %v", len(res.Gains), res.Gains)
	}

	fee := res.Gains[0]
	if fee.Kind != FeePayment || fee.Transaction != "tx-2" {
		t.Errorf("gains[0] = kind %q tx %q, want fee tx-2", fee.Kind, fee.Transaction)
	}
	assertMoney(t, "fee Proceeds", fee.Proceeds, USD(0))
	assertMoney(t, "fee GainLoss", fee.GainLoss, USD(-1000))

	out := res.Gains[1]
	if out.Kind != Withdrawal || out.Transaction != "tx-3" {
		t.Errorf("gains[1] = kind %q tx %q, want withdrawal tx-3", out.Kind, out.Transaction)
	}
	assertMoney(t, "transfer GainLoss", out.GainLoss, USD(500))

	h, _ := res.Holding("BTC")
	assertQuantity(t, "BTC held", h.Quantity(), Q(0.8))
}

func TestLedger_SymbolCase(t *testing.T) {
	res := run(t, Config{Method: FIFO},
		NewBuy(day(0), "bnb", Q(1), USD(300)),
		NewBuy(day(1), "ETH", Q(1), USD(1000)).WithFee(Q(0.01), "bnb"),
		NewSell(day(2), " Eth", Q(1), USD(1100)),
	)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v, want none", res.Diagnostics)
	}
	if len(res.Gains) != 2 {
		t.Fatalf("got %d gains, want 2: %v", len(res.Gains), res.Gains)
	}
	if g := res.Gains[0]; g.Kind != FeePayment || g.Asset != "BNB" {
		t.Errorf("gains[0] = kind %q asset %q, want a BNB fee", g.Kind, g.Asset)
	}
	if g := res.Gains[1]; g.Kind != Sale || g.Asset != "ETH" {
		t.Errorf("gains[1] = kind %q asset %q, want an ETH sale", g.Kind, g.Asset)
	}
	assertMoney(t, "ETH GainLoss", res.Gains[1].GainLoss, USD(100))

	if len(res.Holdings) != 1 || res.Holdings[0].Asset != "BNB" {
		t.Fatalf("Holdings = %v, want BNB only", res.Holdings)
	}
	assertQuantity(t, "BNB held", res.Holdings[0].Quantity(), Q(0.99))
}

func TestLedger_IncomeCashFee(t *testing.T) {
	// A cash fee on income does not reduce the fair market value.
	res := run(t, Config{Method: FIFO},
		NewIncome(TxStake, day(0), "ETH", Q(2), USD(1000)).WithFee(Q(5), "USD"),
	)
	if len(res.Diagnostics) != 0 || len(res.Gains) != 0 {
		t.Fatalf("Diagnostics = %v, Gains = %v, want none", res.Diagnostics, res.Gains)
	}
	assertMoney(t, "Income", res.Income, USD(2000))
	h, _ := res.Holding("ETH")
	assertMoney(t, "ETH cost", h.CostBasis(), USD(2000))
}

func TestLedger_Diagnostics(t *testing.T) {
	res := run(t, Config{Method: FIFO},
		NewBuy(day(0), "BTC", Q(0), USD(100)),
		Transaction{ID: "odd", Timestamp: day(1), Type: "swap", BaseAsset: "BTC", BaseAmount: Q(1)},
		NewBuy(day(2), "BTC", Q(1), M(100, "EUR")),
		NewDeposit(day(3), "SOL", Q(5), Money{}),
		NewBuy(day(4), "ETH", Q(1), Money{}),
		NewIncome(TxStake, day(5), "SOL", Q(1), Money{}),
	)

	want := []struct {
		kind DiagnosticKind
		tx   string
	}{
		{SkippedTransaction, "tx-1"},
		{SkippedTransaction, "odd"},
		{CurrencyMismatch, "tx-3"},
		{MissingValuation, "tx-4"},
		{SkippedTransaction, "tx-5"},
		{SkippedTransaction, "tx-6"},
	}
	if len(res.Diagnostics) != len(want) {
		t.Fatalf("got %d diagnostics, want %d: %v", len(res.Diagnostics), len(want), res.Diagnostics)
	}
	for i, w := range want {
		if d := res.Diagnostics[i]; d.Kind != w.kind || d.Transaction != w.tx {
			t.Errorf("diagnostic[%d] = %s %s, want %s %s", i, d.Transaction, d.Kind, w.tx, w.kind)
		}
	}
	if len(res.Holdings) != 1 || res.Holdings[0].Asset != "SOL" {
		t.Errorf("Holdings = %v, want the zero cost SOL deposit only", res.Holdings)
	}
}

func TestLedger_SameInstantOrder(t *testing.T) {
	// Transactions with the same timestamp keep their input order.
	res := run(t, Config{Method: FIFO},
		NewBuy(day(0), "BTC", Q(1), USD(100)),
		NewBuy(day(0), "BTC", Q(1), USD(200)),
		NewSell(day(0), "BTC", Q(1), USD(150)),
	)
	if len(res.Gains) != 1 || res.Gains[0].Lot != "lot-1" {
		t.Fatalf("Gains = %v, want lot-1 consumed", res.Gains)
	}
	if res.Gains[0].HoldingDays != 0 {
		t.Errorf("HoldingDays = %d, want 0", res.Gains[0].HoldingDays)
	}
}

func TestLedger_Filter(t *testing.T) {
	res := run(t, Config{Method: FIFO},
		NewBuy(day(0), "BTC", Q(2), USD(200)),
		NewSell(day(100), "BTC", Q(1), USD(300)),
		NewSell(day(400), "BTC", Q(1), USD(500)),
		NewIncome(TxStake, day(380), "BTC", Q(1), USD(50)),
	)
	f := res.Filter(date.Year(2024))
	if len(f.Gains) != 1 {
		t.Fatalf("got %d gains in 2024, want 1", len(f.Gains))
	}
	assertMoney(t, "LongTerm", f.LongTerm, USD(400))
	assertMoney(t, "ShortTerm", f.ShortTerm, USD(0))
	assertMoney(t, "Income", f.Income, USD(50))
	if res.Filter(date.Range{}) != res {
		t.Error("Filter() with a zero range should return the result itself")
	}
}

func TestLedger_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, parallel := range []bool{false, true} {
		l, err := NewLedger(Config{Method: FIFO, TaxCurrency: "USD", Parallel: parallel})
		if err != nil {
			t.Fatal(err)
		}
		res, err := l.Run(ctx, randomStream(1, 50))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("parallel=%v: Run() error = %v, want context.Canceled", parallel, err)
		}
		if res != nil {
			t.Errorf("parallel=%v: Run() returned a partial result", parallel)
		}
	}
}

// randomStream generates n deterministic transactions on a few assets, never
// selling more than is held.
func randomStream(seed uint64, n int) []Transaction {
	r := rand.New(rand.NewPCG(seed, seed))
	assets := []string{"BTC", "ETH", "SOL", "ADA"}
	held := make(map[string]Quantity)
	var txs []Transaction
	for i := 0; i < n; i++ {
		asset := assets[r.IntN(len(assets))]
		on := day(i * 3 / 2) // some transactions share the same day
		amount := Q(r.IntN(1000) + 1).Div(Q(100))
		value := USD(float64(r.IntN(100000)+1) / 10)
		switch k := r.IntN(5); {
		case k == 0:
			txs = append(txs, NewIncome(TxStake, on, asset, amount, USD(float64(r.IntN(500)+1))))
			held[asset] = held[asset].Add(amount)
		case k <= 2 || !held[asset].IsPositive():
			txs = append(txs, NewBuy(on, asset, amount, value))
			held[asset] = held[asset].Add(amount)
		default:
			amount = amount.Min(held[asset])
			txs = append(txs, NewSell(on, asset, amount, value).WithID(fmt.Sprintf("sell-%d", i)))
			held[asset] = held[asset].Sub(amount)
		}
	}
	return txs
}

func TestLedger_Conservation(t *testing.T) {
	txs := randomStream(42, 300)
	for _, m := range Methods {
		t.Run(m.String(), func(t *testing.T) {
			res := run(t, Config{Method: m}, txs...)
			if len(res.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
			}

			acquired := make(map[string]Quantity)
			cost := make(map[string]Money)
			proceeds := make(map[string]Money)
			for _, tx := range txs {
				v, _ := tx.value()
				switch {
				case tx.Type == TxBuy || tx.IsIncome():
					acquired[tx.BaseAsset] = acquired[tx.BaseAsset].Add(tx.BaseAmount)
					if tx.IsIncome() {
						v = tx.Price.Mul(tx.BaseAmount)
					}
					cost[tx.BaseAsset] = cost[tx.BaseAsset].Add(v)
				case tx.Type == TxSell:
					proceeds[tx.ID] = v
				}
			}

			disposed := make(map[string]Quantity)
			released := make(map[string]Money)
			allocated := make(map[string]Money)
			for _, g := range res.Gains {
				disposed[g.Asset] = disposed[g.Asset].Add(g.Amount)
				released[g.Asset] = released[g.Asset].Add(g.CostBasis)
				allocated[g.Transaction] = allocated[g.Transaction].Add(g.Proceeds)
				if g.AcquiredDate.After(g.DisposalDate) {
					t.Errorf("%s consumed %s acquired after the disposal", g.Transaction, g.Lot)
				}
			}
			for asset, q := range acquired {
				h, _ := res.Holding(asset)
				assertQuantity(t, asset+" acquired", disposed[asset].Add(h.Quantity()), q)
				assertMoney(t, asset+" cost", released[asset].Add(h.CostBasis()).In("USD"), cost[asset])
			}
			for id, p := range proceeds {
				assertMoney(t, id+" proceeds", allocated[id], p)
			}
		})
	}
}

func TestLedger_Deterministic(t *testing.T) {
	txs := randomStream(7, 400)
	for _, m := range Methods {
		t.Run(m.String(), func(t *testing.T) {
			first := run(t, Config{Method: m}, txs...)
			again := run(t, Config{Method: m}, txs...)
			parallel := run(t, Config{Method: m, Parallel: true}, txs...)
			if diff := cmp.Diff(first, again, resultOptions); diff != "" {
				t.Errorf("two runs differ (-first +again):\n%s", diff)
			}
			if diff := cmp.Diff(first, parallel, resultOptions); diff != "" {
				t.Errorf("parallel run differs (-sequential +parallel):\n%s", diff)
			}
		})
	}
}
