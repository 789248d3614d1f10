package cryptotax

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/cryptotax/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// epoch is day 0 of the test scenarios.
var epoch = time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)

// day returns the instant n calendar days after epoch.
func day(n int) time.Time { return epoch.AddDate(0, 0, n) }

// resultOptions compares results on their values.
var resultOptions = cmp.Options{
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
	cmpopts.IgnoreUnexported(Lot{}),
	cmpopts.EquateEmpty(),
}

// run processes txs with a ledger configured by cfg, in USD unless set.
func run(t *testing.T, cfg Config, txs ...Transaction) *Result {
	t.Helper()
	if cfg.TaxCurrency == "" {
		cfg.TaxCurrency = "USD"
	}
	ledger, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("NewLedger() error = %v", err)
	}
	res, err := ledger.Run(context.Background(), txs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res
}

func assertMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s %s, want %s %s", name, got.Decimal(), got.Currency(), want.Decimal(), want.Currency())
	}
}

func assertQuantity(t *testing.T, name string, got, want Quantity) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
