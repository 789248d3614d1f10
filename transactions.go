package cryptotax

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TxType identifies the kind of a normalized transaction.
type TxType string

// Transaction types understood by the ledger.
const (
	TxBuy      TxType = "buy"
	TxSell     TxType = "sell"
	TxDeposit  TxType = "deposit"
	TxWithdraw TxType = "withdraw"
	TxStake    TxType = "stake"
	TxAirdrop  TxType = "airdrop"
	TxFee      TxType = "fee" // TxFee disposes of BaseAmount with zero proceeds.
)

// ParseTxType normalizes a transaction type. "reward" is read as a stake and
// "transfer_out" as a withdrawal. Unknown types are returned as is, so that
// the ledger can report them.
func ParseTxType(s string) TxType {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "reward":
		return TxStake
	case "transfer_out":
		return TxWithdraw
	}
	return t
}

// Known reports whether t is one of the transaction types the ledger processes.
func (t TxType) Known() bool {
	switch t {
	case TxBuy, TxSell, TxDeposit, TxWithdraw, TxStake, TxAirdrop, TxFee:
		return true
	}
	return false
}

// Transaction is a normalized transaction as produced upstream. Valuations
// are already resolved: the ledger never fetches prices.
type Transaction struct {
	ID          string    // ID is optional, the ledger numbers transactions without one.
	Timestamp   time.Time // Timestamp is the instant of the transaction.
	Type        TxType
	BaseAsset   string   // BaseAsset is the asset acquired or disposed of.
	BaseAmount  Quantity // BaseAmount is the quantity of BaseAsset.
	QuoteAsset  string   // QuoteAsset is the currency of QuoteAmount.
	QuoteAmount Money    // QuoteAmount is the total value paid or received.
	FeeAmount   Quantity
	FeeAsset    string
	Price       Money // Price is the unit price of BaseAsset, required for income without QuoteAmount.
	Notes       string
}

// NewBuy creates a buy of amount units of asset for a total cost.
func NewBuy(on time.Time, asset string, amount Quantity, cost Money) Transaction {
	return Transaction{Timestamp: on, Type: TxBuy, BaseAsset: asset, BaseAmount: amount, QuoteAsset: cost.Currency(), QuoteAmount: cost}
}

// NewSell creates a sale of amount units of asset for total proceeds.
func NewSell(on time.Time, asset string, amount Quantity, proceeds Money) Transaction {
	return Transaction{Timestamp: on, Type: TxSell, BaseAsset: asset, BaseAmount: amount, QuoteAsset: proceeds.Currency(), QuoteAmount: proceeds}
}

// NewDeposit creates a deposit of amount units of asset valued at value.
func NewDeposit(on time.Time, asset string, amount Quantity, value Money) Transaction {
	return Transaction{Timestamp: on, Type: TxDeposit, BaseAsset: asset, BaseAmount: amount, QuoteAsset: value.Currency(), QuoteAmount: value}
}

// NewWithdraw creates a withdrawal of amount units of asset valued at value.
func NewWithdraw(on time.Time, asset string, amount Quantity, value Money) Transaction {
	return Transaction{Timestamp: on, Type: TxWithdraw, BaseAsset: asset, BaseAmount: amount, QuoteAsset: value.Currency(), QuoteAmount: value}
}

// NewIncome creates a stake or airdrop receipt of amount units at a unit price.
func NewIncome(typ TxType, on time.Time, asset string, amount Quantity, price Money) Transaction {
	return Transaction{Timestamp: on, Type: typ, BaseAsset: asset, BaseAmount: amount, QuoteAsset: price.Currency(), Price: price}
}

// WithFee returns a copy of t with a fee of amount paid in asset.
func (t Transaction) WithFee(amount Quantity, asset string) Transaction {
	t.FeeAmount, t.FeeAsset = amount, asset
	return t
}

// WithID returns a copy of t identified by id.
func (t Transaction) WithID(id string) Transaction {
	t.ID = id
	return t
}

// IsIncome reports whether t is an income event.
func (t Transaction) IsIncome() bool { return t.Type == TxStake || t.Type == TxAirdrop }

// feeInCash reports whether the fee is paid in the quote currency or in the
// tax currency, in which case it adjusts the cost or the proceeds.
func (t Transaction) feeInCash(taxCurrency string) bool {
	return t.FeeAsset == "" || strings.EqualFold(t.FeeAsset, t.QuoteAsset) || strings.EqualFold(t.FeeAsset, taxCurrency)
}

// assetFee reports whether a fee is paid in an asset other than cash, which
// makes it a disposal of that asset.
func (t Transaction) assetFee(taxCurrency string) bool {
	return t.FeeAmount.IsPositive() && !t.feeInCash(taxCurrency)
}

// check returns the reasons why t cannot be processed, joined.
func (t Transaction) check() error {
	var errs []error
	if t.Timestamp.IsZero() {
		errs = append(errs, errors.New("timestamp is missing"))
	}
	if !t.Type.Known() {
		errs = append(errs, fmt.Errorf("unknown transaction type %q", t.Type))
	}
	if t.BaseAsset == "" {
		errs = append(errs, errors.New("base asset is missing"))
	}
	if !t.BaseAmount.IsPositive() {
		errs = append(errs, fmt.Errorf("base amount must be positive, got %s", t.BaseAmount))
	}
	if t.QuoteAmount.IsNegative() {
		errs = append(errs, fmt.Errorf("quote amount must not be negative, got %s", t.QuoteAmount.Decimal()))
	}
	if t.FeeAmount.IsNegative() {
		errs = append(errs, fmt.Errorf("fee amount must not be negative, got %s", t.FeeAmount))
	}
	if t.Price.IsNegative() {
		errs = append(errs, fmt.Errorf("price must not be negative, got %s", t.Price.Decimal()))
	}
	return errors.Join(errs...)
}

// value returns the total value of the base amount: QuoteAmount when set,
// otherwise Price times BaseAmount. ok is false when neither is set.
func (t Transaction) value() (v Money, ok bool) {
	switch {
	case !t.QuoteAmount.IsZero():
		return t.QuoteAmount, true
	case !t.Price.IsZero():
		return t.Price.Mul(t.BaseAmount), true
	default:
		return t.QuoteAmount, false
	}
}

// jtransaction is the persisted form of a Transaction.
type jtransaction struct {
	ID          string           `json:"id,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Type        string           `json:"type"`
	BaseAsset   string           `json:"base_asset"`
	BaseAmount  decimal.Decimal  `json:"base_amount"`
	QuoteAsset  string           `json:"quote_asset,omitempty"`
	QuoteAmount *decimal.Decimal `json:"quote_amount,omitempty"`
	FeeAmount   *decimal.Decimal `json:"fee_amount,omitempty"`
	FeeAsset    string           `json:"fee_asset,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

func optionalDecimal(d decimal.Decimal) *decimal.Decimal {
	if d.IsZero() {
		return nil
	}
	return &d
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(jtransaction{
		ID:          t.ID,
		Timestamp:   t.Timestamp.UTC(),
		Type:        string(t.Type),
		BaseAsset:   t.BaseAsset,
		BaseAmount:  t.BaseAmount.Decimal(),
		QuoteAsset:  t.QuoteAsset,
		QuoteAmount: optionalDecimal(t.QuoteAmount.Decimal()),
		FeeAmount:   optionalDecimal(t.FeeAmount.Decimal()),
		FeeAsset:    t.FeeAsset,
		Price:       optionalDecimal(t.Price.Decimal()),
		Notes:       t.Notes,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var j jtransaction
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*t = Transaction{
		ID:          j.ID,
		Timestamp:   j.Timestamp.UTC(),
		Type:        ParseTxType(j.Type),
		BaseAsset:   strings.ToUpper(strings.TrimSpace(j.BaseAsset)),
		BaseAmount:  Q(j.BaseAmount),
		QuoteAsset:  strings.ToUpper(strings.TrimSpace(j.QuoteAsset)),
		QuoteAmount: M(derefDecimal(j.QuoteAmount), j.QuoteAsset),
		FeeAmount:   Q(derefDecimal(j.FeeAmount)),
		FeeAsset:    strings.ToUpper(strings.TrimSpace(j.FeeAsset)),
		Price:       M(derefDecimal(j.Price), j.QuoteAsset),
		Notes:       j.Notes,
	}
	return nil
}
