package cryptotax

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant reports an internal inconsistency. A run that hits it is
	// aborted and returns no result.
	ErrInvariant = errors.New("invariant violation")
	// ErrUnknownMethod is returned for lot selection methods other than fifo, lifo and hifo.
	ErrUnknownMethod = errors.New("unknown lot selection method")
)

// InsufficientInventoryError is the condition raised when a disposal asks
// for more than an inventory holds. It is not fatal: the available quantity
// has been consumed and the shortfall is reported.
type InsufficientInventoryError struct {
	Asset     string
	Requested Quantity
	Available Quantity
}

// Shortfall is the quantity that could not be consumed.
func (e *InsufficientInventoryError) Shortfall() Quantity { return e.Requested.Sub(e.Available) }

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient %s inventory: requested %s, held %s, short %s", e.Asset, e.Requested, e.Available, e.Shortfall())
}

// DiagnosticKind classifies non fatal conditions met during a run.
type DiagnosticKind string

const (
	// InsufficientInventory is a disposal larger than the inventory held.
	InsufficientInventory DiagnosticKind = "insufficient-inventory"
	// SkippedTransaction is a malformed or unrecognized transaction.
	SkippedTransaction DiagnosticKind = "skipped-transaction"
	// MissingValuation is an acquisition recorded with a zero cost basis
	// because no value was attached to it.
	MissingValuation DiagnosticKind = "missing-valuation"
	// CurrencyMismatch is a transaction valued in a currency that is not the
	// tax currency. The transaction is skipped.
	CurrencyMismatch DiagnosticKind = "currency-mismatch"
)

// Diagnostic is a structured, non fatal report attached to a transaction.
type Diagnostic struct {
	Kind        DiagnosticKind `json:"kind"`
	Transaction string         `json:"transaction_id"`
	Asset       string         `json:"asset,omitempty"`
	Amount      Quantity       `json:"amount"` // Amount is the shortfall for insufficient-inventory.
	Detail      string         `json:"detail"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Transaction, d.Kind, d.Detail)
}
