package cryptotax

// Validate returns the diagnostics raised by txs before any lot is consumed:
// malformed transactions, currency mismatches and missing valuations.
// Inventory shortfalls are only known after a Ledger run.
func Validate(txs []Transaction, currency string) []Diagnostic {
	journal := NewJournal(txs, currency, false)
	diags := make([]Diagnostic, len(journal.notes))
	for i, n := range journal.notes {
		diags[i] = n.Diagnostic
	}
	return diags
}
