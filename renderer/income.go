package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax"
)

// IncomeMarkdown renders the income records received.
func IncomeMarkdown(r *cryptotax.Result) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Income\n\n")
	if len(r.Incomes) == 0 {
		fmt.Fprint(&b, "No income received.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Received | Asset | Type | Amount | Price | Value |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
	for _, i := range r.Incomes {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", i.ReceiptDate, i.Asset, i.Type, i.Amount, i.Price, i.FairMarketValue)
	}
	fmt.Fprintf(&b, "| **Total** | | | | | **%s** |\n", r.Income)
	return b.String()
}
