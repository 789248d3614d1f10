package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/cryptotax"
)

// GainsMarkdown renders the realized gains per asset and the detail of every
// gain/loss record.
func GainsMarkdown(r *cryptotax.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Capital Gains\n\n")
	fmt.Fprintf(&b, "Method: %s\n\n", strings.ToUpper(r.Method.String()))

	fmt.Fprint(&b, "## Gains per Asset\n\n")
	fmt.Fprintln(&b, "| Asset | Short Term | Long Term | Total |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, asset := range r.Assets() {
		short, long := cryptotax.M(0, r.Currency), cryptotax.M(0, r.Currency)
		for _, g := range r.Gains {
			switch {
			case g.Asset != asset:
			case g.Term == cryptotax.LongTerm:
				long = long.Add(g.GainLoss)
			default:
				short = short.Add(g.GainLoss)
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", asset, short.SignedString(), long.SignedString(), short.Add(long).SignedString())
	}
	fmt.Fprintf(&b, "| **%s** | **%s** | **%s** | **%s** |\n",
		"Total",
		r.ShortTerm.SignedString(),
		r.LongTerm.SignedString(),
		r.CapitalGains().SignedString(),
	)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Disposals\n\n")
		fmt.Fprintln(w, "| Sold | Asset | Amount | Proceeds | Cost Basis | Gain/Loss | Acquired | Days | Term | Lot |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|---:|:---|---:|:---|:---|")
		for _, g := range r.Gains {
			lot := g.Lot
			if g.Kind == cryptotax.Shortfall {
				lot = "*shortfall*"
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %d | %s | %s |\n",
				g.DisposalDate, g.Asset, g.Amount, g.Proceeds, g.CostBasis, g.GainLoss.SignedString(),
				g.AcquiredDate, g.HoldingDays, g.Term, lot)
		}
		return len(r.Gains) > 0
	})

	return b.String()
}
