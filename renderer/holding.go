package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax"
)

// HoldingsMarkdown renders the open lots, per asset, in consumption order.
func HoldingsMarkdown(r *cryptotax.Result) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Open Lots\n\n")
	if len(r.Holdings) == 0 {
		fmt.Fprint(&b, "Nothing held.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Method: %s\n\n", strings.ToUpper(r.Method.String()))

	fmt.Fprintln(&b, "| Asset | Quantity | Cost Basis |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, h := range r.Holdings {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", h.Asset, h.Quantity(), h.CostBasis())
	}

	for _, h := range r.Holdings {
		fmt.Fprintf(&b, "\n## %s\n\n", h.Asset)
		fmt.Fprintln(&b, "| Lot | Acquired | Remaining | Original | Unit Cost | Cost Basis |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
		for _, l := range h.Lots {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				l.ID, l.AcquiredOn(), l.Remaining, l.Original, l.UnitCost(), l.RemainingCost())
		}
	}
	return b.String()
}
