package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax"
)

// CompareMarkdown renders the totals of runs of the same transactions with
// different methods, side by side. The first result is the reference for the
// Difference row.
func CompareMarkdown(results []*cryptotax.Result) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Method Comparison\n\n")
	if len(results) == 0 {
		return b.String()
	}

	fmt.Fprint(&b, "| Category |")
	for _, r := range results {
		fmt.Fprintf(&b, " %s |", strings.ToUpper(r.Method.String()))
	}
	fmt.Fprint(&b, "\n|:---|")
	for range results {
		fmt.Fprint(&b, "---:|")
	}
	fmt.Fprintln(&b)

	row := func(name string, value func(*cryptotax.Result) string) {
		fmt.Fprintf(&b, "| %s |", name)
		for _, r := range results {
			fmt.Fprintf(&b, " %s |", value(r))
		}
		fmt.Fprintln(&b)
	}
	row("Short Term", func(r *cryptotax.Result) string { return r.ShortTerm.SignedString() })
	row("Long Term", func(r *cryptotax.Result) string { return r.LongTerm.SignedString() })
	row("Capital Gains", func(r *cryptotax.Result) string { return r.CapitalGains().SignedString() })
	row("Income", func(r *cryptotax.Result) string { return r.Income.String() })
	row("Records", func(r *cryptotax.Result) string { return fmt.Sprint(len(r.Gains)) })
	ref := results[0].CapitalGains()
	row("Difference", func(r *cryptotax.Result) string { return r.CapitalGains().Sub(ref).SignedString() })
	return b.String()
}
