package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax"
)

// DiagnosticsMarkdown renders the diagnostics in the order they were raised.
func DiagnosticsMarkdown(diags []cryptotax.Diagnostic) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Diagnostics\n\n")
	if len(diags) == 0 {
		fmt.Fprint(&b, "No issue found.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Transaction | Kind | Asset | Detail |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|")
	for _, d := range diags {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", d.Transaction, d.Kind, d.Asset, strings.ReplaceAll(d.Detail, "|", "\\|"))
	}
	return b.String()
}
