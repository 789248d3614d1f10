package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

// calculateCmd holds the flags for the 'calculate' subcommand.
type calculateCmd struct {
	runFlags
	output  string
	details bool
}

func (*calculateCmd) Name() string     { return "calculate" }
func (*calculateCmd) Synopsis() string { return "compute capital gains and income, and write the reports" }
func (*calculateCmd) Usage() string {
	return `cryptotax calculate -i <file> [-method <method>] [-c <currency>] [-o <dir>] [-year <year>] [-details]

  Runs the ledger on the transactions file and writes into the reports
  directory: gains_losses.csv, income_events.csv, tax_summary.json and
  turbotax_import.csv. The summary is printed, followed by the gains and
  income details with -details.
`
}

func (c *calculateCmd) SetFlags(f *flag.FlagSet) {
	c.runFlags.SetFlags(f)
	f.StringVar(&c.output, "o", "", "Reports directory")
	f.BoolVar(&c.details, "details", false, "Also print the gains per asset and every gain and income record")
}

func (c *calculateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.open()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer s.Close()

	res, err := s.run(ctx, s.method(), c.year)
	if err != nil {
		return fail("Error computing taxes: %v", err)
	}

	dir := c.output
	if dir == "" {
		dir = s.cfg.ReportsDir
	}
	if err := writeReports(dir, res); err != nil {
		return fail("Error writing reports: %v", err)
	}
	s.log.Info().Str("dir", dir).Msg("reports written")

	title := "Tax Summary"
	if c.year != 0 {
		title = fmt.Sprintf("Tax Summary %d", c.year)
	}
	printMarkdown(calculateMarkdown(title, res, c.details))
	return subcommands.ExitSuccess
}

// calculateMarkdown is the report printed by calculate.
func calculateMarkdown(title string, res *cryptotax.Result, details bool) string {
	md := renderer.SummaryMarkdown(title, res)
	if details {
		md += "\n" + renderer.GainsMarkdown(res)
		md += "\n" + renderer.IncomeMarkdown(res)
	}
	if len(res.Diagnostics) > 0 {
		md += "\n" + renderer.DiagnosticsMarkdown(res.Diagnostics)
	}
	return md
}

// writeReports writes the report files of res into dir.
func writeReports(dir string, res *cryptotax.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	reports := []struct {
		name   string
		encode func(io.Writer) error
	}{
		{"gains_losses.csv", func(w io.Writer) error { return cryptotax.EncodeGainsCSV(w, res.Gains) }},
		{"income_events.csv", func(w io.Writer) error { return cryptotax.EncodeIncomeCSV(w, res.Incomes) }},
		{"tax_summary.json", func(w io.Writer) error { return cryptotax.EncodeSummaryJSON(w, res) }},
		{"turbotax_import.csv", func(w io.Writer) error { return cryptotax.EncodeTurboTaxCSV(w, res.Gains) }},
	}
	for _, r := range reports {
		if err := writeFile(filepath.Join(dir, r.name), r.encode); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, encode func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}
