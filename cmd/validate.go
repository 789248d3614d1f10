package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

// validateCmd holds the flags for the 'validate' subcommand.
type validateCmd struct {
	runFlags
	quick bool
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "report the transactions that cannot be processed" }
func (*validateCmd) Usage() string {
	return `cryptotax validate -i <file> [-c <currency>] [-quick]

  Reports skipped transactions, currency mismatches, missing valuations and
  oversold assets. With -quick, the ledger is not run and oversold assets are
  not detected.

  Exits with status 1 when an issue is found.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	c.runFlags.SetFlags(f)
	f.BoolVar(&c.quick, "quick", false, "Only check the transactions, do not replay them")
}

func (c *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.open()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer s.Close()

	var diags []cryptotax.Diagnostic
	if c.quick {
		diags = cryptotax.Validate(s.txs, s.cfg.Currency)
	} else {
		res, err := s.run(ctx, s.method(), 0)
		if err != nil {
			return fail("Error replaying transactions: %v", err)
		}
		diags = res.Diagnostics
	}
	printMarkdown(renderer.DiagnosticsMarkdown(diags))
	if len(diags) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
