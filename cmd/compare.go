package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	runFlags
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare the taxes of every lot selection method" }
func (*compareCmd) Usage() string {
	return `cryptotax compare -i <file> [-c <currency>] [-year <year>]

  Runs the ledger once per method (fifo, lifo, hifo) and prints the totals
  side by side. The -method flag is ignored.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) { c.runFlags.SetFlags(f) }

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.open()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer s.Close()

	results := make([]*cryptotax.Result, 0, len(cryptotax.Methods))
	for _, m := range cryptotax.Methods {
		res, err := s.run(ctx, m, c.year)
		if err != nil {
			return fail("Error computing taxes with %s: %v", m, err)
		}
		results = append(results, res)
	}
	printMarkdown(renderer.CompareMarkdown(results))
	return subcommands.ExitSuccess
}
