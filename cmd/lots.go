package cmd

import (
	"context"
	"flag"

	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	runFlags
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "display the open lots after all transactions" }
func (*lotsCmd) Usage() string {
	return `cryptotax lots -i <file> [-method <method>]

  Displays the lots still held, per asset, in the order the method would
  consume them.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) { c.runFlags.SetFlags(f) }

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.open()
	if err != nil {
		return fail("Error: %v", err)
	}
	defer s.Close()

	res, err := s.run(ctx, s.method(), 0)
	if err != nil {
		return fail("Error computing lots: %v", err)
	}
	printMarkdown(renderer.HoldingsMarkdown(res))
	return subcommands.ExitSuccess
}
