package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/cryptotax/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Answers shell completion requests and exits, does nothing otherwise.
	cmd.Completion().Complete("cryptotax")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
