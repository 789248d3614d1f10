// Package cmd implements the CLI application to compute crypto taxes.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/date"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the TOML configuration file. Defaults to "+DefaultConfigFile+" if it exists.")
var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error)")
var logFile = flag.String("log-file", "", "Also append logs to this file")
var prettyLog = flag.Bool("pretty-log", false, "Human readable logs instead of JSON")
var rawMarkdown = flag.Bool("raw", false, "Print reports as plain markdown")
var dotenvFile = flag.String("env-file", ".env", "Load CRYPTOTAX_* variables from this file if it exists")

// Commands lists the subcommands of the application.
var Commands = []subcommands.Command{
	&calculateCmd{},
	&compareCmd{},
	&lotsCmd{},
	&validateCmd{},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "taxes")
	}
	c.Register(&topicCmd{}, "help")
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
}

// runFlags are the flags shared by the commands that run a ledger.
type runFlags struct {
	input                 string
	method                string
	currency              string
	shortfall             string
	year                  int
	nonTaxableWithdrawals bool
	parallel              bool
}

func (r *runFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.input, "i", "", "Normalized transactions file (.csv or .jsonl)")
	f.StringVar(&r.method, "method", "", "Lot selection method (fifo, lifo, hifo)")
	f.StringVar(&r.currency, "c", "", "Tax currency (ISO-4217 code)")
	f.StringVar(&r.shortfall, "shortfall", "", "Accounting of oversold quantities (exclude, zero-basis)")
	f.IntVar(&r.year, "year", 0, "Only report gains and income of this tax year")
	f.BoolVar(&r.nonTaxableWithdrawals, "non-taxable-withdrawals", false, "Withdrawals consume lots without realizing gains")
	f.BoolVar(&r.parallel, "parallel", false, "Replay distinct assets concurrently")
}

// session is the environment of a command execution.
type session struct {
	cfg    Config
	log    zerolog.Logger
	closer io.Closer
	txs    []cryptotax.Transaction
}

func (s *session) Close() error { return s.closer.Close() }

// open resolves the configuration, creates the logger and decodes the input.
func (r *runFlags) open() (*session, error) {
	if r.input == "" {
		return nil, errors.New("missing input file, use -i")
	}
	path, required := *configFile, true
	if path == "" {
		path, required = DefaultConfigFile, false
	}
	file, err := LoadConfig(path, required)
	if err != nil {
		return nil, err
	}
	env, err := EnvConfig(*dotenvFile)
	if err != nil {
		return nil, err
	}
	flags := Config{
		Currency:              r.currency,
		Method:                r.method,
		Shortfall:             r.shortfall,
		NonTaxableWithdrawals: r.nonTaxableWithdrawals,
		Parallel:              r.parallel,
		LogLevel:              *logLevel,
		LogFile:               *logFile,
		PrettyLog:             *prettyLog,
	}
	cfg, err := flags.Merge(env, file, DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closer, err := newLogger(os.Stderr, cfg.LogFile, cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, closer: closer}

	f, err := os.Open(r.input)
	if err != nil {
		s.Close()
		return nil, err
	}
	defer f.Close()
	s.txs, err = cryptotax.Decode(r.input, f)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("cannot decode %q: %w", r.input, err)
	}
	s.log.Debug().Str("file", r.input).Int("transactions", len(s.txs)).Msg("transactions loaded")
	return s, nil
}

// run runs a ledger with method on the session transactions.
func (s *session) run(ctx context.Context, method cryptotax.Method, year int) (*cryptotax.Result, error) {
	cfg, err := s.cfg.Ledger(method, &s.log)
	if err != nil {
		return nil, err
	}
	ledger, err := cryptotax.NewLedger(cfg)
	if err != nil {
		return nil, err
	}
	res, err := ledger.Run(ctx, s.txs)
	if err != nil {
		return nil, err
	}
	if year != 0 {
		res = res.Filter(date.Year(year))
	}
	return res, nil
}

// method returns the configured lot selection method.
func (s *session) method() cryptotax.Method {
	m, _ := cryptotax.ParseMethod(s.cfg.Method) // validated when the session opened.
	return m
}

// fail reports err on stderr and returns the matching exit status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}
