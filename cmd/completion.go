package cmd

import (
	"flag"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the application, built from
// the flags of every command.
func Completion() *complete.Command {
	methods := make(predict.Set, len(cryptotax.Methods))
	for i, m := range cryptotax.Methods {
		methods[i] = m.String()
	}
	predictors := map[string]complete.Predictor{
		"i":         predict.Files("*"),
		"method":    methods,
		"shortfall": predict.Set{cryptotax.ShortfallExclude.String(), cryptotax.ShortfallZeroBasis.String()},
		"o":         predict.Dirs("*"),
		"config":    predict.Files("*.toml"),
		"env-file":  predict.Files("*"),
		"log-file":  predict.Files("*.log"),
		"log-level": predict.Set{"debug", "info", "warn", "error"},
	}
	flags := func(fs *flag.FlagSet) map[string]complete.Predictor {
		m := make(map[string]complete.Predictor)
		fs.VisitAll(func(f *flag.Flag) {
			if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				m[f.Name] = nil // no argument.
				return
			}
			p, ok := predictors[f.Name]
			if !ok {
				p = predict.Nothing
			}
			m[f.Name] = p
		})
		return m
	}

	root := &complete.Command{Sub: make(map[string]*complete.Command), Flags: flags(flag.CommandLine)}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flags(fs)}
	}
	topics, _ := docs.GetAllTopics()
	root.Sub["topic"] = &complete.Command{Args: predict.Set(topics)}
	return root
}
