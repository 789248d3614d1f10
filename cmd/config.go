package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/etnz/cryptotax"
	"github.com/imdario/mergo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DefaultConfigFile is read when it exists and no -config flag is given.
const DefaultConfigFile = "cryptotax.toml"

// Config holds the settings shared by the commands. Each setting comes, by
// order of precedence, from the command line, the environment, the
// configuration file or DefaultConfig.
type Config struct {
	Currency              string `toml:"currency"`
	Method                string `toml:"method"`
	Shortfall             string `toml:"shortfall"`
	NonTaxableWithdrawals bool   `toml:"non_taxable_withdrawals"`
	Parallel              bool   `toml:"parallel"`
	ReportsDir            string `toml:"reports_dir"`
	LogLevel              string `toml:"log_level"`
	LogFile               string `toml:"log_file"`
	PrettyLog             bool   `toml:"pretty_log"`
}

// DefaultConfig returns the settings used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		Currency:   "USD",
		Method:     cryptotax.FIFO.String(),
		Shortfall:  cryptotax.ShortfallExclude.String(),
		ReportsDir: "reports",
		LogLevel:   zerolog.WarnLevel.String(),
	}
}

// LoadConfig decodes a TOML configuration file. A missing file is not an
// error unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("cannot read configuration %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys in configuration %q: %s", path, strings.Join(keys, ", "))
	}
	return c, nil
}

// EnvPrefix prefixes the environment variables read by EnvConfig.
const EnvPrefix = "CRYPTOTAX_"

// EnvConfig reads the settings from CRYPTOTAX_* environment variables. When
// dotenv is not empty, that file is loaded first if it exists; variables
// already set in the environment win over it.
func EnvConfig(dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("cannot read %q: %w", dotenv, err)
		}
	}
	var errs []error
	boolean := func(key string) bool {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, v, err))
		}
		return b
	}
	c := Config{
		Currency:              os.Getenv(EnvPrefix + "CURRENCY"),
		Method:                os.Getenv(EnvPrefix + "METHOD"),
		Shortfall:             os.Getenv(EnvPrefix + "SHORTFALL"),
		NonTaxableWithdrawals: boolean("NON_TAXABLE_WITHDRAWALS"),
		Parallel:              boolean("PARALLEL"),
		ReportsDir:            os.Getenv(EnvPrefix + "REPORTS_DIR"),
		LogLevel:              os.Getenv(EnvPrefix + "LOG_LEVEL"),
		LogFile:               os.Getenv(EnvPrefix + "LOG_FILE"),
		PrettyLog:             boolean("PRETTY_LOG"),
	}
	return c, errors.Join(errs...)
}

// Merge returns c completed with the settings of fallbacks, in order. Only
// settings unset in c are taken.
func (c Config) Merge(fallbacks ...Config) (Config, error) {
	for _, f := range fallbacks {
		if err := mergo.Merge(&c, f); err != nil {
			return c, fmt.Errorf("config merge failed: %w", err)
		}
	}
	return c, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error
	if err := cryptotax.ValidateCurrency(c.Currency); err != nil {
		errs = append(errs, err)
	}
	if _, err := cryptotax.ParseMethod(c.Method); err != nil {
		errs = append(errs, err)
	}
	if _, err := cryptotax.ParseShortfallPolicy(c.Shortfall); err != nil {
		errs = append(errs, err)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Ledger returns the ledger configuration for method.
func (c Config) Ledger(method cryptotax.Method, log *zerolog.Logger) (cryptotax.Config, error) {
	shortfall, err := cryptotax.ParseShortfallPolicy(c.Shortfall)
	if err != nil {
		return cryptotax.Config{}, err
	}
	return cryptotax.Config{
		Method:                method,
		TaxCurrency:           c.Currency,
		Shortfall:             shortfall,
		NonTaxableWithdrawals: c.NonTaxableWithdrawals,
		Parallel:              c.Parallel,
		Logger:                log,
	}, nil
}
