// Package config holds engine and shell settings, read from defaults,
// an optional config file, FOURCONNECT_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug      = "debug"
	ConfigCPUProfile = "cpu-profile"
	ConfigMemProfile = "mem-profile"
	ConfigRNGSeed    = "rng-seed"
	ConfigDefaultBot = "default-bot"

	ConfigABMaxDepth           = "ab-max-depth"
	ConfigABTimeLimit          = "ab-time-limit"
	ConfigABTTCapacity         = "ab-tt-capacity"
	ConfigABTTMemoryFraction   = "ab-tt-memory-fraction"
	ConfigABEvaluator          = "ab-evaluator"
	ConfigABOpeningBook        = "ab-opening-book"
	ConfigABTranspositionTable = "ab-transposition-table"

	ConfigMCTSIterations  = "mcts-iterations"
	ConfigMCTSExploration = "mcts-exploration"
)

const envPrefix = "fourconnect"

type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigRNGSeed, 0)
	v.SetDefault(ConfigDefaultBot, "alphabeta")

	v.SetDefault(ConfigABMaxDepth, 7)
	v.SetDefault(ConfigABTimeLimit, 0)
	v.SetDefault(ConfigABTTCapacity, 1<<20)
	v.SetDefault(ConfigABTTMemoryFraction, 0.05)
	v.SetDefault(ConfigABEvaluator, "kernel")
	v.SetDefault(ConfigABOpeningBook, true)
	v.SetDefault(ConfigABTranspositionTable, true)

	v.SetDefault(ConfigMCTSIterations, 2000)
	v.SetDefault(ConfigMCTSExploration, math.Sqrt2)
}

// DefaultConfig returns a config with only the built-in defaults. It does
// not look at the environment or at any file.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fourconnect", pflag.ContinueOnError)
	fs.ParseErrorsAllowlist.UnknownFlags = true
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file on exit")
	fs.Uint64(ConfigRNGSeed, 0, "seed for all engine randomness; 0 draws a random seed")
	fs.String(ConfigDefaultBot, "alphabeta", "engine used by gen and autoplay: alphabeta, mcts or random")
	fs.Int(ConfigABMaxDepth, 7, "maximum alpha-beta search depth in plies")
	fs.Float64(ConfigABTimeLimit, 0, "alpha-beta time limit in seconds; 0 for none")
	fs.Int(ConfigABTTCapacity, 1<<20, "maximum number of transposition table entries")
	fs.Float64(ConfigABTTMemoryFraction, 0.05, "fraction of system memory the transposition table may use")
	fs.String(ConfigABEvaluator, "kernel", "heuristic evaluator: kernel, null, sky, or a sum like kernel+sky")
	fs.Bool(ConfigABOpeningBook, true, "play the center column on a (nearly) empty board without searching")
	fs.Bool(ConfigABTranspositionTable, true, "use the transposition table")
	fs.Int(ConfigMCTSIterations, 2000, "MCTS iterations per move")
	fs.Float64(ConfigMCTSExploration, math.Sqrt2, "MCTS UCB1 exploration constant")
	return fs
}

// Load reads the config file, environment and the given command-line
// arguments.
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.fourconnect")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
		log.Debug().Msg("no config file found; using defaults")
	}

	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	c.Viper = v
	return nil
}

// SanitizedSettings returns the settings as a string suitable for logging.
func (c *Config) SanitizedSettings() string {
	return fmt.Sprintf("%v", c.AllSettings())
}
