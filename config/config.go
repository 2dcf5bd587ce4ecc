// Package config loads settings from flags, MCTS_ environment variables and an
// optional YAML file.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mcts-chess/engine"
)

const (
	ConfigFile         = "config"
	ConfigLogLevel     = "log-level"
	ConfigSeed         = "seed"
	ConfigUCTC         = "uct-c"
	ConfigEvalScale    = "eval-scale"
	ConfigMoveOverhead = "move-overhead"
	ConfigParamsFile   = "params-file"
)

const envPrefix = "MCTS"

type Config struct {
	*viper.Viper
}

// AddFlags registers the shared settings on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFile, "", "YAML config file")
	fs.String(ConfigLogLevel, "info", "log level: debug, info, warn, error or disabled")
	fs.Uint64(ConfigSeed, engine.DefaultSeed, "search RNG seed")
	fs.Float64(ConfigUCTC, engine.DefaultParams().UCTC, "UCT exploration constant")
	fs.Float64(ConfigEvalScale, engine.DefaultParams().EvalScale, "centipawn scale of the result mapping")
	fs.Duration(ConfigMoveOverhead, engine.DefaultMoveOverhead, "time reserved per move for I/O")
	fs.String(ConfigParamsFile, "", "YAML file with tuned search parameters")
}

// Load parses args with the shared flags only.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("mcts-chess", pflag.ContinueOnError)
	AddFlags(fs)
	return c.LoadFlags(fs, args)
}

// LoadFlags parses args into fs, which must already carry AddFlags, and binds
// the result. Flags win over the environment, which wins over the file.
func (c *Config) LoadFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Viper = viper.New()
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if _, err := zerolog.ParseLevel(c.GetString(ConfigLogLevel)); err != nil {
		return fmt.Errorf("%s: %w", ConfigLogLevel, err)
	}
	return nil
}

// EngineParams builds the search coefficients: defaults, then the params
// file, then any explicitly set uct-c or eval-scale.
func (c *Config) EngineParams() (engine.Params, error) {
	p := engine.DefaultParams()
	if path := c.GetString(ConfigParamsFile); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return p, err
		}
		defer f.Close()
		if p, err = engine.ReadParamsYAML(f); err != nil {
			return p, fmt.Errorf("%s: %w", path, err)
		}
	}
	if c.IsSet(ConfigUCTC) {
		if err := p.SetFloat(engine.ParamUCTC, c.GetFloat64(ConfigUCTC)); err != nil {
			return p, err
		}
	}
	if c.IsSet(ConfigEvalScale) {
		if err := p.SetFloat(engine.ParamEvalScale, c.GetFloat64(ConfigEvalScale)); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (c *Config) Seed() uint64 { return c.GetUint64(ConfigSeed) }

func (c *Config) MoveOverhead() time.Duration { return c.GetDuration(ConfigMoveOverhead) }

// SanitizedSettings returns the settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}

// SetupLogging points the global logger at a console writer on w at the
// configured level. Protocol output owns stdout, so w is normally stderr.
func (c *Config) SetupLogging(w io.Writer) {
	level, err := zerolog.ParseLevel(c.GetString(ConfigLogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
}
