package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug              = "debug"
	ConfigConfigFile         = "config-file"
	ConfigEngine             = "engine"
	ConfigRows               = "rows"
	ConfigCols               = "cols"
	ConfigK                  = "k"
	ConfigMaxPlayer          = "max-player"
	ConfigMinPlayer          = "min-player"
	ConfigDisplay            = "display"
	ConfigHistoryFile        = "history-file"
	ConfigResultsDir         = "results-dir"
	ConfigResultsDB          = "results-db"
	ConfigExperimentPlan     = "experiment-plan"
	ConfigExperimentRuns     = "experiment-runs"
	ConfigExperimentThreads  = "experiment-threads"
	ConfigExperimentMaxCells = "experiment-max-cells"
	ConfigTranscriptDir      = "transcript-dir"
	ConfigCPUProfile         = "cpu-profile"
	ConfigMemProfile         = "mem-profile"
)

const (
	PlayerHuman = "human"
	PlayerAuto  = "auto"
)

// Automated parses a player kind for side: true for auto, false for human.
func Automated(side, kind string) (bool, error) {
	switch kind {
	case PlayerAuto:
		return true, nil
	case PlayerHuman:
		return false, nil
	}
	return false, fmt.Errorf("%v must be %v or %v, not %q", side, PlayerHuman, PlayerAuto, kind)
}

type Config struct {
	sync.Mutex
	*viper.Viper
}

// DefaultConfig returns a config with every default set and nothing read
// from flags, env or files. Tests use this.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigEngine, "alphabeta")
	c.SetDefault(ConfigRows, 3)
	c.SetDefault(ConfigCols, 3)
	c.SetDefault(ConfigK, 3)
	c.SetDefault(ConfigMaxPlayer, PlayerHuman)
	c.SetDefault(ConfigMinPlayer, PlayerAuto)
	c.SetDefault(ConfigDisplay, true)
	c.SetDefault(ConfigHistoryFile, "/tmp/mnkgame_readline.tmp")
	c.SetDefault(ConfigResultsDir, ".")
	c.SetDefault(ConfigResultsDB, "")
	c.SetDefault(ConfigExperimentPlan, "")
	c.SetDefault(ConfigExperimentRuns, 3)
	c.SetDefault(ConfigExperimentThreads, 1)
	c.SetDefault(ConfigExperimentMaxCells, 9)
	c.SetDefault(ConfigTranscriptDir, "")
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
}

// Load reads configuration from, in increasing priority: defaults, an
// optional config file, MNK_* environment variables and command-line
// flags. Positional arguments are left in c for the caller; see Args.
func (c *Config) Load(args []string) ([]string, error) {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("mnkgame", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigConfigFile, "", "path to a config file (yaml, toml or json)")
	fs.String(ConfigEngine, "alphabeta", "search engine: minimax or alphabeta")
	fs.Int(ConfigRows, 3, "number of rows (m)")
	fs.Int(ConfigCols, 3, "number of columns (n)")
	fs.Int(ConfigK, 3, "marks in a row needed to win (k)")
	fs.String(ConfigMaxPlayer, PlayerHuman, "who plays MAX: human or auto")
	fs.String(ConfigMinPlayer, PlayerAuto, "who plays MIN: human or auto")
	fs.Bool(ConfigDisplay, true, "render the board after every move")
	fs.String(ConfigHistoryFile, "/tmp/mnkgame_readline.tmp", "readline history file")
	fs.String(ConfigResultsDir, ".", "directory for experiment result CSV files")
	fs.String(ConfigResultsDB, "", "optional SQLite database for experiment results")
	fs.String(ConfigExperimentPlan, "", "YAML experiment plan; defaults to the built-in plan")
	fs.Int(ConfigExperimentRuns, 3, "runs per configuration")
	fs.Int(ConfigExperimentThreads, 1, "configurations to run concurrently")
	fs.Int(ConfigExperimentMaxCells, 9, "skip configurations with more squares than this")
	fs.String(ConfigTranscriptDir, "", "directory to write game transcripts to")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.SetEnvPrefix("mnk")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if err := c.BindPFlags(fs); err != nil {
		return nil, err
	}
	if cf := c.GetString(ConfigConfigFile); cf != "" {
		c.SetConfigFile(cf)
		if err := c.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return fs.Args(), nil
}

// AdjustRelativePaths makes relative output paths relative to basePath.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, key := range []string{ConfigResultsDir, ConfigTranscriptDir, ConfigResultsDB} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Set(key, filepath.Join(basePath, p))
	}
}

// SanitizedSettings returns all settings for display.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
