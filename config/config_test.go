package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetString(ConfigEngine), "alphabeta")
	is.Equal(c.GetInt(ConfigRows), 3)
	is.Equal(c.GetInt(ConfigK), 3)
	is.Equal(c.GetString(ConfigMaxPlayer), PlayerHuman)
	is.Equal(c.GetString(ConfigMinPlayer), PlayerAuto)
	is.Equal(c.GetInt(ConfigExperimentRuns), 3)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	rest, err := c.Load([]string{"--engine", "minimax", "--rows=4", "--debug", "4", "4", "3"})
	is.NoErr(err)
	is.Equal(c.GetString(ConfigEngine), "minimax")
	is.Equal(c.GetInt(ConfigRows), 4)
	is.True(c.GetBool(ConfigDebug))
	is.Equal(rest, []string{"4", "4", "3"})
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("MNK_EXPERIMENT_RUNS", "7")
	c := DefaultConfig()
	_, err := c.Load(nil)
	is.NoErr(err)
	is.Equal(c.GetInt(ConfigExperimentRuns), 7)
}

func TestLoadConfigFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "mnk.yaml")
	err := os.WriteFile(path, []byte("cols: 5\nk: 4\n"), 0644)
	is.NoErr(err)
	c := DefaultConfig()
	_, err = c.Load([]string{"--config-file", path})
	is.NoErr(err)
	is.Equal(c.GetInt(ConfigCols), 5)
	is.Equal(c.GetInt(ConfigK), 4)
	is.Equal(c.GetInt(ConfigRows), 3)
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.Set(ConfigResultsDir, "out")
	c.Set(ConfigTranscriptDir, "/abs/transcripts")
	c.AdjustRelativePaths("/opt/mnk")
	is.Equal(c.GetString(ConfigResultsDir), "/opt/mnk/out")
	is.Equal(c.GetString(ConfigTranscriptDir), "/abs/transcripts")
	is.Equal(c.GetString(ConfigResultsDB), "")
}

func TestAutomated(t *testing.T) {
	is := is.New(t)
	auto, err := Automated("max", PlayerAuto)
	is.NoErr(err)
	is.True(auto)
	auto, err = Automated("min", PlayerHuman)
	is.NoErr(err)
	is.True(!auto)
	_, err = Automated("min", "robot")
	is.True(err != nil)
}
