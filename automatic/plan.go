package automatic

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/mnkgame/game"
	"github.com/domino14/mnkgame/solver"
)

var ErrEmptyPlan = errors.New("experiment plan has nothing to run")

// Configuration is one board size of an experiment.
type Configuration struct {
	M int `yaml:"m"`
	N int `yaml:"n"`
	K int `yaml:"k"`
}

func (c Configuration) Cells() int {
	return c.M * c.N
}

func (c Configuration) String() string {
	return fmt.Sprintf("m=%d n=%d k=%d", c.M, c.N, c.K)
}

// Plan says which configurations to play, with which engines and how
// many times each.
type Plan struct {
	Configurations []Configuration `yaml:"configurations"`
	Engines        []string        `yaml:"engines"`
	Runs           int             `yaml:"runs"`
	// MaxCells skips configurations with more squares than this. Zero
	// means no limit.
	MaxCells int `yaml:"max_cells"`
}

// DefaultPlan covers m, n and k from 2 to 4, leaving out sizes where k
// fits in neither dimension.
func DefaultPlan() Plan {
	sizes := lo.RangeFrom(2, 3)
	var configs []Configuration
	for _, m := range sizes {
		for _, n := range sizes {
			for _, k := range sizes {
				configs = append(configs, Configuration{M: m, N: n, K: k})
			}
		}
	}
	configs = lo.Filter(configs, func(c Configuration, _ int) bool {
		return c.K <= c.M || c.K <= c.N
	})
	return Plan{
		Configurations: configs,
		Engines:        []string{solver.MinimaxName, solver.AlphaBetaName},
		Runs:           3,
	}
}

// LoadPlan reads a YAML plan. Fields left out take their values from
// DefaultPlan.
func LoadPlan(path string) (Plan, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	plan := DefaultPlan()
	if err := yaml.Unmarshal(bts, &plan); err != nil {
		return Plan{}, fmt.Errorf("parsing plan %v: %w", path, err)
	}
	return plan, plan.Validate()
}

func (p Plan) Validate() error {
	if len(p.Configurations) == 0 || len(p.Engines) == 0 || p.Runs < 1 {
		return ErrEmptyPlan
	}
	for _, e := range p.Engines {
		if !lo.Contains(game.Engines, e) {
			return fmt.Errorf("%w: %q", game.ErrUnknownEngine, e)
		}
	}
	for _, c := range p.Configurations {
		if c.M < 1 || c.N < 1 || c.K < 1 {
			return fmt.Errorf("bad configuration %v", c)
		}
	}
	return nil
}

// Job is one configuration to be played with one engine. Index is the
// configuration's position in the plan, which fixes the row order of
// the results.
type Job struct {
	Index  int
	Engine string
	Config Configuration
}

// Jobs lists the work in the plan, minus configurations over MaxCells.
func (p Plan) Jobs() []Job {
	var jobs []Job
	for i, c := range p.Configurations {
		if p.MaxCells > 0 && c.Cells() > p.MaxCells {
			continue
		}
		for _, e := range p.Engines {
			jobs = append(jobs, Job{Index: i, Engine: e, Config: c})
		}
	}
	return jobs
}

// Skipped lists configurations over MaxCells.
func (p Plan) Skipped() []Configuration {
	if p.MaxCells <= 0 {
		return nil
	}
	return lo.Filter(p.Configurations, func(c Configuration, _ int) bool {
		return c.Cells() > p.MaxCells
	})
}
