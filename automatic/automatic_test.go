package automatic

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/game"
	"github.com/domino14/mnkgame/solver"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	os.Exit(m.Run())
}

func TestDefaultPlan(t *testing.T) {
	is := is.New(t)
	plan := DefaultPlan()
	is.NoErr(plan.Validate())
	is.Equal(plan.Runs, 3)
	assert.Equal(t, []string{solver.MinimaxName, solver.AlphaBetaName}, plan.Engines)
	is.Equal(len(plan.Configurations), 22)
	is.Equal(plan.Configurations[0], Configuration{M: 2, N: 2, K: 2})
	is.Equal(plan.Configurations[len(plan.Configurations)-1], Configuration{M: 4, N: 4, K: 4})
	for _, c := range plan.Configurations {
		is.True(c.K <= c.M || c.K <= c.N)
	}
	is.Equal(len(plan.Jobs()), 44)
	is.Equal(len(plan.Skipped()), 0)
}

func TestPlanMaxCells(t *testing.T) {
	is := is.New(t)
	plan := DefaultPlan()
	plan.MaxCells = 9
	for _, j := range plan.Jobs() {
		is.True(j.Config.Cells() <= 9)
	}
	for _, c := range plan.Skipped() {
		is.True(c.Cells() > 9)
	}
	// 2x2: k=2. 2x3, 3x2, 3x3: k=2,3. 2x4, 4x2: k=2,3,4.
	is.Equal(len(plan.Jobs()), 2*(1+2+2+2+3+3))
	is.Equal(len(plan.Skipped()), 22-13)
}

func TestLoadPlan(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	err := os.WriteFile(path, []byte("runs: 2\nconfigurations:\n  - {m: 2, n: 2, k: 2}\n  - {m: 3, n: 3, k: 3}\n"), 0644)
	is.NoErr(err)
	plan, err := LoadPlan(path)
	is.NoErr(err)
	is.Equal(plan.Runs, 2)
	is.Equal(len(plan.Configurations), 2)
	is.Equal(plan.Configurations[1], Configuration{M: 3, N: 3, K: 3})
	is.Equal(len(plan.Engines), 2)

	err = os.WriteFile(path, []byte("engines: [negascout]\n"), 0644)
	is.NoErr(err)
	_, err = LoadPlan(path)
	is.True(errors.Is(err, game.ErrUnknownEngine))

	err = os.WriteFile(path, []byte("runs: 0\n"), 0644)
	is.NoErr(err)
	_, err = LoadPlan(path)
	is.True(errors.Is(err, ErrEmptyPlan))
}

func TestGameRunner(t *testing.T) {
	is := is.New(t)
	gamechan := make(chan string, 1)
	r := NewGameRunner(Configuration{M: 2, N: 2, K: 2}, solver.AlphaBetaName, gamechan)
	summary, err := r.PlayGame(context.Background())
	is.NoErr(err)
	// MIN moves first and wins on its second move.
	is.Equal(summary.Value, int(board.MinPlayer))
	is.Equal(summary.Turns, 3)
	is.True(summary.StatesVisited > 0)
	is.Equal(summary.StatesVisited, r.Game().Statistics().StatesVisited)
	is.True(strings.Contains(<-gamechan, "| O "))

	first := r.Game()
	_, err = r.PlayGame(context.Background())
	is.NoErr(err)
	is.True(first != r.Game())
	is.Equal(r.Game().Statistics().StatesVisited, summary.StatesVisited)
}

func TestPlayConfiguration(t *testing.T) {
	is := is.New(t)
	job := Job{Engine: solver.AlphaBetaName, Config: Configuration{M: 3, N: 3, K: 3}}
	res, err := PlayConfiguration(context.Background(), job, 2)
	is.NoErr(err)
	is.Equal(res.Runs, 2)
	is.Equal(res.Draws, 2)
	is.True(res.AvgStates > 0)
	is.True(res.AvgTime > 0)
	// The search is deterministic, so every run visits the same states.
	is.Equal(res.StatesCI, 0.0)
}

func TestRunExperiment(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	plan := Plan{
		Configurations: []Configuration{{2, 2, 2}, {3, 3, 3}, {2, 3, 3}},
		Engines:        []string{solver.MinimaxName, solver.AlphaBetaName},
		Runs:           2,
	}
	dbPath := filepath.Join(dir, "results.db")
	results, err := RunExperiment(context.Background(), plan, Options{
		ResultsDir: dir,
		ResultsDB:  dbPath,
		Threads:    3,
	})
	is.NoErr(err)
	is.Equal(len(results), 6)
	for i, r := range results {
		is.Equal(r.Index, i/2)
		is.Equal(r.Engine, plan.Engines[i%2])
		is.Equal(r.Config, plan.Configurations[i/2])
	}
	// 3x3x3
	is.Equal(results[2].Draws, 2)
	is.True(results[3].AvgStates < results[2].AvgStates)

	f, err := os.Open(filepath.Join(dir, ResultsFileName(solver.MinimaxName)))
	is.NoErr(err)
	defer f.Close()
	header, err := bufio.NewReader(f).ReadString('\n')
	is.NoErr(err)
	is.Equal(header, "m,n,k,avg_time,avg_states_visited\n")

	for j, engine := range plan.Engines {
		fromFile, err := ReadResultsFile(filepath.Join(dir, ResultsFileName(engine)))
		is.NoErr(err)
		is.Equal(len(fromFile), 3)
		for i, r := range fromFile {
			want := results[2*i+j]
			is.Equal(r.Config, want.Config)
			is.Equal(r.AvgStates, want.AvgStates)
			is.Equal(r.AvgTime, want.AvgTime)
		}
	}

	db, err := OpenResultsDB(dbPath)
	is.NoErr(err)
	defer db.Close()
	fromDB, err := ReadResultsDB(db, solver.AlphaBetaName)
	is.NoErr(err)
	is.Equal(len(fromDB), 3)
	// Ordered by m, n, k.
	is.Equal(fromDB[0].Config, Configuration{2, 2, 2})
	is.Equal(fromDB[1].Config, Configuration{2, 3, 3})
	is.Equal(fromDB[1].AvgStates, results[5].AvgStates)
	is.Equal(fromDB[2].Draws, 2)
}

func TestRunExperimentCanceled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	plan := Plan{
		Configurations: []Configuration{{3, 3, 3}},
		Engines:        []string{solver.AlphaBetaName},
		Runs:           1,
	}
	_, err := RunExperiment(ctx, plan, Options{})
	is.True(errors.Is(err, context.Canceled))
}

func TestAnalyzeResultsFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "alphabeta_results.csv")
	err := WriteResultsFile(path, []ConfigResult{
		{Job: Job{Config: Configuration{2, 2, 2}}, AvgTime: 0.0001, AvgStates: 12},
		{Job: Job{Config: Configuration{M: 3, N: 3, K: 3}}, AvgTime: 0.05, AvgStates: 30000},
		{Job: Job{Config: Configuration{3, 2, 2}}, AvgTime: 0.001, AvgStates: 300},
	})
	is.NoErr(err)
	summary, err := AnalyzeResultsFile(path)
	is.NoErr(err)
	is.True(strings.Contains(summary, "Configurations: 3\n"))
	is.True(strings.Contains(summary, "Fastest: m=2 n=2 k=2"))
	is.True(strings.Contains(summary, "Slowest: m=3 n=3 k=3"))
	is.True(strings.Contains(summary, "Most states visited: m=3 n=3 k=3 (30000.0)"))

	_, err = AnalyzeResultsFile(filepath.Join(t.TempDir(), "missing.csv"))
	is.True(err != nil)
}

func TestInsertResultBusy(t *testing.T) {
	is := is.New(t)
	dbPath := filepath.Join(t.TempDir(), "busy.db")
	holder, err := OpenResultsDB(dbPath)
	is.NoErr(err)
	defer holder.Close()
	other, err := OpenResultsDB(dbPath)
	is.NoErr(err)
	defer other.Close()

	r := ConfigResult{Job: Job{Engine: solver.AlphaBetaName, Config: Configuration{M: 3, N: 3, K: 3}}, Runs: 1}

	is.NoErr(insertResult(holder, ConfigResult{Job: Job{Engine: "holder", Config: Configuration{M: 2, N: 2, K: 2}}}))
	// An open write transaction on one connection locks out the other.
	tx, err := holder.Begin()
	is.NoErr(err)
	_, err = tx.Exec(`UPDATE experiment_results SET runs = runs + 1 WHERE engine = ?`, "holder")
	is.NoErr(err)
	err = insertResult(other, r)
	is.True(err != nil)
	is.True(isBusy(err))
	is.NoErr(tx.Rollback())

	is.NoErr(insertResult(other, r))
	stored, err := ReadResultsDB(holder, solver.AlphaBetaName)
	is.NoErr(err)
	is.Equal(len(stored), 1)

	is.True(!isBusy(errors.New("not sqlite")))
}
