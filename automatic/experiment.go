package automatic

import (
	"context"
	"errors"
	"expvar"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/stats"
)

var (
	ConfigsDone *expvar.Int
	IsRunning   *expvar.Int
)

func init() {
	ConfigsDone = expvar.NewInt("mnkConfigsDone")
	IsRunning = expvar.NewInt("mnkExperimentRunning")
}

var ErrAlreadyRunning = errors.New("an experiment is already running, please wait till complete")

// ConfigResult aggregates the runs of one configuration with one engine.
type ConfigResult struct {
	Job
	Runs int
	// AvgTime is the mean over runs of each game's mean decision time, in
	// seconds. AvgStates is the mean over runs of each game's total states
	// visited.
	AvgTime   float64
	AvgStates float64
	// Half widths of the 95% confidence intervals.
	TimeCI   float64
	StatesCI float64
	MaxWins  int
	MinWins  int
	Draws    int
}

// Options say where results go and how much runs in parallel.
type Options struct {
	// ResultsDir gets one <engine>_results.csv per engine; empty disables.
	ResultsDir string
	// ResultsDB is a SQLite database path; empty disables.
	ResultsDB string
	Threads   int
}

// PlayConfiguration plays a job's configuration runs times in a row.
func PlayConfiguration(ctx context.Context, job Job, runs int) (ConfigResult, error) {
	res := ConfigResult{Job: job, Runs: runs}
	var times, states stats.Statistic
	r := NewGameRunner(job.Config, job.Engine, nil)
	for i := 0; i < runs; i++ {
		summary, err := r.PlayGame(ctx)
		if err != nil {
			return res, err
		}
		times.Push(summary.MeanDecisionTime)
		states.Push(float64(summary.StatesVisited))
		switch summary.Value {
		case int(board.MaxPlayer):
			res.MaxWins++
		case int(board.MinPlayer):
			res.MinWins++
		default:
			res.Draws++
		}
	}
	res.AvgTime = times.Mean()
	res.AvgStates = states.Mean()
	res.TimeCI = times.ConfidenceHalfWidth(95)
	res.StatesCI = states.ConfidenceHalfWidth(95)
	return res, nil
}

// RunExperiment plays every job in the plan, at most opts.Threads
// configurations at a time. Results are written out as each
// configuration finishes, so an interrupted experiment keeps what it
// has. The returned results are in plan order.
func RunExperiment(ctx context.Context, plan Plan, opts Options) ([]ConfigResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if IsRunning.Value() > 0 {
		return nil, ErrAlreadyRunning
	}
	IsRunning.Add(1)
	defer IsRunning.Add(-1)
	ConfigsDone.Set(0)

	for _, c := range plan.Skipped() {
		log.Warn().Stringer("config", c).Int("max-cells", plan.MaxCells).
			Msg("skipping-configuration")
	}
	jobs := plan.Jobs()
	if len(jobs) == 0 {
		return nil, ErrEmptyPlan
	}
	sink, err := newResultSink(opts, plan.Engines)
	if err != nil {
		return nil, err
	}

	threads := max(opts.Threads, 1)
	log.Info().Int("jobs", len(jobs)).Int("threads", threads).Int("runs", plan.Runs).
		Msg("starting-experiment")

	resultsChan := make(chan ConfigResult)
	sinkDone := make(chan error, 1)
	go func() {
		sinkDone <- sink.consume(resultsChan)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			log.Debug().Stringer("config", job.Config).Str("engine", job.Engine).
				Msg("configuration-queued")
			res, err := PlayConfiguration(gctx, job, plan.Runs)
			if err != nil {
				return err
			}
			select {
			case resultsChan <- res:
			case <-gctx.Done():
				return gctx.Err()
			}
			ConfigsDone.Add(1)
			log.Info().Stringer("config", job.Config).Str("engine", job.Engine).
				Float64("avg-time", res.AvgTime).Float64("avg-states", res.AvgStates).
				Msg("configuration-finished")
			return nil
		})
	}
	err = g.Wait()
	close(resultsChan)
	serr := <-sinkDone
	if cerr := sink.Close(); serr == nil {
		serr = cerr
	}
	if err == nil {
		err = serr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return sink.Results(), err
	}
	log.Info().Int64("configurations", ConfigsDone.Value()).Msg("experiment-finished")
	return sink.Results(), nil
}
