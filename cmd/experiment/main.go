package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mnkgame/automatic"
	"github.com/domino14/mnkgame/config"
)

func main() {
	cfg := config.DefaultConfig()
	if _, err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()

	plan := automatic.DefaultPlan()
	plan.Runs = cfg.GetInt(config.ConfigExperimentRuns)
	if path := cfg.GetString(config.ConfigExperimentPlan); path != "" {
		var err error
		if plan, err = automatic.LoadPlan(path); err != nil {
			log.Fatal().Err(err).Msg("loading-plan")
		}
	}
	if plan.MaxCells == 0 {
		plan.MaxCells = cfg.GetInt(config.ConfigExperimentMaxCells)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := automatic.RunExperiment(ctx, plan, automatic.Options{
		ResultsDir: cfg.GetString(config.ConfigResultsDir),
		ResultsDB:  cfg.GetString(config.ConfigResultsDB),
		Threads:    cfg.GetInt(config.ConfigExperimentThreads),
	})
	if err != nil {
		log.Error().Err(err).Int("completed", len(results)).Msg("experiment-failed")
		os.Exit(1)
	}
	for _, engine := range plan.Engines {
		path := filepath.Join(cfg.GetString(config.ConfigResultsDir), automatic.ResultsFileName(engine))
		summary, err := automatic.AnalyzeResultsFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("analyze-failed")
			continue
		}
		fmt.Printf("%s (%s)\n%s\n", engine, path, summary)
	}
}
