// Command mnkgame plays one game of m,n,k tic-tac-toe in the terminal:
//
//	mnkgame [flags] m n k
//
// By default MAX is a human, who is shown the engine's recommendation
// before every move, and MIN is the engine. MIN moves first.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mnkgame/config"
	"github.com/domino14/mnkgame/game"
	"github.com/domino14/mnkgame/shell"
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func dimensions(args []string) (int, int, int, error) {
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 arguments m n k, got %d", len(args))
	}
	var dims [3]int
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("bad dimension %q: %w", a, err)
		}
		dims[i] = v
	}
	return dims[0], dims[1], dims[2], nil
}

func main() {
	cfg := config.DefaultConfig()
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging()
	m, n, k, err := dimensions(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nusage: mnkgame [flags] m n k\n", err)
		os.Exit(2)
	}

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	settings := game.Settings{
		Rows:   m,
		Cols:   n,
		K:      k,
		Engine: cfg.GetString(config.ConfigEngine),
	}
	if settings.MaxAutomated, err = config.Automated("max", cfg.GetString(config.ConfigMaxPlayer)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if settings.MinAutomated, err = config.Automated("min", cfg.GetString(config.ConfigMinPlayer)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	g, err := game.NewGame(settings)
	if err != nil {
		log.Error().Err(err).Msg("new-game")
		os.Exit(2)
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:              "> ",
		InterruptPrompt:     "^C",
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	out := l.Stdout()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	display := cfg.GetBool(config.ConfigDisplay)
	if display {
		fmt.Fprintln(out, g.Board().ToDisplayText())
	}
	err = g.Play(ctx, shell.NewPromptMoveSource(l, out), func(g *game.Game, t game.Turn) {
		fmt.Fprintf(out, "Player %v played %v\n", t.Player, t.Move)
		if display {
			fmt.Fprintln(out, g.Board().ToDisplayText())
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("game-aborted")
		return
	}
	fmt.Fprintln(out, g.OutcomeString())

	if dir := cfg.GetString(config.ConfigTranscriptDir); dir != "" {
		path, err := g.SaveTranscript(dir)
		if err != nil {
			log.Error().Err(err).Msg("saving-transcript")
			return
		}
		log.Info().Str("path", path).Msg("saved-transcript")
	}
}
