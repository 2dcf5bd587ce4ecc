package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"mcts-chess/config"
	"mcts-chess/uci"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg.SetupLogging(os.Stderr)
	log.Debug().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	params, err := cfg.EngineParams()
	if err != nil {
		log.Fatal().Err(err).Msg("engine parameters")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := uci.NewEngine(os.Stdout, uci.Options{
		Params:       &params,
		Seed:         cfg.Seed(),
		MoveOverhead: cfg.MoveOverhead(),
	})
	if err := uciLoop(ctx, e); err != nil {
		log.Error().Err(err).Msg("reading stdin")
		os.Exit(1)
	}
}

func uciLoop(ctx context.Context, e *uci.Engine) error {
	return e.Loop(ctx, os.Stdin)
}
