// cmd/texel/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"mcts-chess/config"
	"mcts-chess/engine"
	"mcts-chess/tuner"
)

func main() {
	fs := pflag.NewFlagSet("texel", pflag.ExitOnError)
	config.AddFlags(fs)
	dataPath := fs.String("data", "", "Path to labelled positions (FEN [result], FEN;result or FEN<TAB>result)")
	outYAML := fs.String("out", "params_out.yaml", "Where to write the tuned parameters as YAML")
	maxRows := fs.Int("max-rows", 0, "Optional cap on rows loaded (0=all)")

	cfg := &config.Config{}
	if err := cfg.LoadFlags(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging(os.Stderr)
	if *dataPath == "" {
		fmt.Println("Usage:")
		fs.PrintDefaults()
		os.Exit(2)
	}

	params, err := cfg.EngineParams()
	if err != nil {
		log.Fatal().Err(err).Msg("engine parameters")
	}

	fmt.Printf("Loading dataset: %s\n", *dataPath)
	f, err := os.Open(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open dataset")
	}
	samples, err := tuner.LoadDataset(f, *maxRows)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("load dataset")
	}
	fmt.Printf("Loaded %d samples\n", len(samples))

	before := tuner.Loss(samples, params.EvalScale)
	scale, after, err := tuner.FitScale(samples, params.EvalScale)
	if err != nil {
		log.Fatal().Err(err).Msg("fit")
	}
	fmt.Printf("eval scale %.1f -> %.1f, loss %.6f -> %.6f\n", params.EvalScale, scale, before, after)

	tunable, _ := lo.Find(params.Tunables(), func(t engine.Tunable) bool { return t.Name == engine.ParamEvalScale })
	if err := params.SetFloat(engine.ParamEvalScale, engine.Clamp(scale, tunable.Min, tunable.Max)); err != nil {
		log.Fatal().Err(err).Msg("set eval scale")
	}
	if params.EvalScale != scale {
		log.Warn().Float64("fitted", scale).Float64("stored", params.EvalScale).Msg("eval scale clamped to option range")
	}

	if err := os.MkdirAll(filepath.Dir(*outYAML), 0o755); err != nil && !os.IsExist(err) {
		log.Fatal().Err(err).Msg("output dir")
	}
	out, err := os.Create(*outYAML)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	defer out.Close()
	if err := params.WriteYAML(out); err != nil {
		log.Fatal().Err(err).Msg("write params")
	}
	fmt.Printf("Saved tuned parameters to %s\n", *outYAML)
}
