package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"mcts-chess/chess"
	"mcts-chess/config"
	"mcts-chess/engine"
)

type run struct {
	fen    string
	result engine.Result
}

func main() {
	fs := pflag.NewFlagSet("searchbench", pflag.ExitOnError)
	config.AddFlags(fs)
	fenFlag := fs.String("fen", "", "FEN to search (empty = built-in bench positions)")
	nodesFlag := fs.Uint64("nodes", 50000, "iterations per search (0 = no limit)")
	timeFlag := fs.Duration("time", 0, "time per search (0 = no limit)")
	repeatFlag := fs.Int("repeat", 1, "number of passes over the positions")
	jobsFlag := fs.Int("jobs", 1, "searches run in parallel")
	cpuProfile := fs.String("cpuprofile", "", "write CPU profile to file")
	memProfile := fs.String("memprofile", "", "write memory profile (heap) to file")

	cfg := &config.Config{}
	if err := cfg.LoadFlags(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging(os.Stderr)

	if *nodesFlag == 0 && *timeFlag == 0 {
		log.Fatal().Msg("need --nodes or --time")
	}
	params, err := cfg.EngineParams()
	if err != nil {
		log.Fatal().Err(err).Msg("engine parameters")
	}

	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fens := engine.BenchFENs
	if *fenFlag != "" {
		fens = []string{*fenFlag}
	}
	var boards []*chess.Board
	for _, fen := range fens {
		b, err := chess.ParseFEN(fen, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("bench position")
		}
		boards = append(boards, b)
	}

	limits := engine.Limits{MaxNodes: *nodesFlag, Time: *timeFlag}
	fmt.Printf("searchbench: positions=%d nodes=%d time=%v repeat=%d jobs=%d uct_c=%g eval_scale=%g\n",
		len(boards), limits.MaxNodes, limits.Time, *repeatFlag, *jobsFlag, params.UCTC, params.EvalScale)

	startAll := time.Now()
	var nps []float64
	for i := 0; i < *repeatFlag; i++ {
		runs, err := searchAll(context.Background(), boards, limits, &params, cfg.Seed(), *jobsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("search")
		}
		for _, r := range runs {
			fmt.Printf("pass %d: bestmove %s score cp %d nodes %d depth %d time %v fen %s\n",
				i+1, r.result.BestMove, r.result.ScoreCP, r.result.Nodes, r.result.Depth, r.result.Elapsed, r.fen)
			secs := max(r.result.Elapsed.Seconds(), 1e-6)
			nps = append(nps, float64(r.result.Nodes)/secs)
		}
	}
	mean, std := stat.MeanStdDev(nps, nil)
	fmt.Printf("total time: %v\n", time.Since(startAll))
	fmt.Printf("nps: mean %.0f stddev %.0f over %d searches\n", mean, std, len(nps))

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}

// searchAll searches every board, up to jobs at a time. Each search gets its
// own Searcher, so results do not depend on the schedule.
func searchAll(ctx context.Context, boards []*chess.Board, limits engine.Limits,
	params *engine.Params, seed uint64, jobs int) ([]run, error) {

	runs := make([]run, len(boards))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, b := range boards {
		i, b := i, b
		g.Go(func() error {
			s := &engine.Searcher{Params: params, Seed: seed}
			res, err := s.Search(ctx, b, limits)
			if err != nil {
				return fmt.Errorf("%s: %w", b.FEN(), err)
			}
			runs[i] = run{fen: b.FEN(), result: res}
			return nil
		})
	}
	return runs, g.Wait()
}
