package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"slices"
	"strings"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"mcts-chess/chess"
	"mcts-chess/config"
)

func main() {
	fs := pflag.NewFlagSet("perft", pflag.ExitOnError)
	config.AddFlags(fs)
	fen := fs.String("fen", chess.FENStartPos, "FEN string (defaults to initial position)")
	depth := fs.Int("depth", 0, "Perft depth (required)")
	divide := fs.Bool("divide", false, "Print per-move node counts at root")
	repeat := fs.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := fs.String("label", "", "Optional label prefix for one-line output")
	verify := fs.Bool("verify", false, "Cross-check every root move against dragontoothmg")
	jobs := fs.Int("jobs", 1, "Root moves searched in parallel")
	cpuProf := fs.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := fs.String("memprofile", "", "Write heap profile to file after run")

	cfg := &config.Config{}
	if err := cfg.LoadFlags(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.SetupLogging(os.Stderr)

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "--depth must be > 0")
		os.Exit(2)
	}
	board, err := chess.ParseFEN(*fen, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}
	ctx := context.Background()

	if *verify {
		if err := verifyAgainstDragontooth(ctx, board, *depth, *jobs); err != nil {
			log.Error().Err(err).Str("fen", *fen).Msg("verify-failed")
			os.Exit(1)
		}
		fmt.Println("verify ok")
		return
	}

	if *divide {
		div, err := divideParallel(ctx, board, *depth, *jobs)
		if err != nil {
			log.Fatal().Err(err).Msg("divide")
		}
		moves := lo.Keys(div)
		slices.SortFunc(moves, func(a, b chess.Move) int { return strings.Compare(a.String(), b.String()) })
		var sum uint64
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
			sum += div[m]
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Fatal().Err(err).Msg("creating cpuprofile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("start cpu profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		div, err := divideParallel(ctx, board, *depth, *jobs)
		if err != nil {
			log.Fatal().Err(err).Msg("perft")
		}
		totalNodes += lo.Sum(lo.Values(div))
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Label Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			log.Fatal().Err(err).Msg("creating memprofile")
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("write heap profile")
		}
		_ = f.Close()
	}
}

// divideParallel counts the leaves below each root move, running up to jobs
// subtrees at once on their own copies of b.
func divideParallel(ctx context.Context, b *chess.Board, depth, jobs int) (map[chess.Move]uint64, error) {
	moves := b.LegalMoves(true)
	counts := make([]uint64, len(moves))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := b.Clone()
			child.ApplyMove(m)
			counts[i] = chess.Perft(child, depth-1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	div := make(map[chess.Move]uint64, len(moves))
	for i, m := range moves {
		div[m] = counts[i]
	}
	return div, nil
}

func dragonPerft(b *dragontoothmg.Board, depth int) uint64 {
	moves := b.GenerateLegalMoves()
	if depth <= 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		undo := b.Apply(m)
		n += dragonPerft(b, depth-1)
		undo()
	}
	return n
}

// verifyAgainstDragontooth compares the divide of both generators and names
// the first root move whose subtree differs.
func verifyAgainstDragontooth(ctx context.Context, b *chess.Board, depth, jobs int) error {
	ours, err := divideParallel(ctx, b, depth, jobs)
	if err != nil {
		return err
	}
	ref := dragontoothmg.ParseFen(b.FEN())
	theirs := make(map[string]uint64)
	for _, m := range ref.GenerateLegalMoves() {
		undo := ref.Apply(m)
		n := uint64(1)
		if depth > 1 {
			n = dragonPerft(&ref, depth-1)
		}
		undo()
		theirs[m.String()] = n
	}

	oursByName := lo.MapKeys(ours, func(_ uint64, m chess.Move) string { return m.String() })
	for name, want := range theirs {
		got, ok := oursByName[name]
		if !ok {
			return fmt.Errorf("move %s missing", name)
		}
		if got != want {
			return fmt.Errorf("move %s: %d nodes, dragontoothmg has %d", name, got, want)
		}
		log.Debug().Str("move", name).Uint64("nodes", got).Msg("verified")
	}
	if extra, _ := lo.Difference(lo.Keys(oursByName), lo.Keys(theirs)); len(extra) > 0 {
		return fmt.Errorf("moves %v not generated by dragontoothmg", extra)
	}
	return nil
}
