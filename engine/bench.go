package engine

import (
	"context"
	"fmt"
	"time"

	"mcts-chess/chess"
)

// BenchFENs is a fixed set of varied positions for speed and regression runs.
var BenchFENs = []string{
	chess.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"8/8/1k6/8/2K5/8/3P4/8 w - - 0 1",
	"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
	"r1b1k2r/ppppnppp/2n2q2/2b5/3NP3/2P1B3/PP3PPP/RN1QKB1R w KQkq - 0 1",
}

// BenchEntry is the result for one bench position.
type BenchEntry struct {
	FEN    string
	Result Result
}

// BenchReport aggregates a bench run.
type BenchReport struct {
	Entries []BenchEntry
	Nodes   uint64
	Elapsed time.Duration
}

// NPS returns iterations per second over the whole run.
func (r BenchReport) NPS() uint64 {
	ms := max(r.Elapsed.Milliseconds(), 1)
	return r.Nodes * 1000 / uint64(ms)
}

// Bench searches every position in fens with a node limit.
func (s *Searcher) Bench(ctx context.Context, fens []string, nodes uint64) (BenchReport, error) {
	var rep BenchReport
	start := time.Now()
	for _, fen := range fens {
		b, err := chess.ParseFEN(fen, nil)
		if err != nil {
			return rep, fmt.Errorf("bench position: %w", err)
		}
		res, err := s.Search(ctx, b, Limits{MaxNodes: nodes})
		if err != nil {
			return rep, fmt.Errorf("bench %s: %w", fen, err)
		}
		rep.Entries = append(rep.Entries, BenchEntry{FEN: fen, Result: res})
		rep.Nodes += res.Nodes
		if ctx.Err() != nil {
			break
		}
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}
