package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"mcts-chess/chess"
)

// ErrNoLegalMoves is returned when searching a position where the game is over.
var ErrNoLegalMoves = errors.New("no legal moves, game over")

// DefaultSeed makes searches reproducible unless a caller picks another seed.
const DefaultSeed uint64 = 0x6d637473

// timeCheckInterval is how many iterations pass between clock and context checks.
const timeCheckInterval = 512

// Limits bound a search. Zero values mean unlimited.
type Limits struct {
	Time     time.Duration
	MaxDepth int
	MaxNodes uint64
}

// Info is a progress report.
type Info struct {
	Depth    int
	ScoreCP  int
	Nodes    uint64
	Elapsed  time.Duration
	BestMove chess.Move
}

// NPS returns iterations per second.
func (i Info) NPS() uint64 {
	ms := max(i.Elapsed.Milliseconds(), 1)
	return i.Nodes * 1000 / uint64(ms)
}

// Result is the outcome of a finished search.
type Result struct {
	BestMove chess.Move
	Nodes    uint64
	ScoreCP  int
	Depth    int
	Elapsed  time.Duration
	TreeSize int
}

// Searcher runs MCTS searches. Params is read at the point of use, so
// changes between searches take effect on the next one.
type Searcher struct {
	Params *Params
	Seed   uint64
	// OnInfo, if set, receives progress whenever the rounded average leaf
	// depth changes and once when the search ends.
	OnInfo func(Info)
}

// NewSearcher returns a searcher with default parameters and seed.
func NewSearcher() *Searcher {
	p := DefaultParams()
	return &Searcher{Params: &p, Seed: DefaultSeed}
}

// NewRNG returns a deterministic generator for seed.
func NewRNG(seed uint64) *frand.RNG {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	return frand.NewCustom(s[:], 1024, 8)
}

// Search grows a tree from root until a limit is hit or ctx is done, and
// returns the most visited root move. root is not modified. Every search
// starts from the same seed, so equal inputs give equal results.
func (s *Searcher) Search(ctx context.Context, root *chess.Board, limits Limits) (Result, error) {
	if !root.HasLegalMoves() {
		return Result{}, ErrNoLegalMoves
	}
	params := s.Params
	if params == nil {
		p := DefaultParams()
		params = &p
	}

	start := time.Now()
	board := root.Clone()
	tree := NewTree(board, params, NewRNG(s.Seed))

	var nodes, depthSum uint64
	lastDepth := 0
	report := func(depth int) {
		if s.OnInfo == nil {
			return
		}
		s.OnInfo(Info{
			Depth:    depth,
			ScoreCP:  tree.ScoreCP(RootID),
			Nodes:    nodes,
			Elapsed:  time.Since(start),
			BestMove: tree.MostVisitedMove(RootID),
		})
	}

	for {
		id := tree.Select(RootID, board)
		if tree.State(id) == Ongoing {
			id = tree.Expand(id, board)
		}
		tree.Backprop(id, tree.Simulate(id, board))
		nodes++
		board.RewindTo(root)

		depthSum += uint64(tree.Depth(id))
		avg := float64(depthSum) / float64(nodes)
		if limits.MaxDepth > 0 && avg >= float64(limits.MaxDepth) {
			break
		}
		if rounded := int(math.Round(avg)); rounded != lastDepth {
			report(rounded)
			lastDepth = rounded
		}

		if limits.MaxNodes > 0 && nodes >= limits.MaxNodes {
			break
		}
		if nodes%timeCheckInterval == 0 {
			if limits.Time > 0 && time.Since(start) >= limits.Time {
				break
			}
			if ctx.Err() != nil {
				break
			}
		}
	}

	depth := int(math.Round(float64(depthSum) / float64(nodes)))
	report(depth)

	res := Result{
		BestMove: tree.MostVisitedMove(RootID),
		Nodes:    nodes,
		ScoreCP:  tree.ScoreCP(RootID),
		Depth:    depth,
		Elapsed:  time.Since(start),
		TreeSize: tree.Len(),
	}
	log.Debug().
		Str("fen", root.FEN()).
		Str("bestmove", res.BestMove.String()).
		Uint64("nodes", res.Nodes).
		Int("score", res.ScoreCP).
		Int("depth", res.Depth).
		Dur("elapsed", res.Elapsed).
		Msg("search-finished")
	return res, nil
}
