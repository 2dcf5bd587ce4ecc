// Package uci speaks the Universal Chess Interface on top of the chess and
// engine packages.
package uci

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"mcts-chess/chess"
	"mcts-chess/engine"
)

var (
	// ErrQuit is returned by Handle for the quit command.
	ErrQuit = errors.New("quit")
	// ErrUnknownCommand is returned for a command the engine does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBusy is returned for a command that needs the search to be idle.
	ErrBusy = errors.New("search in progress")
	// ErrSyntax is returned for a known command with malformed arguments.
	ErrSyntax = errors.New("malformed command")
)

const (
	engineName   = "mcts-chess"
	engineAuthor = "the mcts-chess authors"

	// DefaultBenchNodes is the per-position node limit of the bench command.
	DefaultBenchNodes = 20000
)

var perftSplitAliases = []string{"perftsplit", "splitperft", "perftdivide", "divideperft"}

var displayAliases = []string{"d", "print", "display", "show"}

// Options configure a new Engine. Zero values select the defaults.
type Options struct {
	Params       *engine.Params
	Seed         uint64
	MoveOverhead time.Duration
}

// Engine holds the protocol state: the current position, the searcher and
// at most one background search. Handle must be called from one goroutine.
type Engine struct {
	outMu sync.Mutex
	out   io.Writer

	board    *chess.Board
	searcher *engine.Searcher
	overhead time.Duration

	cancel    context.CancelFunc
	done      chan struct{}
	unbounded bool
}

// NewEngine returns an engine at the start position writing protocol output to out.
func NewEngine(out io.Writer, opts Options) *Engine {
	s := engine.NewSearcher()
	if opts.Params != nil {
		p := *opts.Params
		s.Params = &p
	}
	if opts.Seed != 0 {
		s.Seed = opts.Seed
	}
	e := &Engine{
		out:      out,
		board:    chess.NewBoard(),
		searcher: s,
		overhead: opts.MoveOverhead,
	}
	if e.overhead == 0 {
		e.overhead = engine.DefaultMoveOverhead
	}
	s.OnInfo = e.reportInfo
	return e
}

// Board returns a copy of the current position.
func (e *Engine) Board() *chess.Board { return e.board.Clone() }

// Params returns the live search coefficients.
func (e *Engine) Params() *engine.Params { return e.searcher.Params }

func (e *Engine) printf(format string, args ...any) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	fmt.Fprintf(e.out, format+"\n", args...)
}

func (e *Engine) write(p []byte) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	e.out.Write(p)
}

func (e *Engine) reportInfo(i engine.Info) {
	e.printf("info depth %d score cp %d nodes %d nps %d time %d pv %s",
		i.Depth, i.ScoreCP, i.Nodes, i.NPS(), i.Elapsed.Milliseconds(), i.BestMove)
}

// Loop reads commands from r until quit, end of input or ctx is done.
// Command errors are reported to the GUI and do not end the loop.
func (e *Engine) Loop(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := sc.Text()
		err := e.Handle(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			log.Warn().Err(err).Str("command", line).Msg("command-failed")
			e.printf("info string error: %v", err)
		}
	}
	if e.unbounded {
		e.Stop()
	}
	e.Wait()
	return sc.Err()
}

// Handle executes one command line.
func (e *Engine) Handle(ctx context.Context, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	log.Debug().Str("command", line).Msg("uci-command")

	cmd, args := tokens[0], tokens[1:]
	switch {
	case cmd == "uci":
		e.uci()
	case cmd == "isready":
		e.printf("readyok")
	case cmd == "quit":
		e.Stop()
		return ErrQuit
	case cmd == "stop":
		e.Stop()
	case lo.Contains(displayAliases, cmd):
		e.display()
	case cmd == "params":
		var buf bytes.Buffer
		if err := e.searcher.Params.WriteYAML(&buf); err != nil {
			return err
		}
		e.write(buf.Bytes())
	default:
		if e.Busy() {
			return fmt.Errorf("%s: %w", cmd, ErrBusy)
		}
		return e.handleIdle(ctx, cmd, args)
	}
	return nil
}

// handleIdle runs the commands that need the search to be idle.
func (e *Engine) handleIdle(ctx context.Context, cmd string, args []string) error {
	switch {
	case cmd == "ucinewgame":
		e.board = chess.NewBoard()
	case cmd == "position":
		return e.position(args)
	case cmd == "go" && len(args) > 0 && args[0] == "perft":
		return e.perft(args[1:])
	case cmd == "go":
		return e.goCmd(ctx, args)
	case cmd == "perft":
		return e.perft(args)
	case lo.Contains(perftSplitAliases, cmd):
		return e.perftSplit(args)
	case cmd == "setoption":
		return e.setOption(args)
	case cmd == "makemove":
		if len(args) != 1 {
			return fmt.Errorf("makemove needs one move: %w", ErrSyntax)
		}
		return e.board.ApplyUCI(args[0])
	case cmd == "bench":
		return e.bench(ctx, args)
	default:
		return fmt.Errorf("%q: %w", cmd, ErrUnknownCommand)
	}
	return nil
}

func (e *Engine) uci() {
	e.printf("id name %s", engineName)
	e.printf("id author %s", engineAuthor)
	for _, t := range e.searcher.Params.Tunables() {
		e.printf("option name %s type spin default %d min %d max %d",
			t.Name, t.CentiValue(), t.CentiMin(), t.CentiMax())
	}
	e.printf("uciok")
}

func (e *Engine) display() {
	var sb strings.Builder
	sb.WriteString(e.board.String())
	fmt.Fprintf(&sb, "Fen: %s\n", e.board.FEN())
	fmt.Fprintf(&sb, "Zobrist hash: %d\n", e.board.Hash())
	if m := e.board.LastMove(); m != chess.NullMove {
		fmt.Fprintf(&sb, "Last move: %s\n", m)
	}
	fmt.Fprintf(&sb, "Status: %s\n", e.board.Status())
	e.write([]byte(sb.String()))
}

// position replaces the current position. On any error the previous
// position is kept.
func (e *Engine) position(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("position needs startpos or fen: %w", ErrSyntax)
	}
	movesAt := lo.IndexOf(args, "moves")
	if movesAt < 0 {
		movesAt = len(args)
	}

	var b *chess.Board
	switch args[0] {
	case "startpos":
		if movesAt != 1 {
			return fmt.Errorf("unexpected %q after startpos: %w", args[1], ErrSyntax)
		}
		b = chess.NewBoard()
	case "fen":
		var err error
		b, err = chess.ParseFEN(strings.Join(args[1:movesAt], " "), e.board.Keys())
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("position %q: %w", args[0], ErrSyntax)
	}

	if movesAt < len(args) {
		if err := b.ApplyUCISequence(args[movesAt+1:]); err != nil {
			return err
		}
	}
	e.board = b
	return nil
}

func parseInt(key string, args []string, i int) (int64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%s needs a value: %w", key, ErrSyntax)
	}
	v, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, args[i], ErrSyntax)
	}
	return v, nil
}

func millis(v int64) time.Duration { return time.Duration(max(v, 0)) * time.Millisecond }

// parseGo turns go arguments into search limits for the side to move.
func (e *Engine) parseGo(args []string) (engine.Limits, error) {
	var (
		limits   engine.Limits
		clock    engine.Clock
		infinite bool
	)
	us := e.board.SideToMove()
	for i := 0; i < len(args); i++ {
		key := args[i]
		if key == "infinite" {
			infinite = true
			continue
		}
		v, err := parseInt(key, args, i+1)
		if err != nil {
			return limits, err
		}
		i++
		switch key {
		case "wtime", "btime":
			if (key == "wtime") == (us == chess.White) {
				clock.Remaining, clock.HasRemaining = millis(v), true
			}
		case "winc", "binc":
			if (key == "winc") == (us == chess.White) {
				clock.Increment = millis(v)
			}
		case "movetime":
			clock.MoveTime, clock.HasMoveTime = millis(v), true
		case "depth":
			limits.MaxDepth = int(max(v, 1))
		case "nodes":
			limits.MaxNodes = uint64(max(v, 1))
		case "movestogo":
		default:
			return limits, fmt.Errorf("go %q: %w", key, ErrSyntax)
		}
	}
	if !infinite {
		limits.Time = engine.AllocateTime(clock, e.overhead)
	}
	return limits, nil
}

func (e *Engine) goCmd(ctx context.Context, args []string) error {
	limits, err := e.parseGo(args)
	if err != nil {
		return err
	}
	if !e.board.HasLegalMoves() {
		e.printf("info string %v", engine.ErrNoLegalMoves)
		e.printf("bestmove (none)")
		return nil
	}

	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	e.unbounded = limits == engine.Limits{}

	root := e.board.Clone()
	go func() {
		defer close(done)
		defer cancel()
		res, err := e.searcher.Search(sctx, root, limits)
		if err != nil {
			e.printf("info string %v", err)
			e.printf("bestmove (none)")
			return
		}
		e.printf("bestmove %s", res.BestMove)
	}()
	return nil
}

// Busy reports whether a search is running.
func (e *Engine) Busy() bool {
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Stop ends a running search and waits for its bestmove.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.Wait()
}

// Wait blocks until a running search has finished.
func (e *Engine) Wait() {
	if e.done != nil {
		<-e.done
	}
}

func (e *Engine) setOption(args []string) error {
	nameAt := lo.IndexOf(args, "name")
	valueAt := lo.IndexOf(args, "value")
	if nameAt != 0 || valueAt < 2 || valueAt != len(args)-2 {
		return fmt.Errorf("setoption name <id> value <x>: %w", ErrSyntax)
	}
	name := strings.Join(args[1:valueAt], " ")
	raw, err := parseInt(name, args, valueAt+1)
	if err != nil {
		return err
	}

	t, ok := lo.Find(e.searcher.Params.Tunables(), func(t engine.Tunable) bool {
		return strings.EqualFold(t.Name, name)
	})
	if !ok {
		return fmt.Errorf("%q: %w", name, engine.ErrUnknownParam)
	}
	if err := e.searcher.Params.Set(t.Name, raw); err != nil {
		return err
	}
	e.printf("info string %s set to %g", t.Name, float64(raw)/100)
	return nil
}

func parseDepth(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("perft needs a depth: %w", ErrSyntax)
	}
	v, err := parseInt("depth", args, len(args)-1)
	if err != nil {
		return 0, err
	}
	return int(max(v, 0)), nil
}

func (e *Engine) perft(args []string) error {
	depth, err := parseDepth(args)
	if err != nil {
		return err
	}
	fen := e.board.FEN()
	e.printf("Running perft depth %d on %s", depth, fen)
	start := time.Now()
	nodes := chess.Perft(e.board, depth)
	elapsed := time.Since(start).Milliseconds()
	e.printf("perft depth %d nodes %d nps %d time %d fen %s",
		depth, nodes, nodes*1000/uint64(max(elapsed, 1)), elapsed, fen)
	return nil
}

func (e *Engine) perftSplit(args []string) error {
	depth, err := parseDepth(args)
	if err != nil {
		return err
	}
	if depth == 0 {
		return nil
	}
	e.printf("Running split perft depth %d on %s", depth, e.board.FEN())
	div := chess.PerftDivide(e.board, depth)
	moves := lo.Keys(div)
	slices.SortFunc(moves, func(a, b chess.Move) int {
		return strings.Compare(a.String(), b.String())
	})
	var total uint64
	for _, m := range moves {
		e.printf("%s: %d", m, div[m])
		total += div[m]
	}
	e.printf("Total: %d", total)
	return nil
}

func (e *Engine) bench(ctx context.Context, args []string) error {
	nodes := uint64(DefaultBenchNodes)
	if len(args) > 0 {
		v, err := parseInt("bench", args, 0)
		if err != nil {
			return err
		}
		nodes = uint64(max(v, 1))
	}
	s := *e.searcher
	s.OnInfo = nil
	rep, err := s.Bench(ctx, engine.BenchFENs, nodes)
	if err != nil {
		return err
	}
	for i, entry := range rep.Entries {
		e.printf("info string bench %d/%d bestmove %s score cp %d nodes %d fen %s",
			i+1, len(rep.Entries), entry.Result.BestMove, entry.Result.ScoreCP, entry.Result.Nodes, entry.FEN)
	}
	e.printf("bench nodes %d nps %d time %d", rep.Nodes, rep.NPS(), rep.Elapsed.Milliseconds())
	return nil
}
