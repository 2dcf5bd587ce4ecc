package uci

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcts-chess/chess"
	"mcts-chess/engine"
)

func newTestEngine() (*Engine, *bytes.Buffer) {
	var out bytes.Buffer
	return NewEngine(&out, Options{}), &out
}

func lines(out *bytes.Buffer) []string {
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestUCIHandshake(t *testing.T) {
	is := is.New(t)
	e, out := newTestEngine()
	is.NoErr(e.Handle(context.Background(), "uci"))
	got := lines(out)
	is.Equal(got[0], "id name mcts-chess")
	is.Equal(got[2], "option name UCT_C type spin default 150 min 110 max 400")
	is.Equal(got[3], "option name EVAL_SCALE type spin default 20000 min 10000 max 80000")
	is.Equal(got[len(got)-1], "uciok")

	out.Reset()
	is.NoErr(e.Handle(context.Background(), "isready"))
	is.Equal(out.String(), "readyok\n")
}

func TestBlankAndUnknown(t *testing.T) {
	is := is.New(t)
	e, out := newTestEngine()
	is.NoErr(e.Handle(context.Background(), "   "))
	is.True(errors.Is(e.Handle(context.Background(), "xyzzy"), ErrUnknownCommand))
	is.Equal(out.Len(), 0)
	is.True(errors.Is(e.Handle(context.Background(), "quit"), ErrQuit))
}

func TestPosition(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()

	require.NoError(t, e.Handle(ctx, "position startpos moves e2e4 e7e5 g1f3"))
	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", e.Board().FEN())

	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	require.NoError(t, e.Handle(ctx, "position fen "+fen))
	assert.Equal(t, fen, e.Board().FEN())

	require.NoError(t, e.Handle(ctx, "position fen "+fen+" moves e1g1"))
	assert.Equal(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R4RK1 b kq - 1 1", e.Board().FEN())

	// Short FEN without clocks.
	require.NoError(t, e.Handle(ctx, "position fen 4k3/8/8/8/8/8/8/4K2R w K -"))
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1", e.Board().FEN())
}

func TestPositionIsAtomic(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine()
	require.NoError(t, e.Handle(ctx, "position startpos moves d2d4"))
	before := e.Board().FEN()

	for _, cmd := range []string{
		"position startpos moves e2e4 e2e4",
		"position startpos moves e2e5",
		"position fen rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"position fen",
		"position",
		"position midgame",
		"position startpos e2e4",
	} {
		assert.Error(t, e.Handle(ctx, cmd), cmd)
		assert.Equal(t, before, e.Board().FEN(), cmd)
	}

	err := e.Handle(ctx, "position startpos moves e2e5")
	assert.True(t, errors.Is(err, chess.ErrIllegalMove))
	err = e.Handle(ctx, "position fen 8/8/8 w - - 0 1")
	assert.True(t, errors.Is(err, chess.ErrParse))
}

func TestPositionRejectsUnsoundFEN(t *testing.T) {
	ctx := context.Background()
	e, out := newTestEngine()
	require.NoError(t, e.Handle(ctx, "position fen 6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"))
	before := e.Board().FEN()

	for _, fen := range []string{
		"4k2P/8/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/p7/8/8/8/8/P7/4R2K w - - 0 1",
		"4k3/8/8/8/8/8/8/7K w K - 0 1",
	} {
		err := e.Handle(ctx, "position fen "+fen)
		assert.True(t, errors.Is(err, chess.ErrParse), fen)
		assert.Equal(t, before, e.Board().FEN(), fen)
	}

	require.NoError(t, e.Handle(ctx, "go nodes 4000"))
	e.Wait()
	got := lines(out)
	assert.Equal(t, "bestmove d1d8", got[len(got)-1])
}

func TestMakeMoveAndNewGame(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	e, _ := newTestEngine()
	is.NoErr(e.Handle(ctx, "makemove e2e4"))
	is.Equal(e.Board().SideToMove(), chess.Black)
	is.True(errors.Is(e.Handle(ctx, "makemove e2e4"), chess.ErrIllegalMove))
	is.True(errors.Is(e.Handle(ctx, "makemove"), ErrSyntax))
	is.NoErr(e.Handle(ctx, "ucinewgame"))
	is.Equal(e.Board().FEN(), chess.FENStartPos)
}

func TestDisplay(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	e, out := newTestEngine()
	is.NoErr(e.Handle(ctx, "position startpos moves e2e4"))
	for _, cmd := range displayAliases {
		out.Reset()
		is.NoErr(e.Handle(ctx, cmd))
		s := out.String()
		is.True(strings.Contains(s, "Fen: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"))
		is.True(strings.Contains(s, "Last move: e2e4"))
		is.True(strings.Contains(s, "Status: ongoing"))
		is.True(strings.Contains(s, "Zobrist hash: "))
	}
}

func TestSetOption(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	e, out := newTestEngine()

	is.NoErr(e.Handle(ctx, "setoption name UCT_C value 250"))
	is.Equal(e.Params().UCTC, 2.5)
	is.Equal(out.String(), "info string UCT_C set to 2.5\n")

	is.NoErr(e.Handle(ctx, "setoption name eval_scale value 30000"))
	is.Equal(e.Params().EvalScale, 300.0)

	err := e.Handle(ctx, "setoption name UCT_C value 9000")
	is.True(errors.Is(err, engine.ErrParamRange))
	is.Equal(e.Params().UCTC, 2.5)

	is.True(errors.Is(e.Handle(ctx, "setoption name Hash value 16"), engine.ErrUnknownParam))
	is.True(errors.Is(e.Handle(ctx, "setoption name UCT_C value high"), ErrSyntax))
	is.True(errors.Is(e.Handle(ctx, "setoption UCT_C 250"), ErrSyntax))

	out.Reset()
	is.NoErr(e.Handle(ctx, "params"))
	is.True(strings.Contains(out.String(), "uct_c: 2.5"))
	is.True(strings.Contains(out.String(), "eval_scale: 300"))
}

func TestPerftCommands(t *testing.T) {
	ctx := context.Background()
	e, out := newTestEngine()

	require.NoError(t, e.Handle(ctx, "perft 3"))
	assert.Contains(t, out.String(), "perft depth 3 nodes 8902 ")
	assert.Contains(t, out.String(), "fen "+chess.FENStartPos)

	out.Reset()
	require.NoError(t, e.Handle(ctx, "go perft 2"))
	assert.Contains(t, out.String(), "perft depth 2 nodes 400 ")

	for _, alias := range perftSplitAliases {
		out.Reset()
		require.NoError(t, e.Handle(ctx, alias+" 2"))
		got := lines(out)
		// Header, 20 moves, total.
		require.Len(t, got, 22, alias)
		assert.Equal(t, "a2a3: 20", got[1])
		assert.Equal(t, "Total: 400", got[21])
	}

	assert.True(t, errors.Is(e.Handle(ctx, "perft"), ErrSyntax))
	assert.True(t, errors.Is(e.Handle(ctx, "perft deep"), ErrSyntax))
}

func TestGoPrintsBestMove(t *testing.T) {
	ctx := context.Background()
	e, out := newTestEngine()
	require.NoError(t, e.Handle(ctx, "position fen 6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"))
	require.NoError(t, e.Handle(ctx, "go nodes 4000"))
	e.Wait()

	got := lines(out)
	assert.Equal(t, "bestmove d1d8", got[len(got)-1])
	info := got[len(got)-2]
	assert.True(t, strings.HasPrefix(info, "info depth "), info)
	assert.Contains(t, info, " nodes 4000 ")
	assert.Contains(t, info, " pv d1d8")
}

func TestGoOnFinishedGame(t *testing.T) {
	ctx := context.Background()
	e, out := newTestEngine()
	require.NoError(t, e.Handle(ctx, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	require.NoError(t, e.Handle(ctx, "go movetime 100"))
	e.Wait()
	assert.Equal(t, "bestmove (none)", lines(out)[1])
}

func TestGoArguments(t *testing.T) {
	e, _ := newTestEngine()
	require.NoError(t, e.Handle(context.Background(), "position startpos moves e2e4"))

	limits, err := e.parseGo(strings.Fields("wtime 100000 btime 50010 winc 1000 binc 2000"))
	require.NoError(t, err)
	// Black to move: (50010-10)/25 + 2000*3/4.
	assert.Equal(t, int64(3500), limits.Time.Milliseconds())

	limits, err = e.parseGo(strings.Fields("movetime 1000 depth 0 nodes -5"))
	require.NoError(t, err)
	assert.Equal(t, int64(990), limits.Time.Milliseconds())
	assert.Equal(t, 1, limits.MaxDepth)
	assert.Equal(t, uint64(1), limits.MaxNodes)

	limits, err = e.parseGo(strings.Fields("infinite"))
	require.NoError(t, err)
	assert.Equal(t, engine.Limits{}, limits)

	limits, err = e.parseGo(strings.Fields("infinite movetime 500"))
	require.NoError(t, err)
	assert.Zero(t, limits.Time)

	_, err = e.parseGo(strings.Fields("wtime"))
	assert.True(t, errors.Is(err, ErrSyntax))
	_, err = e.parseGo(strings.Fields("ponderhit 3"))
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestStopAndBusy(t *testing.T) {
	ctx := context.Background()
	e, out := newTestEngine()
	require.NoError(t, e.Handle(ctx, "go infinite"))
	assert.True(t, e.Busy())

	assert.True(t, errors.Is(e.Handle(ctx, "position startpos"), ErrBusy))
	assert.True(t, errors.Is(e.Handle(ctx, "setoption name UCT_C value 200"), ErrBusy))
	assert.True(t, errors.Is(e.Handle(ctx, "go nodes 5"), ErrBusy))
	require.NoError(t, e.Handle(ctx, "isready"))

	require.NoError(t, e.Handle(ctx, "stop"))
	assert.False(t, e.Busy())
	assert.Contains(t, out.String(), "readyok\n")
	assert.Contains(t, out.String(), "bestmove ")

	// Stop with nothing running is harmless.
	require.NoError(t, e.Handle(ctx, "stop"))
}

func TestLoop(t *testing.T) {
	var out bytes.Buffer
	e := NewEngine(&out, Options{})
	in := strings.NewReader(strings.Join([]string{
		"uci",
		"isready",
		"bogus",
		"position startpos moves e2e4",
		"go nodes 300",
		"isready",
		"quit",
		"isready",
	}, "\n"))
	require.NoError(t, e.Loop(context.Background(), in))

	s := out.String()
	assert.Contains(t, s, "uciok\n")
	assert.Contains(t, s, `info string error: "bogus": unknown command`)
	assert.Contains(t, s, "bestmove ")
	// Nothing after quit.
	assert.Equal(t, 2, strings.Count(s, "readyok"))
}

func TestLoopWaitsForSearchAtEOF(t *testing.T) {
	var out bytes.Buffer
	e := NewEngine(&out, Options{})
	in := strings.NewReader("go nodes 200\n")
	require.NoError(t, e.Loop(context.Background(), in))
	assert.Contains(t, out.String(), "bestmove ")

	out.Reset()
	require.NoError(t, e.Loop(context.Background(), strings.NewReader("go infinite\n")))
	assert.Contains(t, out.String(), "bestmove ")
}

func TestBenchCommand(t *testing.T) {
	e, out := newTestEngine()
	require.NoError(t, e.Handle(context.Background(), "bench 100"))
	got := lines(out)
	require.Len(t, got, len(engine.BenchFENs)+1)
	assert.True(t, strings.HasPrefix(got[len(got)-1], "bench nodes 1000 "))
}

func TestSeedOption(t *testing.T) {
	run := func(seed uint64) string {
		var out bytes.Buffer
		e := NewEngine(&out, Options{Seed: seed})
		require.NoError(t, e.Handle(context.Background(), "go nodes 500"))
		e.Wait()
		return lines(&out)[len(lines(&out))-1]
	}
	assert.Equal(t, run(11), run(11))
}
