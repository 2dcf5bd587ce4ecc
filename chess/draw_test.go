package chess

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestRepetitionAfterKnightShuffle(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	seq := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i, mv := range seq {
		is.NoErr(b.ApplyUCI(mv))
		if i < len(seq)-1 {
			is.True(!b.IsRepetition())
		}
	}
	// One earlier occurrence is enough.
	is.True(b.IsRepetition())
	is.Equal(b.Status(), RepetitionDraw)
}

func TestRepetitionWindowStopsAtIrreversibleMove(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	is.NoErr(b.ApplyUCISequence([]string{"g1f3", "g8f6", "f3g1", "f6g8"}))
	is.True(b.IsRepetition())

	// A pawn move resets the clock, so the earlier start positions are out of reach.
	is.NoErr(b.ApplyUCISequence([]string{"e2e3", "e7e6", "g1f3", "g8f6", "f3g1"}))
	is.True(!b.IsRepetition())
	is.NoErr(b.ApplyUCI("f6g8"))
	is.True(b.IsRepetition())
}

func TestEnPassantSquareBreaksRepetition(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	// The position after e7e5 carries an en passant square; the same
	// placement four plies later does not.
	is.NoErr(b.ApplyUCISequence([]string{"e2e4", "e7e5", "g1f3", "g8f6", "f3g1", "f6g8"}))
	is.True(!b.IsRepetition())
	is.NoErr(b.ApplyUCISequence([]string{"g1f3", "g8f6", "f3g1", "f6g8"}))
	is.True(b.IsRepetition())
}

func TestRepetitionNeedsHistory(t *testing.T) {
	is := is.New(t)
	// A large clock from the FEN alone is not a repetition.
	b, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w - - 40 60", nil)
	is.NoErr(err)
	is.True(!b.IsRepetition())
	is.NoErr(b.ApplyUCISequence([]string{"h1h2", "e8d8", "h2h1"}))
	is.True(!b.IsRepetition())
	is.NoErr(b.ApplyUCI("d8e8"))
	is.True(b.IsRepetition())
}

func TestFiftyMoveRule(t *testing.T) {
	is := is.New(t)
	b, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w - - 99 80", nil)
	is.NoErr(err)
	is.True(!b.IsFiftyMoveDraw())
	is.NoErr(b.ApplyUCI("h1h2"))
	is.True(b.IsFiftyMoveDraw())
	is.Equal(b.Status(), FiftyMoveDraw)

	b, err = ParseFEN("4k3/8/8/8/8/8/4P3/4K2R w - - 99 80", nil)
	is.NoErr(err)
	is.NoErr(b.ApplyUCI("e2e3"))
	is.Equal(b.HalfmoveClock(), 0)
	is.True(!b.IsFiftyMoveDraw())
}

func TestInsufficientMaterial(t *testing.T) {
	is := is.New(t)
	tests := []struct {
		fen  string
		want bool
	}{
		{"8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/4KN2 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/4KB2 w - - 0 1", true},
		{"8/8/8/4kb2/8/8/8/4K3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/4KR2 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false},
		{"8/8/8/4kn2/8/8/8/4KB2 w - - 0 1", false},
	}
	for _, tc := range tests {
		b, err := ParseFEN(tc.fen, nil)
		is.NoErr(err)
		is.Equal(b.IsInsufficientMaterial(), tc.want)
	}
}

func TestFiftyMoveRuleAfterLongShuffle(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	seq := "d2d4 d7d5 f2f4 f7f5 e2e3 e7e6 g2g3 g7g6 h2h4 h7h5 c2c3 c7c6 b2b4 b7b5 a2a3 a7a6 " +
		"b1d2 g8e7 f1g2 c8b7 e1f2 e8f7 d1e2 f8g7 h1h3 a8a7 c1b2 b8d7 a1c1 b7c8 c1b1 d7f8 g1f3 f8h7 " +
		"d2f1 e7g8 f1d2 g8e7 d2f1 e7g8 f1h2 g8h6 f3g5 f7f8 e2c2 f8e7 b1d1 c8b7 f2e2 g7f8 g2f3 h7f6 " +
		"c2c1 d8c8 c1a1 c8a8 d1g1 b7c8 h2f1 h8h7 h3h2 h7h8 f1d2 f8g7 d2f1 c8d7 a1c1 a8b7 b2a1 a7a8 " +
		"f1d2 h8c8 g1g2 c8f8 h2h1 f8g8 g2g1 g8h8 g5h3 h6g8 d2f1 g8h6 f1h2 f6g4 h2f1 g4f6 f1d2 g7f8 " +
		"g1e1 b7c7 h1g1 f8g7 f3h1 h8b8 e1f1 d7e8 d2b3 e8d7 b3c5 f6e4 h3g5 h6g4 c5b3 e4f6 g5h3 g4h6 " +
		"h1f3 f6g8 g1h1 g7f6 f1f2 e7d8 e2f1 d8c8 f1g2 c8b7"
	moves := strings.Fields(seq)
	is.NoErr(b.ApplyUCISequence(moves[:len(moves)-1]))
	is.Equal(b.HalfmoveClock(), 99)
	is.True(!b.IsFiftyMoveDraw())

	is.NoErr(b.ApplyUCI(moves[len(moves)-1]))
	is.Equal(b.HalfmoveClock(), 100)
	is.True(b.IsFiftyMoveDraw())
	is.True(b.Status().IsDraw())
}
