package chess

// Status classifies a position for display and for callers that need more
// than a legal move list.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	FiftyMoveDraw
	RepetitionDraw
	InsufficientMaterial
)

var statusNames = [...]string{"ongoing", "checkmate", "stalemate", "fifty-move draw", "repetition draw", "insufficient material"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsDraw reports whether the status ends the game without a winner.
func (s Status) IsDraw() bool { return s >= Stalemate }

// IsFiftyMoveDraw reports a draw by the fifty-move rule.
func (b *Board) IsFiftyMoveDraw() bool { return b.halfmove >= 100 }

// IsRepetition reports whether the current position occurred before with the
// same side to move, looking back no further than the last irreversible move.
// A single earlier occurrence is enough.
func (b *Board) IsRepetition() bool {
	n := len(b.history)
	if n < 4 || b.halfmove < 4 {
		return false
	}
	stop := max(0, n-b.halfmove)
	for i := n - 2; i >= stop; i -= 2 {
		if b.history[i] == b.hash {
			return true
		}
	}
	return false
}

// IsInsufficientMaterial reports bare kings or king and one minor piece against king.
func (b *Board) IsInsufficientMaterial() bool {
	switch PopCount(b.Occupancy()) {
	case 2:
		return true
	case 3:
		return b.types[Knight]|b.types[Bishop] != 0
	}
	return false
}

// Status classifies the current position. Checkmate and stalemate take
// precedence over the draw rules.
func (b *Board) Status() Status {
	if !b.HasLegalMoves() {
		if b.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	switch {
	case b.IsInsufficientMaterial():
		return InsufficientMaterial
	case b.IsRepetition():
		return RepetitionDraw
	case b.IsFiftyMoveDraw():
		return FiftyMoveDraw
	}
	return Ongoing
}
