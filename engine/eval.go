package engine

import (
	"math"

	"mcts-chess/chess"
)

// PieceValues in centipawns, indexed by chess.PieceType. Kings are not counted.
var PieceValues = [7]int{
	chess.Pawn:   100,
	chess.Knight: 300,
	chess.Bishop: 315,
	chess.Rook:   500,
	chess.Queen:  900,
}

// Material returns the material balance from the side to move's point of view.
func Material(b *chess.Board) int {
	us, them := b.SideToMove(), b.SideToMove().Other()
	eval := 0
	for pt := chess.Pawn; pt <= chess.Queen; pt++ {
		diff := chess.PopCount(b.Pieces(us, pt)) - chess.PopCount(b.Pieces(them, pt))
		eval += PieceValues[pt] * diff
	}
	return eval
}

// EvalToResult maps a centipawn evaluation to (-1, 1) with a logistic curve.
func EvalToResult(eval, scale float64) float64 {
	return 2/(1+math.Exp(-eval/scale)) - 1
}

// winScore bounds reported scores for near-certain results.
const winScore = 30000

// ResultToCentipawns inverts EvalToResult for a mean result in [-1, 1].
func ResultToCentipawns(mean, scale float64) int {
	p := (mean + 1) / 2
	if p >= 0.99 {
		return winScore
	}
	if p <= 0.01 {
		return -winScore
	}
	cp := -scale * math.Log((1-p)/p)
	return Clamp(int(math.Round(cp)), -winScore, winScore)
}
