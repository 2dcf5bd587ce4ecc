package chess

import "math/bits"

// Ray directions. The first four are orthogonal, the last four diagonal.
// Even/odd pairs point in opposite directions.
const (
	dirN = iota
	dirS
	dirE
	dirW
	dirNE
	dirSW
	dirNW
	dirSE
)

var dirDelta = [8][2]int{
	dirN:  {1, 0},
	dirS:  {-1, 0},
	dirE:  {0, 1},
	dirW:  {0, -1},
	dirNE: {1, 1},
	dirSW: {-1, -1},
	dirNW: {1, -1},
	dirSE: {-1, 1},
}

// increasing reports whether squares along the direction have growing indices.
var increasing = [8]bool{dirN: true, dirE: true, dirNE: true, dirNW: true}

var (
	knightAttacks [64]uint64
	kingAttacks   [64]uint64
	pawnAttacks   [2][64]uint64

	// rays[sq][d] holds the squares from sq towards d, excluding sq.
	rays [64][8]uint64

	between     [64][64]uint64
	lineThrough [64][64]uint64
)

func init() {
	initLeaperTables()
	initRays()
	initLines()
}

func initLeaperTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		for _, off := range knightOffsets {
			if r, f := rank+off[0], file+off[1]; onBoard(r, f) {
				knightAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		for _, off := range kingOffsets {
			if r, f := rank+off[0], file+off[1]; onBoard(r, f) {
				kingAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		for _, df := range [2]int{-1, 1} {
			if r, f := rank+1, file+df; onBoard(r, f) {
				pawnAttacks[White][sq] |= 1 << uint(r*8+f)
			}
			if r, f := rank-1, file+df; onBoard(r, f) {
				pawnAttacks[Black][sq] |= 1 << uint(r*8+f)
			}
		}
	}
}

func initRays() {
	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		for d, delta := range dirDelta {
			var ray uint64
			for r, f := rank+delta[0], file+delta[1]; onBoard(r, f); r, f = r+delta[0], f+delta[1] {
				ray |= 1 << uint(r*8+f)
			}
			rays[sq][d] = ray
		}
	}
}

func initLines() {
	for a := 0; a < 64; a++ {
		for d := 0; d < 8; d++ {
			ray := rays[a][d]
			for r := ray; r != 0; {
				b := popLSB(&r)
				between[a][b] = ray &^ rays[b][d] &^ bb(b)
				lineThrough[a][b] = ray | rays[a][d^1] | bb(Square(a))
			}
		}
	}
}

func onBoard(rank, file int) bool { return rank >= 0 && rank < 8 && file >= 0 && file < 8 }

// slide returns the attacks along one ray, stopping at and including the first blocker.
func slide(sq Square, d int, occ uint64) uint64 {
	ray := rays[sq][d]
	blockers := ray & occ
	if blockers == 0 {
		return ray
	}
	var first int
	if increasing[d] {
		first = bits.TrailingZeros64(blockers)
	} else {
		first = 63 - bits.LeadingZeros64(blockers)
	}
	return ray &^ rays[first][d]
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) uint64 { return pawnAttacks[c][sq] }

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) uint64 { return knightAttacks[sq] }

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) uint64 { return kingAttacks[sq] }

// RookAttacks returns orthogonal slider attacks from sq given occupancy occ.
func RookAttacks(sq Square, occ uint64) uint64 {
	return slide(sq, dirN, occ) | slide(sq, dirS, occ) | slide(sq, dirE, occ) | slide(sq, dirW, occ)
}

// BishopAttacks returns diagonal slider attacks from sq given occupancy occ.
func BishopAttacks(sq Square, occ uint64) uint64 {
	return slide(sq, dirNE, occ) | slide(sq, dirSW, occ) | slide(sq, dirNW, occ) | slide(sq, dirSE, occ)
}

// QueenAttacks is the union of rook and bishop attacks.
func QueenAttacks(sq Square, occ uint64) uint64 {
	return RookAttacks(sq, occ) | BishopAttacks(sq, occ)
}

// XrayRookAttacks returns the rook attacks from sq after removing the first
// blockers that belong to blockers.
func XrayRookAttacks(sq Square, occ, blockers uint64) uint64 {
	attacks := RookAttacks(sq, occ)
	blockers &= attacks
	return attacks ^ RookAttacks(sq, occ^blockers)
}

// XrayBishopAttacks is the diagonal counterpart of XrayRookAttacks.
func XrayBishopAttacks(sq Square, occ, blockers uint64) uint64 {
	attacks := BishopAttacks(sq, occ)
	blockers &= attacks
	return attacks ^ BishopAttacks(sq, occ^blockers)
}

// Between returns the squares strictly between a and b when they share a
// rank, file or diagonal, and zero otherwise.
func Between(a, b Square) uint64 { return between[a][b] }

// LineThrough returns the full edge-to-edge line through a and b when they
// are aligned, and zero otherwise.
func LineThrough(a, b Square) uint64 { return lineThrough[a][b] }
