package chess

import "math/bits"

const (
	FileA uint64 = 0x0101010101010101
	FileH uint64 = FileA << 7
	Rank1 uint64 = 0xFF
	Rank2 uint64 = Rank1 << 8
	Rank7 uint64 = Rank1 << 48
	Rank8 uint64 = Rank1 << 56
)

// bb returns a bitboard with the given square bit set.
func bb(sq Square) uint64 { return 1 << uint(sq) }

// lsb returns the lowest set square of a non-empty mask.
func lsb(mask uint64) Square { return Square(bits.TrailingZeros64(mask)) }

// popLSB removes and returns the least significant set bit from the mask.
func popLSB(mask *uint64) Square {
	sq := Square(bits.TrailingZeros64(*mask))
	*mask &= *mask - 1
	return sq
}

// PopCount returns the number of set bits.
func PopCount(mask uint64) int { return bits.OnesCount64(mask) }

// SquaresOf lists the set squares of mask in ascending order.
func SquaresOf(mask uint64) []Square {
	out := make([]Square, 0, bits.OnesCount64(mask))
	for mask != 0 {
		out = append(out, popLSB(&mask))
	}
	return out
}
