package chess

import (
	"encoding/binary"
	"sync"

	"lukechampine.com/frand"
)

// DefaultZobristSeed seeds the process-wide keys returned by StandardKeys.
const DefaultZobristSeed uint64 = 0xC0DE

// bignum keeps keys away from zero and the top of the range.
const bignum = 1<<63 - 2

// Keys holds the Zobrist tables. A Keys value is immutable once built and may
// be shared by any number of boards and goroutines.
type Keys struct {
	piece     [15][64]uint64 // indexed by Piece code
	castling  [16]uint64     // indexed by the CastlingRights value
	enPassant [8]uint64      // indexed by file
	side      uint64         // black to move
}

// NewKeys builds a key set from a deterministic ChaCha stream seeded by seed.
func NewKeys(seed uint64) *Keys {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	rng := frand.NewCustom(s[:], 1024, 12)

	k := &Keys{}
	for p := range k.piece {
		if Piece(p).Type() == PieceTypeNone || Piece(p).Type() > King {
			continue
		}
		for sq := range k.piece[p] {
			k.piece[p][sq] = rng.Uint64n(bignum) + 1
		}
	}
	// castling[CastlingNone] stays zero.
	for cr := 1; cr < len(k.castling); cr++ {
		k.castling[cr] = rng.Uint64n(bignum) + 1
	}
	for f := range k.enPassant {
		k.enPassant[f] = rng.Uint64n(bignum) + 1
	}
	k.side = rng.Uint64n(bignum) + 1
	return k
}

var (
	standardOnce sync.Once
	standardKeys *Keys
)

// StandardKeys returns the shared key set built from DefaultZobristSeed.
func StandardKeys() *Keys {
	standardOnce.Do(func() {
		standardKeys = NewKeys(DefaultZobristSeed)
	})
	return standardKeys
}

// Hash computes the Zobrist hash of b from scratch using the keys.
func (k *Keys) Hash(b *Board) uint64 {
	var key uint64
	for sq, p := range b.pieces {
		if p != NoPiece {
			key ^= k.piece[p][sq]
		}
	}
	if b.sideToMove == Black {
		key ^= k.side
	}
	key ^= k.castling[b.castling]
	if b.enPassant != NoSquare {
		key ^= k.enPassant[b.enPassant.File()]
	}
	return key
}
