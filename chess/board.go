package chess

import (
	"fmt"
	"strings"
)

// Board is a chess position with incremental Zobrist hashing and the hash
// history needed for repetition detection.
type Board struct {
	keys *Keys

	colors [2]uint64
	types  [7]uint64 // indexed by PieceType; types[PieceTypeNone] is unused
	pieces [64]Piece

	sideToMove Color
	castling   CastlingRights
	enPassant  Square
	halfmove   int
	fullmove   int

	hash    uint64
	history []uint64 // hashes of earlier positions, oldest first

	lastMove Move
	captured PieceType
}

// NewBoard returns the standard starting position using StandardKeys.
func NewBoard() *Board {
	b, err := ParseFEN(FENStartPos, nil)
	if err != nil {
		panic(err)
	}
	return b
}

// Clone returns a deep copy with its own history.
func (b *Board) Clone() *Board {
	c := *b
	c.history = make([]uint64, len(b.history), cap(b.history))
	copy(c.history, b.history)
	return &c
}

// CopyFrom overwrites b with src, reusing b's history buffer.
func (b *Board) CopyFrom(src *Board) {
	hist := append(b.history[:0], src.history...)
	*b = *src
	b.history = hist
}

// RewindTo resets b to root, where b is known to descend from root by
// ApplyMove calls. Only the history tail beyond root's length is dropped.
func (b *Board) RewindTo(root *Board) {
	hist := b.history[:len(root.history)]
	*b = *root
	b.history = hist
}

func (b *Board) Keys() *Keys              { return b.keys }
func (b *Board) SideToMove() Color        { return b.sideToMove }
func (b *Board) Castling() CastlingRights { return b.castling }
func (b *Board) EnPassant() Square        { return b.enPassant }
func (b *Board) HalfmoveClock() int       { return b.halfmove }
func (b *Board) FullmoveNumber() int      { return b.fullmove }
func (b *Board) Hash() uint64             { return b.hash }
func (b *Board) LastMove() Move           { return b.lastMove }

// Captured returns the piece type taken by the last move, if any.
func (b *Board) Captured() PieceType { return b.captured }

// History returns the hashes of the positions before the current one.
// The slice must not be modified.
func (b *Board) History() []uint64 { return b.history }

// ComputeHash recomputes the hash from scratch.
func (b *Board) ComputeHash() uint64 { return b.keys.Hash(b) }

// Occupancy returns every occupied square.
func (b *Board) Occupancy() uint64 { return b.colors[White] | b.colors[Black] }

// ColorOccupancy returns the squares occupied by c.
func (b *Board) ColorOccupancy(c Color) uint64 { return b.colors[c] }

// PieceTypeBitboard returns the squares holding pt of either color.
func (b *Board) PieceTypeBitboard(pt PieceType) uint64 { return b.types[pt] }

// Pieces returns the squares holding pt of color c.
func (b *Board) Pieces(c Color, pt PieceType) uint64 { return b.colors[c] & b.types[pt] }

// PieceAt returns the piece on sq.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[sq] }

// PieceTypeAt returns the colorless type of the piece on sq.
func (b *Board) PieceTypeAt(sq Square) PieceType { return b.pieces[sq].Type() }

// KingSquare returns the square of c's king.
func (b *Board) KingSquare(c Color) Square { return lsb(b.Pieces(c, King)) }

func (b *Board) us() uint64   { return b.colors[b.sideToMove] }
func (b *Board) them() uint64 { return b.colors[b.sideToMove.Other()] }

// addPiece places p on an empty square and updates bitboards and hash.
func (b *Board) addPiece(sq Square, p Piece) {
	bit := bb(sq)
	b.pieces[sq] = p
	b.colors[p.Color()] |= bit
	b.types[p.Type()] |= bit
	b.hash ^= b.keys.piece[p][sq]
}

// removePiece clears sq and returns what was there.
func (b *Board) removePiece(sq Square) Piece {
	p := b.pieces[sq]
	if p == NoPiece {
		return NoPiece
	}
	mask := ^bb(sq)
	b.pieces[sq] = NoPiece
	b.colors[p.Color()] &= mask
	b.types[p.Type()] &= mask
	b.hash ^= b.keys.piece[p][sq]
	return p
}

// movePiece relocates the piece on from to the empty square to.
func (b *Board) movePiece(from, to Square) {
	b.addPiece(to, b.removePiece(from))
}

// Validate checks that the mailbox, bitboards and hash agree.
func (b *Board) Validate() error {
	var colors [2]uint64
	var types [7]uint64
	for sq, p := range b.pieces {
		if p == NoPiece {
			continue
		}
		bit := uint64(1) << uint(sq)
		colors[p.Color()] |= bit
		types[p.Type()] |= bit
	}
	switch {
	case colors != b.colors:
		return fmt.Errorf("color bitboards disagree with mailbox")
	case types != b.types:
		return fmt.Errorf("piece bitboards disagree with mailbox")
	case b.colors[White]&b.colors[Black] != 0:
		return fmt.Errorf("color bitboards overlap")
	case b.hash != b.ComputeHash():
		return fmt.Errorf("hash %016x, recomputed %016x", b.hash, b.ComputeHash())
	}
	return nil
}

// String draws the board from White's side, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(" +---+---+---+---+---+---+---+---+\n")
		for file := 0; file < 8; file++ {
			sb.WriteString(" | ")
			sb.WriteByte(b.pieces[NewSquare(file, rank)].Char())
		}
		fmt.Fprintf(&sb, " | %d\n", rank+1)
	}
	sb.WriteString(" +---+---+---+---+---+---+---+---+\n")
	sb.WriteString("   a   b   c   d   e   f   g   h\n")
	return sb.String()
}
