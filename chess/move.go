package chess

import "fmt"

// Move packs origin (bits 0-5), destination (bits 6-11) and a flag (bits 12-15).
type Move uint16

// MoveFlag says how a move is applied. FlagPawn through FlagKing are plain
// moves or captures by that piece type and share its numeric value.
type MoveFlag uint8

const (
	FlagNull MoveFlag = iota
	FlagPawn
	FlagKnight
	FlagBishop
	FlagRook
	FlagQueen
	FlagKing
	FlagCastling
	FlagEnPassant
	FlagPawnDoublePush
	FlagKnightPromotion
	FlagBishopPromotion
	FlagRookPromotion
	FlagQueenPromotion
)

// NullMove is the all-zero move, printed as "0000".
const NullMove Move = 0

// NewMove packs a move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(uint16(from)&0x3F | (uint16(to)&0x3F)<<6 | uint16(flag)<<12)
}

func (m Move) From() Square   { return Square(m & 0x3F) }
func (m Move) To() Square     { return Square((m >> 6) & 0x3F) }
func (m Move) Flag() MoveFlag { return MoveFlag(m >> 12) }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m.Flag() >= FlagKnightPromotion }

// PieceType returns the type of the moving piece.
func (m Move) PieceType() PieceType {
	switch f := m.Flag(); {
	case f == FlagNull:
		return PieceTypeNone
	case f <= FlagKing:
		return PieceType(f)
	case f == FlagCastling:
		return King
	default:
		return Pawn
	}
}

// Promotion returns the promoted-to piece type, or PieceTypeNone.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return PieceTypeNone
	}
	return PieceType(m.Flag() - FlagKnightPromotion + FlagKnight)
}

func promotionFlag(pt PieceType) MoveFlag {
	return MoveFlag(pt) - FlagKnight + FlagKnightPromotion
}

// String renders coordinate notation such as "e2e4" or "b7c8q".
func (m Move) String() string {
	if m == NullMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if pt := m.Promotion(); pt != PieceTypeNone {
		s += string(" pnbrqk"[pt])
	}
	return s
}

// MoveFromUCI decodes coordinate notation against the current position,
// deriving the castling, double push, en passant and promotion flags from the
// board. It does not check legality; see ApplyUCI.
func (b *Board) MoveFromUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NullMove, &ParseError{Input: s, Reason: "move must be 4 or 5 characters"}
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, &ParseError{Input: s, Reason: "invalid origin square"}
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, &ParseError{Input: s, Reason: "invalid destination square"}
	}
	pt := b.PieceTypeAt(from)
	if pt == PieceTypeNone {
		return NullMove, fmt.Errorf("%s: no piece on %s: %w", s, from, ErrIllegalMove)
	}
	flag := MoveFlag(pt)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NullMove, &ParseError{Input: s, Reason: "invalid promotion piece"}
		}
		if pt != Pawn {
			return NullMove, fmt.Errorf("%s: only pawns promote: %w", s, ErrIllegalMove)
		}
		return NewMove(from, to, promotionFlag(promo)), nil
	}

	switch pt {
	case King:
		if d := int(to) - int(from); d == 2 || d == -2 {
			flag = FlagCastling
		}
	case Pawn:
		d := int(to) - int(from)
		if d < 0 {
			d = -d
		}
		if d == 16 {
			flag = FlagPawnDoublePush
		} else if d != 8 && b.pieces[to] == NoPiece {
			flag = FlagEnPassant
		}
	}
	return NewMove(from, to, flag), nil
}
