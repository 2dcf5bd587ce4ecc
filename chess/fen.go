package chess

import (
	"strconv"
	"strings"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a new Board hashed with keys. A nil keys
// selects StandardKeys. The halfmove clock and fullmove number are optional
// and default to 0 and 1.
func ParseFEN(fen string, keys *Keys) (*Board, error) {
	if keys == nil {
		keys = StandardKeys()
	}
	fail := func(reason string) (*Board, error) {
		return nil, &ParseError{Input: fen, Reason: reason}
	}

	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return fail("expected 4 to 6 fields")
	}

	b := &Board{keys: keys, enPassant: NoSquare, fullmove: 1}

	// 1. Piece placement
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fail("incorrect number of ranks")
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p := pieceFromChar(ch)
			if p == NoPiece {
				return fail("unrecognized piece character " + strconv.QuoteRune(rune(ch)))
			}
			if file >= 8 {
				return fail("too many squares in rank " + strconv.Itoa(rank+1))
			}
			b.addPiece(NewSquare(file, rank), p)
			file++
		}
		if file != 8 {
			return fail("rank " + strconv.Itoa(rank+1) + " does not have 8 columns")
		}
	}
	if PopCount(b.Pieces(White, King)) != 1 || PopCount(b.Pieces(Black, King)) != 1 {
		return fail("each side needs exactly one king")
	}

	// 2. Side to move
	switch fields[1] {
	case "w":
		b.sideToMove = White
	case "b":
		b.sideToMove = Black
	default:
		return fail("side to move must be 'w' or 'b'")
	}

	// 3. Castling rights
	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			switch fields[2][j] {
			case 'K':
				b.castling |= CastlingWhiteK
			case 'Q':
				b.castling |= CastlingWhiteQ
			case 'k':
				b.castling |= CastlingBlackK
			case 'q':
				b.castling |= CastlingBlackQ
			default:
				return fail("invalid castling rights character")
			}
		}
	}

	for _, h := range castlingHomes {
		if b.castling&h.right != 0 && !b.hasCastlingPieces(h.right) {
			return fail("castling right " + h.right.String() + " without king and rook on their home squares")
		}
	}

	// 4. En passant target square
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil || !b.plausibleEnPassant(sq) {
			return fail("invalid en passant square")
		}
		b.enPassant = sq
	}

	if (Rank1|Rank8)&b.types[Pawn] != 0 {
		return fail("pawn on the first or last rank")
	}
	if b.AttackersOf(b.KingSquare(b.sideToMove.Other()), b.sideToMove) != 0 {
		return fail("side not to move is in check")
	}

	// 5. Halfmove clock
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return fail("halfmove clock is not a non-negative number")
		}
		b.halfmove = n
	}

	// 6. Fullmove number
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 0 {
			return fail("fullmove number is not a non-negative number")
		}
		b.fullmove = n
	}

	b.hash = keys.Hash(b)
	return b, nil
}

var castlingHomes = [...]struct {
	right      CastlingRights
	king, rook Square
	color      Color
}{
	{CastlingWhiteK, E1, H1, White},
	{CastlingWhiteQ, E1, A1, White},
	{CastlingBlackK, E8, H8, Black},
	{CastlingBlackQ, E8, A8, Black},
}

// hasCastlingPieces reports whether the king and rook of a single castling
// right stand on their original squares.
func (b *Board) hasCastlingPieces(right CastlingRights) bool {
	for _, h := range castlingHomes {
		if h.right == right {
			return b.pieces[h.king] == NewPiece(h.color, King) &&
				b.pieces[h.rook] == NewPiece(h.color, Rook)
		}
	}
	return false
}

// plausibleEnPassant reports whether sq could be the target of the opponent's
// last double push: the pawn stands in front of it and the squares it
// crossed are empty.
func (b *Board) plausibleEnPassant(sq Square) bool {
	pawnSq, origin := sq-8, sq+8
	if b.sideToMove == Black {
		if sq.Rank() != 2 {
			return false
		}
		pawnSq, origin = sq+8, sq-8
	} else if sq.Rank() != 5 {
		return false
	}
	return b.pieces[pawnSq] == NewPiece(b.sideToMove.Other(), Pawn) &&
		b.pieces[sq] == NoPiece && b.pieces[origin] == NoPiece
}

// FEN produces the FEN string of the current position.
func (b *Board) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.pieces[NewSquare(file, rank)]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if b.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(b.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(b.enPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmove))
	return sb.String()
}
