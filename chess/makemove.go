package chess

import "fmt"

// castleMask[sq] holds the rights lost when a piece leaves or lands on sq.
var castleMask [64]CastlingRights

// castleRook maps the king's castling destination to the rook's origin and destination.
var castleRook = map[Square][2]Square{
	G1: {H1, F1},
	C1: {A1, D1},
	G8: {H8, F8},
	C8: {A8, D8},
}

func init() {
	castleMask[A1] = CastlingWhiteQ
	castleMask[E1] = CastlingWhiteK | CastlingWhiteQ
	castleMask[H1] = CastlingWhiteK
	castleMask[A8] = CastlingBlackQ
	castleMask[E8] = CastlingBlackK | CastlingBlackQ
	castleMask[H8] = CastlingBlackK
}

// ApplyMove plays m without checking legality. m must come from LegalMoves
// for the current position. The previous hash is appended to the history.
func (b *Board) ApplyMove(m Move) {
	b.history = append(b.history, b.hash)

	stm := b.sideToMove
	from, to := m.From(), m.To()
	flag := m.Flag()
	captured := PieceTypeNone

	switch flag {
	case FlagCastling:
		b.movePiece(from, to)
		if r, ok := castleRook[to]; ok && b.pieces[r[0]] == NewPiece(stm, Rook) {
			b.movePiece(r[0], r[1])
		}
	case FlagEnPassant:
		victim := to - 8
		if stm == Black {
			victim = to + 8
		}
		b.removePiece(victim)
		b.movePiece(from, to)
		captured = Pawn
	default:
		captured = b.removePiece(to).Type()
		moved := b.removePiece(from)
		if promo := m.Promotion(); promo != PieceTypeNone {
			moved = NewPiece(stm, promo)
		}
		b.addPiece(to, moved)
	}

	if rights := b.castling &^ (castleMask[from] | castleMask[to]); rights != b.castling {
		b.hash ^= b.keys.castling[b.castling] ^ b.keys.castling[rights]
		b.castling = rights
	}

	if b.enPassant != NoSquare {
		b.hash ^= b.keys.enPassant[b.enPassant.File()]
		b.enPassant = NoSquare
	}
	if flag == FlagPawnDoublePush {
		b.enPassant = (from + to) / 2
		b.hash ^= b.keys.enPassant[b.enPassant.File()]
	}

	if m.PieceType() == Pawn || captured != PieceTypeNone {
		b.halfmove = 0
	} else {
		b.halfmove++
	}
	if stm == Black {
		b.fullmove++
	}

	b.sideToMove = stm.Other()
	b.hash ^= b.keys.side
	b.lastMove = m
	b.captured = captured
}

// ApplyUCI plays a move given in coordinate notation after checking it is
// legal. On failure the board is left unchanged.
func (b *Board) ApplyUCI(s string) error {
	m, err := b.MoveFromUCI(s)
	if err != nil {
		return err
	}
	var buf [256]Move
	for _, legal := range b.LegalMovesInto(buf[:0], true) {
		if legal == m {
			b.ApplyMove(m)
			return nil
		}
	}
	return fmt.Errorf("%s in %s: %w", s, b.FEN(), ErrIllegalMove)
}

// ApplyUCISequence plays moves in order and stops at the first failure,
// leaving the board after the last successful move.
func (b *Board) ApplyUCISequence(moves []string) error {
	for i, s := range moves {
		if err := b.ApplyUCI(s); err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return nil
}
