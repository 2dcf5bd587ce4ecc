package chess

import "math/bits"

const allSquares = ^uint64(0)

// AttackersOf returns the pieces of color by that attack sq under the current occupancy.
func (b *Board) AttackersOf(sq Square, by Color) uint64 {
	return b.attackersWithOcc(sq, by, b.Occupancy())
}

func (b *Board) attackersWithOcc(sq Square, by Color, occ uint64) uint64 {
	their := b.colors[by]
	diag := b.types[Bishop] | b.types[Queen]
	orth := b.types[Rook] | b.types[Queen]
	return their & (pawnAttacks[by.Other()][sq]&b.types[Pawn] |
		knightAttacks[sq]&b.types[Knight] |
		kingAttacks[sq]&b.types[King] |
		BishopAttacks(sq, occ)&diag |
		RookAttacks(sq, occ)&orth)
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	return b.AttackersOf(sq, by) != 0
}

// Attacks returns every square attacked by color c when the board holds occupancy occ.
func (b *Board) Attacks(c Color, occ uint64) uint64 {
	var att uint64
	own := b.colors[c]

	pawns := own & b.types[Pawn]
	if c == White {
		att |= (pawns &^ FileA) << 7
		att |= (pawns &^ FileH) << 9
	} else {
		att |= (pawns &^ FileH) >> 7
		att |= (pawns &^ FileA) >> 9
	}

	for m := own & b.types[Knight]; m != 0; {
		att |= knightAttacks[popLSB(&m)]
	}
	for m := own & (b.types[Bishop] | b.types[Queen]); m != 0; {
		att |= BishopAttacks(popLSB(&m), occ)
	}
	for m := own & (b.types[Rook] | b.types[Queen]); m != 0; {
		att |= RookAttacks(popLSB(&m), occ)
	}
	for m := own & b.types[King]; m != 0; {
		att |= kingAttacks[popLSB(&m)]
	}
	return att
}

// Checkers returns the enemy pieces giving check to the side to move.
func (b *Board) Checkers() uint64 {
	return b.AttackersOf(b.KingSquare(b.sideToMove), b.sideToMove.Other())
}

// InCheck reports whether the side to move is in check.
func (b *Board) InCheck() bool { return b.Checkers() != 0 }

// PinnedPieces returns the pieces of the side to move pinned to their king,
// split by the orientation of the pin.
func (b *Board) PinnedPieces() (nonDiagonal, diagonal uint64) {
	ksq := b.KingSquare(b.sideToMove)
	occ := b.Occupancy()
	us, them := b.us(), b.them()

	pinners := them & (b.types[Rook] | b.types[Queen]) & XrayRookAttacks(ksq, occ, us)
	for pinners != 0 {
		nonDiagonal |= between[popLSB(&pinners)][ksq] & us
	}
	pinners = them & (b.types[Bishop] | b.types[Queen]) & XrayBishopAttacks(ksq, occ, us)
	for pinners != 0 {
		diagonal |= between[popLSB(&pinners)][ksq] & us
	}
	return nonDiagonal, diagonal
}

// LegalMoves returns every legal move. With underpromotions false, pawns
// only promote to queens.
func (b *Board) LegalMoves(underpromotions bool) []Move {
	return b.LegalMovesInto(make([]Move, 0, 64), underpromotions)
}

// HasLegalMoves reports whether the side to move has any legal move.
func (b *Board) HasLegalMoves() bool {
	var buf [256]Move
	return len(b.LegalMovesInto(buf[:0], false)) > 0
}

// LegalMovesInto appends the legal moves to dst and returns it. Moves are
// produced directly as legal, never generated and then filtered by making them.
func (b *Board) LegalMovesInto(dst []Move, underpromotions bool) []Move {
	stm := b.sideToMove
	enemy := stm.Other()
	us, them := b.us(), b.them()
	occ := us | them
	ksq := b.KingSquare(stm)

	// Sliders must see through our king so it cannot step along the check ray.
	theirAttacks := b.Attacks(enemy, occ^bb(ksq))

	for t := kingAttacks[ksq] &^ us &^ theirAttacks; t != 0; {
		dst = append(dst, NewMove(ksq, popLSB(&t), FlagKing))
	}

	checkers := b.attackersWithOcc(ksq, enemy, occ)
	numCheckers := bits.OnesCount64(checkers)
	if numCheckers > 1 {
		return dst
	}

	movable := allSquares
	if numCheckers == 1 {
		movable = checkers
		if checkers&(b.types[Bishop]|b.types[Rook]|b.types[Queen]) != 0 {
			movable |= between[ksq][lsb(checkers)]
		}
	} else {
		dst = b.appendCastling(dst, ksq, occ, theirAttacks)
	}

	pinnedOrth, pinnedDiag := b.PinnedPieces()
	pinned := pinnedOrth | pinnedDiag

	pawns := us & b.types[Pawn]
	knights := us & b.types[Knight] &^ pinned
	bishops := us & b.types[Bishop] &^ pinnedOrth
	rooks := us & b.types[Rook] &^ pinnedDiag
	queens := us & b.types[Queen]

	if b.enPassant != NoSquare {
		dst = b.appendEnPassant(dst, pawns)
	}

	var push int
	var startRank, promoRank int
	if stm == White {
		push, startRank, promoRank = 8, 1, 6
	} else {
		push, startRank, promoRank = -8, 6, 1
	}

	for m := pawns; m != 0; {
		sq := popLSB(&m)
		bit := bb(sq)
		promotes := sq.Rank() == promoRank

		caps := pawnAttacks[stm][sq] & them & movable
		if bit&pinned != 0 {
			caps &= lineThrough[ksq][sq]
		}
		for caps != 0 {
			to := popLSB(&caps)
			if promotes {
				dst = appendPromotions(dst, sq, to, underpromotions)
			} else {
				dst = append(dst, NewMove(sq, to, FlagPawn))
			}
		}

		// Diagonal pins and rank pins forbid any push.
		if bit&pinnedDiag != 0 || (bit&pinnedOrth != 0 && ksq.Rank() == sq.Rank()) {
			continue
		}
		one := Square(int(sq) + push)
		if b.pieces[one] != NoPiece {
			continue
		}
		if movable&bb(one) != 0 {
			if promotes {
				dst = appendPromotions(dst, sq, one, underpromotions)
				continue
			}
			dst = append(dst, NewMove(sq, one, FlagPawn))
		}
		if sq.Rank() != startRank {
			continue
		}
		two := Square(int(one) + push)
		if movable&bb(two) != 0 && b.pieces[two] == NoPiece {
			dst = append(dst, NewMove(sq, two, FlagPawnDoublePush))
		}
	}

	for m := knights; m != 0; {
		sq := popLSB(&m)
		for t := knightAttacks[sq] &^ us & movable; t != 0; {
			dst = append(dst, NewMove(sq, popLSB(&t), FlagKnight))
		}
	}
	for m := bishops; m != 0; {
		sq := popLSB(&m)
		t := BishopAttacks(sq, occ) &^ us & movable
		if bb(sq)&pinnedDiag != 0 {
			t &= lineThrough[ksq][sq]
		}
		for t != 0 {
			dst = append(dst, NewMove(sq, popLSB(&t), FlagBishop))
		}
	}
	for m := rooks; m != 0; {
		sq := popLSB(&m)
		t := RookAttacks(sq, occ) &^ us & movable
		if bb(sq)&pinnedOrth != 0 {
			t &= lineThrough[ksq][sq]
		}
		for t != 0 {
			dst = append(dst, NewMove(sq, popLSB(&t), FlagRook))
		}
	}
	for m := queens; m != 0; {
		sq := popLSB(&m)
		t := QueenAttacks(sq, occ) &^ us & movable
		if bb(sq)&pinned != 0 {
			t &= lineThrough[ksq][sq]
		}
		for t != 0 {
			dst = append(dst, NewMove(sq, popLSB(&t), FlagQueen))
		}
	}
	return dst
}

func (b *Board) appendCastling(dst []Move, ksq Square, occ, theirAttacks uint64) []Move {
	short, long := CastlingWhiteK, CastlingWhiteQ
	if b.sideToMove == Black {
		short, long = CastlingBlackK, CastlingBlackQ
	}
	if b.castling&short != 0 && b.hasCastlingPieces(short) {
		through := bb(ksq+1) | bb(ksq+2)
		if occ&through == 0 && theirAttacks&through == 0 {
			dst = append(dst, NewMove(ksq, ksq+2, FlagCastling))
		}
	}
	if b.castling&long != 0 && b.hasCastlingPieces(long) {
		through := bb(ksq-1) | bb(ksq-2) | bb(ksq-3)
		// The king never crosses the b-file square, so only its emptiness matters.
		if occ&through == 0 && theirAttacks&(through^bb(ksq-3)) == 0 {
			dst = append(dst, NewMove(ksq, ksq-2, FlagCastling))
		}
	}
	return dst
}

// appendEnPassant tries each capturing pawn on the bitboards, keeps the move
// when our king is safe afterwards, and restores the board.
func (b *Board) appendEnPassant(dst []Move, pawns uint64) []Move {
	stm := b.sideToMove
	target := b.enPassant
	victim := target - 8
	if stm == Black {
		victim = target + 8
	}
	if b.pieces[victim] != NewPiece(stm.Other(), Pawn) || b.pieces[target] != NoPiece {
		return dst
	}

	for m := pawns & pawnAttacks[stm.Other()][target]; m != 0; {
		from := popLSB(&m)
		colors, pawnBB := b.colors, b.types[Pawn]

		b.colors[stm] ^= bb(from) | bb(target)
		b.colors[stm.Other()] ^= bb(victim)
		b.types[Pawn] ^= bb(from) | bb(target) | bb(victim)

		occ := b.colors[White] | b.colors[Black]
		if b.attackersWithOcc(b.KingSquare(stm), stm.Other(), occ) == 0 {
			dst = append(dst, NewMove(from, target, FlagEnPassant))
		}

		b.colors, b.types[Pawn] = colors, pawnBB
	}
	return dst
}

func appendPromotions(dst []Move, from, to Square, underpromotions bool) []Move {
	dst = append(dst, NewMove(from, to, FlagQueenPromotion))
	if underpromotions {
		dst = append(dst,
			NewMove(from, to, FlagRookPromotion),
			NewMove(from, to, FlagBishopPromotion),
			NewMove(from, to, FlagKnightPromotion))
	}
	return dst
}
