package chess

// Perft counts the leaf nodes of the legal move tree to the given depth,
// underpromotions included. b is not modified.
func Perft(b *Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	pc := perftCtx{bufs: make([][]Move, depth+1), boards: make([]Board, depth+1)}
	return pc.perft(b, depth)
}

// perftCtx keeps one move buffer and one scratch board per depth.
type perftCtx struct {
	bufs   [][]Move
	boards []Board
}

func (pc *perftCtx) bufFor(depth int) []Move {
	if pc.bufs[depth] == nil {
		pc.bufs[depth] = make([]Move, 0, 256)
	}
	return pc.bufs[depth][:0]
}

func (pc *perftCtx) perft(b *Board, depth int) uint64 {
	moves := b.LegalMovesInto(pc.bufFor(depth), true)
	pc.bufs[depth] = moves
	if depth == 1 {
		return uint64(len(moves))
	}
	child := &pc.boards[depth]
	var nodes uint64
	for _, m := range moves {
		child.CopyFrom(b)
		child.ApplyMove(m)
		nodes += pc.perft(child, depth-1)
	}
	return nodes
}

// PerftDivide returns the leaf count below each legal root move.
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth <= 0 {
		return result
	}
	child := b.Clone()
	for _, m := range b.LegalMoves(true) {
		child.CopyFrom(b)
		child.ApplyMove(m)
		result[m] = Perft(child, depth-1)
	}
	return result
}
