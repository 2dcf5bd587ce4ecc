package chess

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestSliderAttacksAgainstDragontooth(t *testing.T) {
	rng := frand.NewCustom(make([]byte, 32), 1024, 8)
	for i := 0; i < 2000; i++ {
		// Sparse random occupancies exercise long rays as well as blockers.
		occ := rng.Uint64n(^uint64(0)) & rng.Uint64n(^uint64(0))
		s := Square(rng.Intn(64))
		require.Equal(t, dragontoothmg.CalculateRookMoveBitboard(uint8(s), occ), RookAttacks(s, occ), "rook %s occ %016x", s, occ)
		require.Equal(t, dragontoothmg.CalculateBishopMoveBitboard(uint8(s), occ), BishopAttacks(s, occ), "bishop %s occ %016x", s, occ)
	}
}

func TestLeaperTables(t *testing.T) {
	require.Equal(t, uint64(1)<<10|uint64(1)<<17, KnightAttacks(A1))
	require.Equal(t, uint64(1)<<1|uint64(1)<<8|uint64(1)<<9, KingAttacks(A1))
	require.Equal(t, uint64(1)<<(8+1), PawnAttacks(A1, White))
	require.Equal(t, uint64(0), PawnAttacks(A1, Black))
	require.Equal(t, uint64(1)<<46|uint64(1)<<44, PawnAttacks(53, Black))
}

func TestXrayAttacks(t *testing.T) {
	// Rook on a1, own piece on a2, enemy rook on a8: the x-ray sees a8.
	occ := uint64(1)<<A1 | uint64(1)<<8 | uint64(1)<<A8
	own := uint64(1) << 8
	require.Equal(t, uint64(1)<<A8, XrayRookAttacks(A1, occ, own)&(uint64(1)<<A8))
	require.Equal(t, uint64(0), XrayBishopAttacks(A1, occ, own))
}
