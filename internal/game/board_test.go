package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateBoardHasExactlyOnePair(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		rng := rand.New(rand.NewSource(seed))
		board, err := GenerateBoard(rng, DefaultPalette, BoardSize)
		require.NoError(t, err)
		require.Len(t, board, BoardSize)

		counts := make(map[string]int)
		for _, sym := range board {
			counts[sym]++
		}

		doubles := 0
		for sym, n := range counts {
			switch n {
			case 1:
			case 2:
				doubles++
			default:
				t.Fatalf("seed %d: symbol %s appears %d times", seed, sym, n)
			}
		}
		require.Equal(t, 1, doubles, "seed %d: expected exactly one duplicated symbol", seed)
	}
}

func TestGenerateBoardPaletteTooSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := GenerateBoard(rng, []string{"😀", "😃", "😄"}, BoardSize)
	require.ErrorIs(t, err, ErrPaletteTooSmall)
}

func TestGenerateBoardIgnoresPaletteDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	palette := append([]string{}, DefaultPalette...)
	palette = append(palette, DefaultPalette...) // duplicates must not count as distinct

	board, err := GenerateBoard(rng, palette, BoardSize)
	require.NoError(t, err)
	require.Len(t, board, BoardSize)
}
