package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// BoardSize is the number of tiles on a board in the reference configuration.
const BoardSize = 16

// DefaultPalette is the emoji set boards are drawn from.
var DefaultPalette = []string{
	"😀", "😃", "😄", "😁", "😆", "😅", "😂", "🤣",
	"😊", "😇", "🙂", "🙃", "😉", "😌", "😍",
}

var ErrPaletteTooSmall = errors.New("palette has too few distinct symbols")

// GenerateBoard produces a shuffled board of the given size: size-1 distinct
// symbols drawn from the palette plus one duplicate, so every board holds
// exactly one matching pair.
func GenerateBoard(rng *rand.Rand, palette []string, size int) ([]string, error) {
	distinct := dedupe(palette)
	if len(distinct) < size-1 {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrPaletteTooSmall, size-1, len(distinct))
	}

	board := make([]string, 0, size)
	for _, i := range rng.Perm(len(distinct))[:size-1] {
		board = append(board, distinct[i])
	}
	board = append(board, board[rng.Intn(len(board))])

	rng.Shuffle(len(board), func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})
	return board, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
