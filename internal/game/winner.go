package game

// ResolveWinner returns the player holding the strictly greatest score.
// Any tie for the top score yields no winner, and a top score of zero
// never wins. Both are product decisions, not tie-break artifacts.
func ResolveWinner(scores map[string]int) (string, bool) {
	var winner string
	best := -1
	tied := false
	for playerID, score := range scores {
		switch {
		case score > best:
			best = score
			winner = playerID
			tied = false
		case score == best:
			tied = true
		}
	}
	if tied || best <= 0 {
		return "", false
	}
	return winner, true
}
