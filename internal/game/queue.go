package game

import "sync"

// Queue holds players waiting for an opponent, in arrival order.
type Queue struct {
	mu      sync.Mutex
	waiting []string
	queued  map[string]bool
}

// NewQueue creates an empty waiting queue.
func NewQueue() *Queue {
	return &Queue{queued: make(map[string]bool)}
}

// Join enqueues a player and pairs the two oldest entries the moment two are
// waiting. A player who is already queued stays where they are and is not
// paired with themselves.
func (q *Queue) Join(playerID string) (pair [2]string, paired bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queued[playerID] {
		return pair, false
	}
	q.waiting = append(q.waiting, playerID)
	q.queued[playerID] = true

	if len(q.waiting) < 2 {
		return pair, false
	}
	pair[0], pair[1] = q.waiting[0], q.waiting[1]
	q.waiting = q.waiting[2:]
	delete(q.queued, pair[0])
	delete(q.queued, pair[1])
	return pair, true
}

// Remove drops a still-waiting player, e.g. on disconnect. It reports
// whether the player was queued.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.queued[playerID] {
		return false
	}
	delete(q.queued, playerID)
	for i, id := range q.waiting {
		if id == playerID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of players currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
