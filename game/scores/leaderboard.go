package scores

import (
	"context"
	"sort"
	"sync"
)

// DefaultLeaderboardSize is how many entries a leaderboard keeps by default.
const DefaultLeaderboardSize = 100

// Leaderboard keeps the best submissions in memory, highest score first.
// Equal scores keep submission order.
type Leaderboard struct {
	mu       sync.RWMutex
	entries  []Submission
	capacity int
}

// NewLeaderboard creates a leaderboard holding at most capacity entries.
func NewLeaderboard(capacity int) *Leaderboard {
	if capacity <= 0 {
		capacity = DefaultLeaderboardSize
	}
	return &Leaderboard{capacity: capacity}
}

// Submit records sub. It never fails.
func (b *Leaderboard) Submit(_ context.Context, sub Submission) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Score < sub.Score
	})
	if i >= b.capacity {
		return nil
	}
	b.entries = append(b.entries, Submission{})
	copy(b.entries[i+1:], b.entries[i:])
	b.entries[i] = sub
	if len(b.entries) > b.capacity {
		b.entries = b.entries[:b.capacity]
	}
	return nil
}

// Top returns up to n best entries. n <= 0 returns all of them.
func (b *Leaderboard) Top(n int) []Submission {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]Submission, n)
	copy(out, b.entries[:n])
	return out
}

// Len returns the number of recorded entries.
func (b *Leaderboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
