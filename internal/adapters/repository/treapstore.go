package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/okian/rcajudge/internal/domain/types"
	"github.com/okian/rcajudge/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC (or ASC with WithAscending), then teamID ASC.
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst.

const (
	defaultPrecision = 6
	maxPrecision     = 12
)

type scoreFP int64

func (s *TreapStore) toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return scoreFP(math.MaxInt64)
	case math.IsInf(x, -1):
		return scoreFP(math.MinInt64)
	}
	scaled := math.Round(x * s.scale)
	if scaled >= float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled <= float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(scaled)
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// priority derives a stable pseudo-random heap priority from the team id.
func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// TreapStore is a Store backed by a treap keyed on (score, team id).
type TreapStore struct {
	mu        sync.RWMutex
	root      *node
	byID      map[string]scoreFP
	raw       map[string]float64
	ascending bool
	scale     float64
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:  make(map[string]scoreFP),
		raw:   make(map[string]float64),
		scale: math.Pow10(defaultPrecision),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func (s *TreapStore) less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		if s.ascending {
			return aScore < bScore
		}
		return aScore > bScore
	}
	return aID < bID
}

func (s *TreapStore) insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if s.less(score, id, n.score, n.id) {
		n.left = s.insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = s.insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// putLocked inserts a team absent from the store in O(log n) expected time.
// Caller holds the write lock.
func (s *TreapStore) putLocked(teamID string, score float64) {
	ns := s.toFixedPoint(score)
	s.byID[teamID] = ns
	s.raw[teamID] = score
	s.root = s.insert(s.root, teamID, ns)
}

// Load implements Store.Load.
func (s *TreapStore) Load(_ context.Context, table types.ScoreTable) error {
	s.mu.Lock()
	s.root = nil
	s.byID = make(map[string]scoreFP, len(table))
	s.raw = make(map[string]float64, len(table))
	for _, team := range table.Teams() {
		s.putLocked(team, table[team])
	}
	n := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate()
	metrics.UpdateTeamsRanked(n)
	return nil
}

// Rank returns the dense rank and score of a team.
func (s *TreapStore) Rank(ctx context.Context, teamID string) (types.Entry, error) {
	metrics.RecordLeaderboardQuery()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[teamID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}

	for _, e := range s.collect(len(s.byID)) {
		if e.TeamID == teamID {
			return e, nil
		}
	}
	return types.Entry{}, ErrNotFound
}

// TopN returns the first n entries in leaderboard order.
func (s *TreapStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	metrics.RecordLeaderboardQuery()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(n), nil
}

// All returns every entry in leaderboard order.
func (s *TreapStore) All(_ context.Context) []types.Entry {
	metrics.RecordLeaderboardQuery()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(len(s.byID))
}

// Count returns the total number of teams.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// collect walks the treap in order, assigning dense ranks, and stops after
// limit entries. Caller holds the lock.
func (s *TreapStore) collect(limit int) []types.Entry {
	out := make([]types.Entry, 0, min(limit, len(s.byID)))
	var (
		rank int
		prev scoreFP
	)
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil || len(out) >= limit {
			return
		}
		walk(n.left)
		if len(out) >= limit {
			return
		}
		if len(out) == 0 || n.score != prev {
			rank++
			prev = n.score
		}
		out = append(out, types.Entry{Rank: rank, TeamID: n.id, Score: s.raw[n.id]})
		walk(n.right)
	}
	walk(s.root)
	return out
}
