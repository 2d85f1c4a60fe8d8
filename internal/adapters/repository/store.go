// Package repository holds the in-memory leaderboard of a judging run.
package repository

import (
	"context"

	"github.com/okian/rcajudge/internal/domain/types"
)

// Store provides read/write access to the leaderboard state.
type Store interface {
	// Load replaces the whole leaderboard with table.
	Load(ctx context.Context, table types.ScoreTable) error

	// Rank returns the current dense rank and score of a team.
	// Returns ErrNotFound if the team is unknown.
	Rank(ctx context.Context, teamID string) (types.Entry, error)

	// TopN returns the first n entries in leaderboard order.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// All returns every entry in leaderboard order.
	All(ctx context.Context) []types.Entry

	// Count returns the number of teams on the leaderboard.
	Count(ctx context.Context) int
}
