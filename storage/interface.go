package storage

import (
	"context"

	"flipgrid-server/game"
)

// RoundStore abstracts persistence for round history, the leaderboard and
// player stats. Implementations can be swapped for testing (mocks) or
// different backends.
type RoundStore interface {
	// Read
	ListByUserID(ctx context.Context, userID string) ([]RoundRecord, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)
	GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*LeaderboardEntry, error)

	// Write
	InsertRoundResult(ctx context.Context, res game.RoundResult) error

	// Lifecycle
	Close()
}

// Ensure *Store implements RoundStore at compile time.
var _ RoundStore = (*Store)(nil)
