// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/lunchclub/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for roster and round storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// ReplaceRoster atomically replaces the whole roster.
	ReplaceRoster(ctx context.Context, members []models.Member) error

	// ListMembers returns the roster ordered by username.
	ListMembers(ctx context.Context) ([]models.Member, error)

	// CreateRound persists a committed round.
	// The round.ID, group IDs and CreatedAt fields will be populated by the store.
	CreateRound(ctx context.Context, round *models.Round) error

	// GetRound retrieves a round with all of its groups.
	// Returns an error wrapping ErrNotFound if the round does not exist.
	GetRound(ctx context.Context, roundID string) (*models.Round, error)

	// ListRounds returns summaries of every round, newest formation date first.
	ListRounds(ctx context.Context) ([]models.RoundSummary, error)

	// ListRoundsSince returns full rounds formed on or after since and
	// strictly before until. It backs the recency window of pairing history.
	ListRoundsSince(ctx context.Context, since, until time.Time) ([]models.Round, error)

	// Close releases any resources held by the store.
	Close() error
}
