// Package store records generation runs.
package store

import (
	"context"
	"errors"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// Store persists generation runs. Implementations are safe for concurrent use.
type Store interface {
	// SaveRun inserts run, assigning an ID and timestamp when they are empty.
	SaveRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	// ListRuns returns the most recent runs first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	DeleteRun(ctx context.Context, id string) error
	Close() error
}
