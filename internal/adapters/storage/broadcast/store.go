package broadcast

import (
	"context"

	domain "chemistmap/internal/domain/broadcast"
)

// Store persists the comms history.
type Store interface {
	Save(ctx context.Context, value domain.Broadcast) error
	ListRecent(ctx context.Context, limit int) ([]domain.Broadcast, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
