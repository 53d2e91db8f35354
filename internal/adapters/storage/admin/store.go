package admin

import (
	"context"

	domain "chemistmap/internal/domain/admin"
)

// Store persists Admin state. Reads populate MembersCount.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (domain.Admin, error)
	Insert(ctx context.Context, value domain.Admin) error
	Update(ctx context.Context, value domain.Admin) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Admin, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
// Limit <= 0 means no limit.
type ListFilter struct {
	Search string // case-insensitive substring of name
	Limit  int
	Offset int
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
