package member

import (
	"context"
	"time"

	domain "chemistmap/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (domain.Member, error)
	Insert(ctx context.Context, value domain.Member) error
	UpdateAdmin(ctx context.Context, id, adminID string, now time.Time) error
	UpdateNotes(ctx context.Context, id, notes string, now time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Member, error)
	CountUnassigned(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
// Limit <= 0 means no limit.
type ListFilter struct {
	Search       string // case-insensitive substring of full_name
	AdminID      string
	ReminderOnly bool
	BirthMonth   int // 1-12, 0 for any
	Limit        int
	Offset       int
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
