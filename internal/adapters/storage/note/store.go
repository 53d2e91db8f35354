package note

import (
	"context"

	domain "chemistmap/internal/domain/note"
)

// Store persists MemberNote state. Notes are never edited.
type Store interface {
	Insert(ctx context.Context, value domain.MemberNote) error
	ListByMember(ctx context.Context, memberID string) ([]domain.MemberNote, error)
	DeleteByMember(ctx context.Context, memberID string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
