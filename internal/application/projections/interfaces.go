package projections

import (
	"context"

	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/broadcast"
	"chemistmap/internal/domain/member"
	"chemistmap/internal/domain/note"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
	Count(ctx context.Context, filter memberStore.ListFilter) (int, error)
	ListByIDs(ctx context.Context, ids []string) ([]member.Member, error)
	CountUnassigned(ctx context.Context) (int, error)
}

// AdminStore interface for admin queries. Reads carry MembersCount.
type AdminStore interface {
	GetByID(ctx context.Context, id string) (admin.Admin, error)
	List(ctx context.Context, filter adminStore.ListFilter) ([]admin.Admin, error)
	Count(ctx context.Context, filter adminStore.ListFilter) (int, error)
}

// NoteStore interface for note history queries.
type NoteStore interface {
	ListByMember(ctx context.Context, memberID string) ([]note.MemberNote, error)
}

// BroadcastStore interface for comms history queries.
type BroadcastStore interface {
	ListRecent(ctx context.Context, limit int) ([]broadcast.Broadcast, error)
}

// AuditStore interface for the activity feed.
type AuditStore interface {
	List(ctx context.Context, filter auditStore.Filter, limit int) ([]audit.Event, error)
}

// adminNames maps admin id to name for row decoration.
func adminNames(admins []admin.Admin) map[string]string {
	names := make(map[string]string, len(admins))
	for _, a := range admins {
		names[a.ID] = a.Name
	}
	return names
}
