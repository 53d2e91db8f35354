package projections

import (
	"context"

	adminStore "chemistmap/internal/adapters/storage/admin"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/note"
)

// GetNoteHistoryResult carries a member and its notes, newest first.
type GetNoteHistoryResult struct {
	Member MemberRow
	Notes  []note.MemberNote
	Admins []admin.Admin // note author selector
}

// GetNoteHistoryDeps holds dependencies for GetNoteHistory.
type GetNoteHistoryDeps struct {
	MemberStore MemberStore
	AdminStore  AdminStore
	NoteStore   NoteStore
}

// QueryGetNoteHistory retrieves the follow-up notes of one member.
// PRE: memberID names an existing member
// POST: Notes are ordered newest first and show the author name captured at write time
func QueryGetNoteHistory(ctx context.Context, memberID string, deps GetNoteHistoryDeps) (GetNoteHistoryResult, error) {
	m, err := deps.MemberStore.GetByID(ctx, memberID)
	if err != nil {
		return GetNoteHistoryResult{}, err
	}
	notes, err := deps.NoteStore.ListByMember(ctx, m.ID)
	if err != nil {
		return GetNoteHistoryResult{}, err
	}
	admins, err := deps.AdminStore.List(ctx, adminStore.ListFilter{})
	if err != nil {
		return GetNoteHistoryResult{}, err
	}
	return GetNoteHistoryResult{
		Member: MemberRow{Member: m, AdminName: adminNames(admins)[m.AdminID]},
		Notes:  notes,
		Admins: admins,
	}, nil
}
