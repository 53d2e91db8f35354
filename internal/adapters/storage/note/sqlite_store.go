package note

import (
	"context"

	"chemistmap/internal/adapters/storage"
	domain "chemistmap/internal/domain/note"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new NoteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert persists a MemberNote.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Insert(ctx context.Context, entity domain.MemberNote) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO member_notes (id, member_id, note, admin_id, admin_name, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entity.ID,
		entity.MemberID,
		entity.Body,
		entity.AdminID,
		entity.AdminName,
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// ListByMember returns every note for a member, newest first.
// PRE: memberID is non-empty
// POST: Returns notes ordered by created_at descending
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID string) ([]domain.MemberNote, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, member_id, note, admin_id, admin_name, created_at FROM member_notes WHERE member_id = ? ORDER BY created_at DESC, id DESC",
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MemberNote
	for rows.Next() {
		var n domain.MemberNote
		var createdAt string
		if err := rows.Scan(&n.ID, &n.MemberID, &n.Body, &n.AdminID, &n.AdminName, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, n)
	}
	return results, rows.Err()
}

// DeleteByMember removes every note belonging to a member.
// PRE: memberID is non-empty
// POST: No notes reference memberID
func (s *SQLiteStore) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member_notes WHERE member_id = ?", memberID)
	return err
}
