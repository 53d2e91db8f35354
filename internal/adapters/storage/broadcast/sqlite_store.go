package broadcast

import (
	"context"
	"database/sql"

	"chemistmap/internal/adapters/storage"
	domain "chemistmap/internal/domain/broadcast"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BroadcastStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a Broadcast after delivery was attempted.
// PRE: entity has been validated and RecordDelivery called
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Broadcast) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO broadcast (id, subject, body, admin_id, sender_email, recipient_count, failed_count, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID,
		entity.Subject,
		entity.Body,
		storage.NullIfEmpty(entity.AdminID),
		entity.SenderEmail,
		entity.RecipientCount,
		entity.FailedCount,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// ListRecent returns the latest broadcasts, newest first.
// PRE: limit > 0
// POST: Returns at most limit entities
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Broadcast, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, body, admin_id, sender_email, recipient_count, failed_count, status, created_at
		 FROM broadcast ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Broadcast
	for rows.Next() {
		var b domain.Broadcast
		var adminID sql.NullString
		var createdAt string
		err := rows.Scan(&b.ID, &b.Subject, &b.Body, &adminID, &b.SenderEmail,
			&b.RecipientCount, &b.FailedCount, &b.Status, &createdAt)
		if err != nil {
			return nil, err
		}
		b.AdminID = adminID.String
		b.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, b)
	}
	return results, rows.Err()
}
