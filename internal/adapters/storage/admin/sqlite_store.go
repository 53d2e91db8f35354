package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chemistmap/internal/adapters/storage"
	domain "chemistmap/internal/domain/admin"
)

// selectWithCount reads admins together with their derived member count.
const selectWithCount = `SELECT a.id, a.name, a.email, a.created_at, a.updated_at, COUNT(m.id)
	FROM admins a LEFT JOIN members m ON m.admin_id = a.id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AdminStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Admin by its ID.
// PRE: id is non-empty
// POST: Returns the entity with MembersCount, or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Admin, error) {
	return s.getOne(ctx, "a.id", id)
}

// GetByEmail retrieves an Admin by exact email.
// PRE: email is non-empty
// POST: Returns the entity with MembersCount, or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Admin, error) {
	return s.getOne(ctx, "a.email", email)
}

func (s *SQLiteStore) getOne(ctx context.Context, column, value string) (domain.Admin, error) {
	query := selectWithCount + " WHERE " + column + " = ? GROUP BY a.id"
	entity, err := scanAdmin(s.db.QueryRowContext(ctx, query, value).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Admin{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// Insert persists a new Admin.
// PRE: entity has been validated
// POST: Entity is persisted; a duplicate email returns domain.ErrEmailTaken
func (s *SQLiteStore) Insert(ctx context.Context, entity domain.Admin) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO admins (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		entity.ID,
		entity.Name,
		entity.Email,
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.UpdatedAt),
	)
	if _, ok := storage.UniqueViolation(err); ok {
		return domain.ErrEmailTaken
	}
	return err
}

// Update writes the editable fields of an existing Admin.
// PRE: entity has been validated
// POST: name, email and updated_at are replaced; returns domain.ErrNotFound
// when no row matched
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Admin) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE admins SET name = ?, email = ?, updated_at = ? WHERE id = ?",
		entity.Name,
		entity.Email,
		storage.FormatTime(entity.UpdatedAt),
		entity.ID,
	)
	if _, ok := storage.UniqueViolation(err); ok {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an Admin.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM admins WHERE id = ?", id)
	return err
}

// List retrieves Admins ordered by name, each with its member count.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Admin, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(selectWithCount)
	where, args := filter.where()
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" GROUP BY a.id ORDER BY a.name COLLATE NOCASE, a.id")
	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Admin
	for rows.Next() {
		entity, err := scanAdmin(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of Admins matching the filter.
// PRE: none
// POST: Returns the exact total
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins a"+where, args...).Scan(&count)
	return count, err
}

func (f ListFilter) where() (string, []any) {
	if f.Search == "" {
		return "", nil
	}
	return " WHERE a.name LIKE ?", []any{"%" + f.Search + "%"}
}

// scanAdmin extracts an Admin from a row scanner function.
func scanAdmin(scan func(dest ...any) error) (domain.Admin, error) {
	var entity domain.Admin
	var createdAt, updatedAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&createdAt,
		&updatedAt,
		&entity.MembersCount,
	)
	if err != nil {
		return domain.Admin{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return entity, nil
}
