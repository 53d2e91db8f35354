package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chemistmap/internal/adapters/storage"
	domain "chemistmap/internal/domain/member"
)

const memberColumns = "id, full_name, phone, email, admin_id, address, relationship_status, occupation, " +
	"service_unit_status, service_unit_name, reminder, suggestions, gender, birthday, notes, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	return s.getOne(ctx, "id", id)
}

// GetByEmail retrieves a Member by exact email.
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	return s.getOne(ctx, "email", email)
}

// GetByPhone retrieves a Member by exact phone number.
// PRE: phone is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByPhone(ctx context.Context, phone string) (domain.Member, error) {
	return s.getOne(ctx, "phone", phone)
}

func (s *SQLiteStore) getOne(ctx context.Context, column, value string) (domain.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE " + column + " = ?"
	entity, err := scanMember(s.db.QueryRowContext(ctx, query, value).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// Insert persists a new Member.
// PRE: entity has been validated
// POST: Entity is persisted; a duplicate email or phone returns
// domain.ErrEmailTaken or domain.ErrPhoneTaken
func (s *SQLiteStore) Insert(ctx context.Context, entity domain.Member) error {
	query := "INSERT INTO members (" + memberColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.FullName,
		entity.Phone,
		entity.Email,
		storage.NullIfEmpty(entity.AdminID),
		entity.Address,
		entity.RelationshipStatus,
		entity.Occupation,
		entity.ServiceUnitStatus,
		storage.NullIfEmpty(entity.ServiceUnitName),
		entity.Reminder,
		storage.NullIfEmpty(entity.Suggestions),
		entity.Gender,
		entity.Birthday,
		storage.NullIfEmpty(entity.Notes),
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.UpdatedAt),
	)
	if column, ok := storage.UniqueViolation(err); ok {
		switch column {
		case "members.phone":
			return domain.ErrPhoneTaken
		default:
			return domain.ErrEmailTaken
		}
	}
	return err
}

// UpdateAdmin moves a Member to another admin. Only admin_id and updated_at change.
// PRE: id is non-empty
// POST: Returns an error wrapping domain.ErrNotFound when no row matched
func (s *SQLiteStore) UpdateAdmin(ctx context.Context, id, adminID string, now time.Time) error {
	return s.updateOne(ctx, "UPDATE members SET admin_id = ?, updated_at = ? WHERE id = ?",
		storage.NullIfEmpty(adminID), storage.FormatTime(now), id)
}

// UpdateNotes sets the denormalized latest-note copy.
// PRE: id is non-empty
// POST: Returns an error wrapping domain.ErrNotFound when no row matched
func (s *SQLiteStore) UpdateNotes(ctx context.Context, id, notes string, now time.Time) error {
	return s.updateOne(ctx, "UPDATE members SET notes = ?, updated_at = ? WHERE id = ?",
		storage.NullIfEmpty(notes), storage.FormatTime(now), id)
}

func (s *SQLiteStore) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
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

// Delete removes a Member row. Notes must already be gone.
// PRE: id is non-empty
// POST: Member with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	return err
}

// List retrieves Members matching the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + memberColumns + " FROM members")
	where, args := filter.where()
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(" ORDER BY created_at DESC, id")
	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

// Count returns the number of Members matching the filter, ignoring Limit and Offset.
// PRE: none
// POST: Returns the exact total
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members"+where, args...).Scan(&count)
	return count, err
}

// ListByIDs returns the Members with the given ids in the order given.
// Unknown ids are skipped.
func (s *SQLiteStore) ListByIDs(ctx context.Context, ids []string) ([]domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found, err := scanMembers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Member, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	ordered := make([]domain.Member, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// CountUnassigned returns the number of Members with no admin.
func (s *SQLiteStore) CountUnassigned(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE admin_id IS NULL").Scan(&count)
	return count, err
}

// where builds the WHERE clause shared by List and Count.
func (f ListFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Search != "" {
		conds = append(conds, "full_name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}
	if f.AdminID != "" {
		conds = append(conds, "admin_id = ?")
		args = append(args, f.AdminID)
	}
	if f.ReminderOnly {
		conds = append(conds, "reminder = ?")
		args = append(args, domain.AnswerYes)
	}
	if f.BirthMonth >= 1 && f.BirthMonth <= 12 {
		conds = append(conds, "substr(birthday, 1, 2) = ?")
		args = append(args, fmt.Sprintf("%02d", f.BirthMonth))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var entity domain.Member
	var adminID, unitName, suggestions, notes sql.NullString
	var createdAt, updatedAt string
	err := scan(
		&entity.ID,
		&entity.FullName,
		&entity.Phone,
		&entity.Email,
		&adminID,
		&entity.Address,
		&entity.RelationshipStatus,
		&entity.Occupation,
		&entity.ServiceUnitStatus,
		&unitName,
		&entity.Reminder,
		&suggestions,
		&entity.Gender,
		&entity.Birthday,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.AdminID = adminID.String
	entity.ServiceUnitName = unitName.String
	entity.Suggestions = suggestions.String
	entity.Notes = notes.String
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return entity, nil
}

func scanMembers(rows *sql.Rows) ([]domain.Member, error) {
	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
