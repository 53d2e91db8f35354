package note

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxBodyLength = 5000
)

// Domain errors
var (
	ErrEmptyMemberID = errors.New("member ID is required")
	ErrEmptyAdminID  = errors.New("please select the admin writing this note")
	ErrEmptyBody     = errors.New("note cannot be empty")
)

// MemberNote is a timestamped follow-up entry about a member, written by an
// admin. AdminName is a snapshot of the author's name at write time and is
// not updated when the admin is renamed.
type MemberNote struct {
	ID        string
	MemberID  string
	Body      string
	AdminID   string
	AdminName string
	CreatedAt time.Time
}

// Validate checks if the MemberNote has valid data.
// PRE: MemberNote struct is populated
// POST: Returns nil if valid, error otherwise
func (n *MemberNote) Validate() error {
	if n.MemberID == "" {
		return ErrEmptyMemberID
	}
	if n.AdminID == "" {
		return ErrEmptyAdminID
	}
	if strings.TrimSpace(n.Body) == "" {
		return ErrEmptyBody
	}
	if len(n.Body) > MaxBodyLength {
		return errors.New("note cannot exceed 5000 characters")
	}
	if n.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
