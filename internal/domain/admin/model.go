package admin

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Domain errors
var (
	ErrMissingRequired = errors.New("please fill all required fields")
	ErrInvalidEmail    = errors.New("please enter a valid email address")
	ErrEmailTaken      = errors.New("an admin with this email already exists")
	ErrHasMembers      = errors.New("you cannot delete an admin that has members assigned to them, please re-assign the members before you delete the admin")
	ErrNotFound        = errors.New("admin not found")
)

// emailPattern accepts local@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Admin is a staff user who manages a subset of members.
type Admin struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// MembersCount is derived at read time and never stored.
	MembersCount int
}

// Normalize trims the editable fields.
// POST: Name and Email carry no surrounding whitespace
func (a *Admin) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
}

// Validate checks if the Admin has valid data.
// PRE: Normalize has been called
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty, Email must look like local@domain.tld
func (a *Admin) Validate() error {
	if a.Name == "" || a.Email == "" {
		return ErrMissingRequired
	}
	if len(a.Name) > MaxNameLength {
		return errors.New("admin name cannot exceed 100 characters")
	}
	if len(a.Email) > MaxEmailLength || !emailPattern.MatchString(a.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// CanDelete reports whether the admin may be removed.
// INVARIANT: Admin fields are not mutated
func (a *Admin) CanDelete() error {
	if a.MembersCount > 0 {
		return ErrHasMembers
	}
	return nil
}

// AverageMembers returns members per admin rounded to one decimal place,
// or 0 when there are no admins.
func AverageMembers(members, admins int) float64 {
	if admins <= 0 {
		return 0
	}
	avg := float64(members) / float64(admins)
	return float64(int(avg*10+0.5)) / 10
}
