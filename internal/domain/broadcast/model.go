package broadcast

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxSubjectLength = 200
	MaxBodyLength    = 20000
)

// Status constants for a broadcast after delivery was attempted.
const (
	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Domain errors
var (
	ErrEmptySubject = errors.New("subject is required")
	ErrEmptyBody    = errors.New("message body is required")
	ErrNoRecipients = errors.New("no members in this audience have opted into reminders")
)

// Broadcast is a Markdown message emailed to members who opted into reminders,
// optionally narrowed to the members of one admin.
type Broadcast struct {
	ID             string
	Subject        string
	Body           string // Markdown
	AdminID        string // audience filter; empty means every admin
	SenderEmail    string // operator who sent it
	RecipientCount int
	FailedCount    int
	Status         string
	CreatedAt      time.Time
}

// Validate checks that the Broadcast has valid data.
// PRE: Broadcast struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Broadcast) Validate() error {
	if strings.TrimSpace(b.Subject) == "" {
		return ErrEmptySubject
	}
	if len(b.Subject) > MaxSubjectLength {
		return errors.New("subject cannot exceed 200 characters")
	}
	if strings.TrimSpace(b.Body) == "" {
		return ErrEmptyBody
	}
	if len(b.Body) > MaxBodyLength {
		return errors.New("message body cannot exceed 20000 characters")
	}
	if b.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

// RecordDelivery sets the counters and derives the status.
// PRE: recipients >= failed >= 0
// POST: Status is sent, partial or failed
func (b *Broadcast) RecordDelivery(recipients, failed int) {
	b.RecipientCount = recipients
	b.FailedCount = failed
	switch {
	case failed == 0:
		b.Status = StatusSent
	case failed < recipients:
		b.Status = StatusPartial
	default:
		b.Status = StatusFailed
	}
}
