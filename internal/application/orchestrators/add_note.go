package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chemistmap/internal/domain/note"
)

// NoteWriter inserts member notes.
type NoteWriter interface {
	Insert(ctx context.Context, n note.MemberNote) error
}

// AddNoteInput carries input for the add note orchestrator.
type AddNoteInput struct {
	MemberID string
	AdminID  string // authoring admin
	Body     string
}

// AddNoteDeps holds dependencies for AddNote.
type AddNoteDeps struct {
	MemberStore MemberStoreForOrchestrator
	AdminStore  AdminLookup
	NoteStore   NoteWriter
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddNote records a follow-up note and copies its body to the
// member's latest-note field.
// PRE: MemberID names an existing member; AdminID names an existing admin
// POST: A note carrying the admin's current name is inserted, then
// members.notes is set to its body
// INVARIANT: The two writes are not atomic; a failed second write returns a
// partial *WorkflowError and leaves the note in place
func ExecuteAddNote(ctx context.Context, input AddNoteInput, deps AddNoteDeps) (note.MemberNote, error) {
	if input.AdminID == "" {
		return note.MemberNote{}, note.ErrEmptyAdminID
	}
	if strings.TrimSpace(input.Body) == "" {
		return note.MemberNote{}, note.ErrEmptyBody
	}

	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return note.MemberNote{}, err
	}
	author, err := deps.AdminStore.GetByID(ctx, input.AdminID)
	if err != nil {
		return note.MemberNote{}, err
	}

	now := deps.Now()
	n := note.MemberNote{
		ID:        deps.GenerateID(),
		MemberID:  m.ID,
		Body:      strings.TrimSpace(input.Body),
		AdminID:   author.ID,
		AdminName: author.Name,
		CreatedAt: now,
	}
	if err := n.Validate(); err != nil {
		return note.MemberNote{}, err
	}

	if err := deps.NoteStore.Insert(ctx, n); err != nil {
		return note.MemberNote{}, err
	}
	if err := deps.MemberStore.UpdateNotes(ctx, m.ID, n.Body, now); err != nil {
		slog.Error("member_event", "event", "latest_note_update_failed", "member_id", m.ID, "note_id", n.ID, "error", err)
		return n, &WorkflowError{
			Workflow: "add_note",
			Step:     "update_latest_note",
			Applied:  []string{"insert_note"},
			Err:      fmt.Errorf("note saved but the member's latest note was not updated: %w", err),
		}
	}

	slog.Info("member_event", "event", "note_added", "member_id", m.ID, "note_id", n.ID, "admin_id", author.ID)
	return n, nil
}
