package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/member"
)

// MemberStoreForOrchestrator defines the member store interface needed by the
// delete, reassign, note and bulk orchestrators.
type MemberStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	ListByIDs(ctx context.Context, ids []string) ([]member.Member, error)
	UpdateAdmin(ctx context.Context, id, adminID string, now time.Time) error
	UpdateNotes(ctx context.Context, id, notes string, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// NoteRemover deletes every note of a member.
type NoteRemover interface {
	DeleteByMember(ctx context.Context, memberID string) error
}

// --- Delete Member ---

// DeleteMemberInput carries input for the delete member orchestrator.
type DeleteMemberInput struct {
	MemberID string
	AdminKey string
	Actor    audit.Actor
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore MemberStoreForOrchestrator
	NoteStore   NoteRemover
	AdminKey    adminkey.Key
	Audit       AuditRecorder
	Now         func() time.Time
}

// ExecuteDeleteMember deletes a member's notes and then the member.
// PRE: MemberID names an existing member
// POST: Notes and member row are gone
// INVARIANT: Wrong key means no delete call at all; a notes failure means the
// member row is never touched
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) (member.Member, error) {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, err
	}

	if err := deps.AdminKey.Verify(input.AdminKey); err != nil {
		recordRejectedKey(ctx, deps.Audit, input.Actor, "member", m.ID, "delete_member", deps.Now())
		return member.Member{}, ErrDeletionCancelled
	}

	if err := deleteMemberSteps(ctx, m.ID, deps.MemberStore, deps.NoteStore); err != nil {
		return member.Member{}, err
	}

	recordAudit(ctx, deps.Audit, audit.NewEvent(input.Actor, audit.CategoryMember, audit.ActionDelete, deps.Now()).
		WithResource("member", m.ID).
		WithDescription("deleted member " + m.FullName))
	slog.Info("member_event", "event", "member_deleted", "member_id", m.ID)
	return m, nil
}

// deleteMemberSteps runs the two-step delete shared by the single and bulk flows.
func deleteMemberSteps(ctx context.Context, memberID string, members MemberStoreForOrchestrator, notes NoteRemover) error {
	if err := notes.DeleteByMember(ctx, memberID); err != nil {
		return &WorkflowError{
			Workflow: "delete_member",
			Step:     "delete_notes",
			Err:      fmt.Errorf("%w: %w", ErrDeleteNotes, err),
		}
	}
	if err := members.Delete(ctx, memberID); err != nil {
		return &WorkflowError{
			Workflow: "delete_member",
			Step:     "delete_member",
			Applied:  []string{"delete_notes"},
			Err:      fmt.Errorf("error deleting member: %w", err),
		}
	}
	return nil
}

// --- Reassign Member ---

// ReassignMemberInput carries input for the reassign member orchestrator.
type ReassignMemberInput struct {
	MemberID      string
	TargetAdminID string
	AdminKey      string
	Actor         audit.Actor
}

// ReassignMemberDeps holds dependencies for ReassignMember.
type ReassignMemberDeps struct {
	MemberStore MemberStoreForOrchestrator
	AdminStore  AdminLookup
	AdminKey    adminkey.Key
	Audit       AuditRecorder
	Now         func() time.Time
}

// ReassignMemberResult names the member and the admin it moved to.
type ReassignMemberResult struct {
	Member    member.Member
	AdminName string
}

// ExecuteReassignMember moves a member to a different admin.
// PRE: MemberID names an existing member
// POST: Only admin_id (and updated_at) change; notes are untouched
// INVARIANT: No update when the target is missing, unchanged, or the key
// does not match
func ExecuteReassignMember(ctx context.Context, input ReassignMemberInput, deps ReassignMemberDeps) (ReassignMemberResult, error) {
	if input.TargetAdminID == "" {
		return ReassignMemberResult{}, ErrNoTargetAdmin
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return ReassignMemberResult{}, err
	}
	if m.AdminID == input.TargetAdminID {
		return ReassignMemberResult{}, ErrSameAdmin
	}

	if err := deps.AdminKey.Verify(input.AdminKey); err != nil {
		recordRejectedKey(ctx, deps.Audit, input.Actor, "member", m.ID, "reassign_member", deps.Now())
		return ReassignMemberResult{}, ErrReassignmentCancelled
	}

	target, err := deps.AdminStore.GetByID(ctx, input.TargetAdminID)
	if err != nil {
		return ReassignMemberResult{}, err
	}

	now := deps.Now()
	if err := deps.MemberStore.UpdateAdmin(ctx, m.ID, target.ID, now); err != nil {
		return ReassignMemberResult{}, err
	}
	previous := m.AdminID
	m.AdminID = target.ID
	m.UpdatedAt = now

	recordAudit(ctx, deps.Audit, audit.NewEvent(input.Actor, audit.CategoryMember, audit.ActionReassign, now).
		WithResource("member", m.ID).
		WithDescription(fmt.Sprintf("reassigned %s from %q to %q", m.FullName, previous, target.ID)))
	slog.Info("member_event", "event", "member_reassigned", "member_id", m.ID, "from_admin", previous, "to_admin", target.ID)
	return ReassignMemberResult{Member: m, AdminName: target.Name}, nil
}
