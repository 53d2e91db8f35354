package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/member"
)

// BulkMembersInput carries input for the bulk delete and bulk reassign orchestrators.
type BulkMembersInput struct {
	MemberIDs     []string // in selection order
	TargetAdminID string   // bulk reassign only
	AdminKey      string
	Actor         audit.Actor
}

// BulkMembersDeps holds dependencies for the bulk orchestrators.
type BulkMembersDeps struct {
	MemberStore MemberStoreForOrchestrator
	NoteStore   NoteRemover // bulk delete only
	AdminStore  AdminLookup // bulk reassign only
	AdminKey    adminkey.Key
	Audit       AuditRecorder
	Now         func() time.Time
}

// ExecuteBulkDelete deletes every selected member, notes first, one at a time.
// PRE: MemberIDs is non-empty
// POST: Each member either is deleted or appears in BulkResult.Failed
// INVARIANT: The key is checked once; a mismatch means no delete call at all
func ExecuteBulkDelete(ctx context.Context, input BulkMembersInput, deps BulkMembersDeps) (BulkResult, error) {
	ids := dedupe(input.MemberIDs)
	if len(ids) == 0 {
		return BulkResult{}, ErrNoSelection
	}
	if err := deps.AdminKey.Verify(input.AdminKey); err != nil {
		recordRejectedKey(ctx, deps.Audit, input.Actor, "member", strings.Join(ids, ","), "bulk_delete", deps.Now())
		return BulkResult{}, ErrDeletionCancelled
	}

	selected, err := loadSelection(ctx, deps.MemberStore, ids)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for _, id := range ids {
		m, ok := selected[id]
		if !ok {
			result.Failed = append(result.Failed, BulkFailure{MemberID: id, Err: member.ErrNotFound})
			continue
		}
		if err := deleteMemberSteps(ctx, id, deps.MemberStore, deps.NoteStore); err != nil {
			result.Failed = append(result.Failed, BulkFailure{MemberID: id, Name: m.FullName, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		recordAudit(ctx, deps.Audit, audit.NewEvent(input.Actor, audit.CategoryMember, audit.ActionDelete, deps.Now()).
			WithResource("member", id).
			WithDescription("bulk deleted member "+m.FullName))
	}

	slog.Info("member_event", "event", "members_bulk_deleted", "deleted", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}

// ExecuteBulkReassign moves every selected member to one target admin.
// PRE: MemberIDs is non-empty; TargetAdminID is set
// POST: Each member either has the target admin_id or appears in BulkResult.Failed
// INVARIANT: The key is checked once; a mismatch means no update call at all
func ExecuteBulkReassign(ctx context.Context, input BulkMembersInput, deps BulkMembersDeps) (BulkResult, string, error) {
	ids := dedupe(input.MemberIDs)
	if len(ids) == 0 {
		return BulkResult{}, "", ErrNoSelection
	}
	if input.TargetAdminID == "" {
		return BulkResult{}, "", ErrNoTargetAdmin
	}
	if err := deps.AdminKey.Verify(input.AdminKey); err != nil {
		recordRejectedKey(ctx, deps.Audit, input.Actor, "member", strings.Join(ids, ","), "bulk_reassign", deps.Now())
		return BulkResult{}, "", ErrReassignmentCancelled
	}

	target, err := deps.AdminStore.GetByID(ctx, input.TargetAdminID)
	if err != nil {
		return BulkResult{}, "", err
	}
	selected, err := loadSelection(ctx, deps.MemberStore, ids)
	if err != nil {
		return BulkResult{}, "", err
	}

	var result BulkResult
	for _, id := range ids {
		m, ok := selected[id]
		if !ok {
			result.Failed = append(result.Failed, BulkFailure{MemberID: id, Err: member.ErrNotFound})
			continue
		}
		now := deps.Now()
		if err := deps.MemberStore.UpdateAdmin(ctx, id, target.ID, now); err != nil {
			result.Failed = append(result.Failed, BulkFailure{MemberID: id, Name: m.FullName, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		recordAudit(ctx, deps.Audit, audit.NewEvent(input.Actor, audit.CategoryMember, audit.ActionReassign, now).
			WithResource("member", id).
			WithDescription(fmt.Sprintf("bulk reassigned %s from %q to %q", m.FullName, m.AdminID, target.ID)))
	}

	slog.Info("member_event", "event", "members_bulk_reassigned", "admin_id", target.ID, "reassigned", len(result.Succeeded), "failed", len(result.Failed))
	return result, target.Name, nil
}

func loadSelection(ctx context.Context, store MemberStoreForOrchestrator, ids []string) (map[string]member.Member, error) {
	members, err := store.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]member.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return byID, nil
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
