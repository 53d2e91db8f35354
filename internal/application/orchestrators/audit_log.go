package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"chemistmap/internal/domain/audit"
)

// AuditRecorder persists audit events. A nil recorder disables auditing.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// recordAudit saves an audit event. Failures are logged and never fail the
// workflow that produced the event.
func recordAudit(ctx context.Context, rec AuditRecorder, event audit.Event) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, event); err != nil {
		slog.Error("audit_write_failed", "action", event.Action, "resource_id", event.ResourceID, "error", err)
	}
}

// recordRejectedKey audits an admin key mismatch on resourceType/resourceID.
func recordRejectedKey(ctx context.Context, rec AuditRecorder, actor audit.Actor, resourceType, resourceID, workflow string, now time.Time) {
	event := audit.NewEvent(actor, audit.CategorySecurity, audit.ActionKeyRejected, now).
		WithSeverity(audit.SeverityWarning).
		WithResource(resourceType, resourceID).
		WithDescription("admin key rejected for " + workflow)
	recordAudit(ctx, rec, event)
	slog.Info("security_event", "event", "admin_key_rejected", "workflow", workflow, "resource_id", resourceID, "actor", actor.Email)
}
