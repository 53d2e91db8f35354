package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/audit"
)

// AdminStoreForOrchestrator defines the store interface needed by admin orchestrators.
type AdminStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (admin.Admin, error)
	GetByEmail(ctx context.Context, email string) (admin.Admin, error)
	Insert(ctx context.Context, a admin.Admin) error
	Update(ctx context.Context, a admin.Admin) error
	Delete(ctx context.Context, id string) error
}

// --- Add Admin ---

// AddAdminInput carries input for the add admin orchestrator.
type AddAdminInput struct {
	Name  string
	Email string
}

// AddAdminDeps holds dependencies for AddAdmin.
type AddAdminDeps struct {
	AdminStore AdminStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteAddAdmin validates and inserts a new admin.
// PRE: none
// POST: On success one admin row is inserted
// INVARIANT: No insert when the email is already used by another admin
func ExecuteAddAdmin(ctx context.Context, input AddAdminInput, deps AddAdminDeps) (admin.Admin, error) {
	now := deps.Now()
	a := admin.Admin{Name: input.Name, Email: input.Email, CreatedAt: now, UpdatedAt: now}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return admin.Admin{}, err
	}

	if _, err := deps.AdminStore.GetByEmail(ctx, a.Email); err == nil {
		return admin.Admin{}, admin.ErrEmailTaken
	} else if !errors.Is(err, admin.ErrNotFound) {
		return admin.Admin{}, err
	}

	a.ID = deps.GenerateID()
	if err := deps.AdminStore.Insert(ctx, a); err != nil {
		return admin.Admin{}, err
	}

	slog.Info("admin_event", "event", "admin_added", "admin_id", a.ID)
	return a, nil
}

// --- Edit Admin ---

// EditAdminInput carries input for the edit admin orchestrator.
type EditAdminInput struct {
	AdminID string
	Name    string
	Email   string
}

// EditAdminDeps holds dependencies for EditAdmin.
type EditAdminDeps struct {
	AdminStore AdminStoreForOrchestrator
	Now        func() time.Time
}

// ExecuteEditAdmin replaces the name and email of an existing admin.
// PRE: AdminID names an existing admin
// POST: name, email and updated_at are written by id
// INVARIANT: The new email may not belong to a different admin
func ExecuteEditAdmin(ctx context.Context, input EditAdminInput, deps EditAdminDeps) (admin.Admin, error) {
	a, err := deps.AdminStore.GetByID(ctx, input.AdminID)
	if err != nil {
		return admin.Admin{}, err
	}

	a.Name = input.Name
	a.Email = input.Email
	a.Normalize()
	if err := a.Validate(); err != nil {
		return admin.Admin{}, err
	}

	if other, err := deps.AdminStore.GetByEmail(ctx, a.Email); err == nil && other.ID != a.ID {
		return admin.Admin{}, admin.ErrEmailTaken
	} else if err != nil && !errors.Is(err, admin.ErrNotFound) {
		return admin.Admin{}, err
	}

	a.UpdatedAt = deps.Now()
	if err := deps.AdminStore.Update(ctx, a); err != nil {
		return admin.Admin{}, err
	}

	slog.Info("admin_event", "event", "admin_updated", "admin_id", a.ID)
	return a, nil
}

// --- Delete Admin ---

// DeleteAdminInput carries input for the delete admin orchestrator.
type DeleteAdminInput struct {
	AdminID  string
	AdminKey string
	Actor    audit.Actor
}

// DeleteAdminDeps holds dependencies for DeleteAdmin.
type DeleteAdminDeps struct {
	AdminStore AdminStoreForOrchestrator
	AdminKey   adminkey.Key
	Audit      AuditRecorder
	Now        func() time.Time
}

// ExecuteDeleteAdmin removes an admin that has no members.
// PRE: AdminID names an existing admin
// POST: The admin row is deleted
// INVARIANT: Nothing is written when the admin still has members or the key
// does not match; the member check runs before the key is asked for
func ExecuteDeleteAdmin(ctx context.Context, input DeleteAdminInput, deps DeleteAdminDeps) (admin.Admin, error) {
	a, err := deps.AdminStore.GetByID(ctx, input.AdminID)
	if err != nil {
		return admin.Admin{}, err
	}
	if err := a.CanDelete(); err != nil {
		return admin.Admin{}, err
	}

	if err := deps.AdminKey.Verify(input.AdminKey); err != nil {
		recordRejectedKey(ctx, deps.Audit, input.Actor, "admin", a.ID, "delete_admin", deps.Now())
		return admin.Admin{}, ErrDeletionCancelled
	}

	if err := deps.AdminStore.Delete(ctx, a.ID); err != nil {
		return admin.Admin{}, err
	}

	recordAudit(ctx, deps.Audit, audit.NewEvent(input.Actor, audit.CategoryAdmin, audit.ActionDelete, deps.Now()).
		WithResource("admin", a.ID).
		WithDescription("deleted admin " + a.Name))
	slog.Info("admin_event", "event", "admin_deleted", "admin_id", a.ID)
	return a, nil
}
