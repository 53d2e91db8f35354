package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/member"
)

// MemberStoreForIntake defines the store interface needed by AddMember.
type MemberStoreForIntake interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	GetByPhone(ctx context.Context, phone string) (member.Member, error)
	Insert(ctx context.Context, m member.Member) error
}

// AdminLookup resolves an admin by id.
type AdminLookup interface {
	GetByID(ctx context.Context, id string) (admin.Admin, error)
}

// AddMemberInput carries input for the add member orchestrator.
type AddMemberInput struct {
	Intake  member.Intake
	AdminID string // optional; always empty for the public form
}

// AddMemberDeps holds dependencies for AddMember.
type AddMemberDeps struct {
	MemberStore MemberStoreForIntake
	AdminStore  AdminLookup
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddMember validates an intake form and inserts the new member.
// PRE: none
// POST: On success exactly one member row is inserted
// INVARIANT: Nothing is written when validation or a uniqueness check fails
func ExecuteAddMember(ctx context.Context, input AddMemberInput, deps AddMemberDeps) (member.Member, error) {
	in := input.Intake
	in.Normalize()
	if err := in.Validate(); err != nil {
		return member.Member{}, err
	}

	// Email first, then phone; each is its own round trip.
	if _, err := deps.MemberStore.GetByEmail(ctx, in.Email); err == nil {
		return member.Member{}, member.ErrEmailTaken
	} else if !errors.Is(err, member.ErrNotFound) {
		return member.Member{}, err
	}
	if _, err := deps.MemberStore.GetByPhone(ctx, in.Phone); err == nil {
		return member.Member{}, member.ErrPhoneTaken
	} else if !errors.Is(err, member.ErrNotFound) {
		return member.Member{}, err
	}

	if input.AdminID != "" {
		if _, err := deps.AdminStore.GetByID(ctx, input.AdminID); err != nil {
			return member.Member{}, err
		}
	}

	m := in.ToMember(deps.GenerateID(), input.AdminID, deps.Now())
	if err := deps.MemberStore.Insert(ctx, m); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_event", "event", "member_added", "member_id", m.ID, "admin_id", m.AdminID)
	return m, nil
}
