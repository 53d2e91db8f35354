package projections

import (
	"context"
	"time"

	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/member"
)

// RecentActivityLimit bounds the activity feed on the dashboard.
const RecentActivityLimit = 8

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	MemberStore MemberStore
	AdminStore  AdminStore
	AuditStore  AuditStore // optional: nil skips the activity feed
	Now         func() time.Time
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	TotalMembers   int
	TotalAdmins    int
	AverageMembers float64
	Unassigned     int
	Month          time.Month
	BirthdaysMonth []member.Member
	RecentActivity []audit.Event
}

// QueryGetDashboard computes the overview counters.
// PRE: Stores are available
// POST: AverageMembers has one decimal place and is 0 without admins
// INVARIANT: No writes
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	var result DashboardResult
	var err error

	if result.TotalMembers, err = deps.MemberStore.Count(ctx, memberStore.ListFilter{}); err != nil {
		return DashboardResult{}, err
	}
	if result.TotalAdmins, err = deps.AdminStore.Count(ctx, adminStore.ListFilter{}); err != nil {
		return DashboardResult{}, err
	}
	result.AverageMembers = admin.AverageMembers(result.TotalMembers, result.TotalAdmins)

	if result.Unassigned, err = deps.MemberStore.CountUnassigned(ctx); err != nil {
		return DashboardResult{}, err
	}

	result.Month = deps.Now().Month()
	if result.BirthdaysMonth, err = deps.MemberStore.List(ctx, memberStore.ListFilter{BirthMonth: int(result.Month)}); err != nil {
		return DashboardResult{}, err
	}

	if deps.AuditStore != nil {
		if result.RecentActivity, err = deps.AuditStore.List(ctx, auditStore.Filter{}, RecentActivityLimit); err != nil {
			return DashboardResult{}, err
		}
	}
	return result, nil
}
