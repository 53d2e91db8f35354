package projections

import (
	"context"
	"strings"

	adminStore "chemistmap/internal/adapters/storage/admin"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/broadcast"
)

// RecentBroadcastLimit bounds the comms history shown on the compose page.
const RecentBroadcastLimit = 10

// GetCommsOverviewResult carries the compose page state.
type GetCommsOverviewResult struct {
	AdminID        string
	RecipientCount int
	Admins         []admin.Admin
	Recent         []broadcast.Broadcast
}

// GetCommsOverviewDeps holds dependencies for GetCommsOverview.
type GetCommsOverviewDeps struct {
	MemberStore    MemberStore
	AdminStore     AdminStore
	BroadcastStore BroadcastStore
}

// QueryGetCommsOverview previews the broadcast audience for an optional admin
// filter and lists recent broadcasts.
// POST: RecipientCount counts reminder = yes members that have an email
func QueryGetCommsOverview(ctx context.Context, adminID string, deps GetCommsOverviewDeps) (GetCommsOverviewResult, error) {
	audience, err := deps.MemberStore.List(ctx, memberStore.ListFilter{ReminderOnly: true, AdminID: adminID})
	if err != nil {
		return GetCommsOverviewResult{}, err
	}
	count := 0
	for _, m := range audience {
		if strings.TrimSpace(m.Email) != "" {
			count++
		}
	}

	admins, err := deps.AdminStore.List(ctx, adminStore.ListFilter{})
	if err != nil {
		return GetCommsOverviewResult{}, err
	}
	recent, err := deps.BroadcastStore.ListRecent(ctx, RecentBroadcastLimit)
	if err != nil {
		return GetCommsOverviewResult{}, err
	}

	return GetCommsOverviewResult{
		AdminID:        adminID,
		RecipientCount: count,
		Admins:         admins,
		Recent:         recent,
	}, nil
}
