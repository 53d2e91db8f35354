package projections

import (
	"context"

	adminStore "chemistmap/internal/adapters/storage/admin"
	"chemistmap/internal/domain/admin"
)

// GetBulkSelectionResult carries the members picked for a bulk action.
type GetBulkSelectionResult struct {
	Members []MemberRow
	Missing []string // selected ids that no longer exist
	Admins  []admin.Admin
}

// GetBulkSelectionDeps holds dependencies for GetBulkSelection.
type GetBulkSelectionDeps struct {
	MemberStore MemberStore
	AdminStore  AdminStore
}

// QueryGetBulkSelection resolves selected member ids for review before a
// bulk delete or reassign.
// POST: Members keep selection order; unknown ids are listed in Missing
func QueryGetBulkSelection(ctx context.Context, ids []string, deps GetBulkSelectionDeps) (GetBulkSelectionResult, error) {
	members, err := deps.MemberStore.ListByIDs(ctx, ids)
	if err != nil {
		return GetBulkSelectionResult{}, err
	}
	admins, err := deps.AdminStore.List(ctx, adminStore.ListFilter{})
	if err != nil {
		return GetBulkSelectionResult{}, err
	}
	found := make(map[string]bool, len(members))
	for _, m := range members {
		found[m.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
			found[id] = true
		}
	}
	return GetBulkSelectionResult{
		Members: decorateMembers(members, adminNames(admins)),
		Missing: missing,
		Admins:  admins,
	}, nil
}
