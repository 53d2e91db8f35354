package projections

import (
	"context"

	adminStore "chemistmap/internal/adapters/storage/admin"
	"chemistmap/internal/application/listutil"
	"chemistmap/internal/domain/admin"
)

// GetAdminListQuery carries query parameters. AdminID is ignored.
type GetAdminListQuery struct {
	listutil.ListParams
}

// GetAdminListResult carries the query result.
type GetAdminListResult struct {
	Admins []admin.Admin
	Page   listutil.PageInfo
}

// GetAdminListDeps holds dependencies for GetAdminList.
type GetAdminListDeps struct {
	AdminStore AdminStore
}

// QueryGetAdminList retrieves one page of admins with their member counts.
// PRE: Valid query parameters
// POST: Each admin carries MembersCount computed at read time
func QueryGetAdminList(ctx context.Context, query GetAdminListQuery, deps GetAdminListDeps) (GetAdminListResult, error) {
	filter := adminStore.ListFilter{Search: query.Search}
	total, err := deps.AdminStore.Count(ctx, filter)
	if err != nil {
		return GetAdminListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)

	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	admins, err := deps.AdminStore.List(ctx, filter)
	if err != nil {
		return GetAdminListResult{}, err
	}
	return GetAdminListResult{Admins: admins, Page: page}, nil
}

// QueryGetAdminDraft loads an admin for the edit form.
// POST: Returns the stored admin
// INVARIANT: No writes, however often it is called
func QueryGetAdminDraft(ctx context.Context, adminID string, deps GetAdminListDeps) (admin.Admin, error) {
	return deps.AdminStore.GetByID(ctx, adminID)
}
