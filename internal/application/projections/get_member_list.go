package projections

import (
	"context"

	adminStore "chemistmap/internal/adapters/storage/admin"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/application/listutil"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/member"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	listutil.ListParams
}

// MemberRow is a member with its admin's display name.
type MemberRow struct {
	member.Member
	AdminName string // empty when unassigned or the admin is gone
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberRow
	Page    listutil.PageInfo
	Admins  []admin.Admin // every admin, for the filter and reassign selectors
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
	AdminStore  AdminStore
}

// QueryGetMemberList retrieves one page of members matching the search and
// admin filter, newest first.
// PRE: Valid query parameters
// POST: Page is clamped to the last page; Total is the exact filtered count
// INVARIANT: No writes
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	filter := memberStore.ListFilter{Search: query.Search, AdminID: query.AdminID}

	total, err := deps.MemberStore.Count(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)

	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, err
	}

	admins, err := deps.AdminStore.List(ctx, adminStore.ListFilter{})
	if err != nil {
		return GetMemberListResult{}, err
	}

	return GetMemberListResult{
		Members: decorateMembers(members, adminNames(admins)),
		Page:    page,
		Admins:  admins,
	}, nil
}

func decorateMembers(members []member.Member, names map[string]string) []MemberRow {
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, MemberRow{Member: m, AdminName: names[m.AdminID]})
	}
	return rows
}
