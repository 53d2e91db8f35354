package projections

import (
	"context"
	"sort"
	"strings"

	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/broadcast"
	"chemistmap/internal/domain/member"
	"chemistmap/internal/domain/note"
)

// stubMemberStore filters an in-memory slice the way the SQLite store does.
type stubMemberStore struct {
	members []member.Member // newest first
	reads   int
}

func (s *stubMemberStore) match(f memberStore.ListFilter) []member.Member {
	var out []member.Member
	for _, m := range s.members {
		if f.Search != "" && !strings.Contains(strings.ToLower(m.FullName), strings.ToLower(f.Search)) {
			continue
		}
		if f.AdminID != "" && m.AdminID != f.AdminID {
			continue
		}
		if f.ReminderOnly && m.Reminder != member.AnswerYes {
			continue
		}
		if f.BirthMonth != 0 && m.BirthMonth() != f.BirthMonth {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *stubMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	s.reads++
	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (s *stubMemberStore) List(_ context.Context, f memberStore.ListFilter) ([]member.Member, error) {
	s.reads++
	out := s.match(f)
	if f.Offset > len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *stubMemberStore) Count(_ context.Context, f memberStore.ListFilter) (int, error) {
	s.reads++
	return len(s.match(f)), nil
}

func (s *stubMemberStore) ListByIDs(_ context.Context, ids []string) ([]member.Member, error) {
	var out []member.Member
	for _, id := range ids {
		for _, m := range s.members {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *stubMemberStore) CountUnassigned(_ context.Context) (int, error) {
	n := 0
	for _, m := range s.members {
		if !m.IsAssigned() {
			n++
		}
	}
	return n, nil
}

// stubAdminStore derives MembersCount from an optional member store.
type stubAdminStore struct {
	admins  []admin.Admin
	members *stubMemberStore
	reads   int
}

func (s *stubAdminStore) withCounts(a admin.Admin) admin.Admin {
	if s.members == nil {
		return a
	}
	a.MembersCount = 0
	for _, m := range s.members.members {
		if m.AdminID == a.ID {
			a.MembersCount++
		}
	}
	return a
}

func (s *stubAdminStore) GetByID(_ context.Context, id string) (admin.Admin, error) {
	s.reads++
	for _, a := range s.admins {
		if a.ID == id {
			return s.withCounts(a), nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (s *stubAdminStore) List(_ context.Context, f adminStore.ListFilter) ([]admin.Admin, error) {
	s.reads++
	var out []admin.Admin
	for _, a := range s.admins {
		if f.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, s.withCounts(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if f.Offset > len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *stubAdminStore) Count(ctx context.Context, f adminStore.ListFilter) (int, error) {
	f.Limit, f.Offset = 0, 0
	all, _ := s.List(ctx, f)
	return len(all), nil
}

type stubNoteStore struct {
	notes map[string][]note.MemberNote
}

func (s *stubNoteStore) ListByMember(_ context.Context, memberID string) ([]note.MemberNote, error) {
	return s.notes[memberID], nil
}

type stubBroadcastStore struct {
	recent []broadcast.Broadcast
	limit  int
}

func (s *stubBroadcastStore) ListRecent(_ context.Context, limit int) ([]broadcast.Broadcast, error) {
	s.limit = limit
	return s.recent, nil
}

type stubAuditStore struct {
	events []audit.Event
}

func (s *stubAuditStore) List(_ context.Context, _ auditStore.Filter, limit int) ([]audit.Event, error) {
	if limit < len(s.events) {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func stubMember(id, name, adminID, birthday string) member.Member {
	return member.Member{
		ID:       id,
		FullName: name,
		Email:    id + "@example.com",
		AdminID:  adminID,
		Reminder: member.AnswerYes,
		Birthday: birthday,
	}
}

func fixture() (*stubMemberStore, *stubAdminStore) {
	ms := &stubMemberStore{members: []member.Member{
		stubMember("m-1", "Jane Doe", "admin-1", "03/14"),
		stubMember("m-2", "John Okafor", "admin-1", "07/02"),
		stubMember("m-3", "Mary Ann Bello", "admin-2", "03/05"),
		stubMember("m-4", "Tunde Adeyemi", "", "01/30"),
		stubMember("m-5", "Grace Eze", "", "05/19"),
	}}
	as := &stubAdminStore{
		admins: []admin.Admin{
			{ID: "admin-1", Name: "Pastor Ade", Email: "ade@church.org"},
			{ID: "admin-2", Name: "Sister Bola", Email: "bola@church.org"},
		},
		members: ms,
	}
	return ms, as
}
