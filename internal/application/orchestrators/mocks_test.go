package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	emailAdapter "chemistmap/internal/adapters/email"
	adminStore "chemistmap/internal/adapters/storage/admin"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/domain/account"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/broadcast"
	"chemistmap/internal/domain/member"
	"chemistmap/internal/domain/note"
)

// mockMemberStore is a map-backed member store that counts writes and can
// inject failures per member id.
type mockMemberStore struct {
	members         map[string]member.Member
	lookupErr       error
	failDelete      map[string]error
	failUpdateAdmin map[string]error
	failUpdateNotes error

	inserts      int
	deletes      int
	adminUpdates int
	noteUpdates  int
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{
		members:         make(map[string]member.Member),
		failDelete:      make(map[string]error),
		failUpdateAdmin: make(map[string]error),
	}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

func (s *mockMemberStore) writes() int {
	return s.inserts + s.deletes + s.adminUpdates + s.noteUpdates
}

func (s *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (s *mockMemberStore) GetByEmail(_ context.Context, email string) (member.Member, error) {
	if s.lookupErr != nil {
		return member.Member{}, s.lookupErr
	}
	for _, m := range s.members {
		if m.Email == email {
			return m, nil
		}
	}
	return member.Member{}, fmt.Errorf("%w: no rows", member.ErrNotFound)
}

func (s *mockMemberStore) GetByPhone(_ context.Context, phone string) (member.Member, error) {
	for _, m := range s.members {
		if m.Phone == phone {
			return m, nil
		}
	}
	return member.Member{}, fmt.Errorf("%w: no rows", member.ErrNotFound)
}

func (s *mockMemberStore) Insert(_ context.Context, m member.Member) error {
	s.inserts++
	s.members[m.ID] = m
	return nil
}

func (s *mockMemberStore) ListByIDs(_ context.Context, ids []string) ([]member.Member, error) {
	var out []member.Member
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *mockMemberStore) List(_ context.Context, f memberStore.ListFilter) ([]member.Member, error) {
	var out []member.Member
	for _, m := range s.members {
		if f.ReminderOnly && m.Reminder != member.AnswerYes {
			continue
		}
		if f.AdminID != "" && m.AdminID != f.AdminID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *mockMemberStore) UpdateAdmin(_ context.Context, id, adminID string, now time.Time) error {
	if err := s.failUpdateAdmin[id]; err != nil {
		return err
	}
	m, ok := s.members[id]
	if !ok {
		return member.ErrNotFound
	}
	s.adminUpdates++
	m.AdminID = adminID
	m.UpdatedAt = now
	s.members[id] = m
	return nil
}

func (s *mockMemberStore) UpdateNotes(_ context.Context, id, notes string, now time.Time) error {
	if s.failUpdateNotes != nil {
		return s.failUpdateNotes
	}
	m, ok := s.members[id]
	if !ok {
		return member.ErrNotFound
	}
	s.noteUpdates++
	m.Notes = notes
	m.UpdatedAt = now
	s.members[id] = m
	return nil
}

func (s *mockMemberStore) Delete(_ context.Context, id string) error {
	if err := s.failDelete[id]; err != nil {
		return err
	}
	s.deletes++
	delete(s.members, id)
	return nil
}

// mockAdminStore is a map-backed admin store. MembersCount is taken as stored.
type mockAdminStore struct {
	admins map[string]admin.Admin
	writes int
}

func newMockAdminStore(as ...admin.Admin) *mockAdminStore {
	s := &mockAdminStore{admins: make(map[string]admin.Admin)}
	for _, a := range as {
		s.admins[a.ID] = a
	}
	return s
}

func (s *mockAdminStore) GetByID(_ context.Context, id string) (admin.Admin, error) {
	a, ok := s.admins[id]
	if !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	return a, nil
}

func (s *mockAdminStore) GetByEmail(_ context.Context, email string) (admin.Admin, error) {
	for _, a := range s.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return admin.Admin{}, fmt.Errorf("%w: no rows", admin.ErrNotFound)
}

func (s *mockAdminStore) Insert(_ context.Context, a admin.Admin) error {
	s.writes++
	s.admins[a.ID] = a
	return nil
}

func (s *mockAdminStore) Update(_ context.Context, a admin.Admin) error {
	if _, ok := s.admins[a.ID]; !ok {
		return admin.ErrNotFound
	}
	s.writes++
	s.admins[a.ID] = a
	return nil
}

func (s *mockAdminStore) Count(_ context.Context, _ adminStore.ListFilter) (int, error) {
	return len(s.admins), nil
}

func (s *mockAdminStore) Delete(_ context.Context, id string) error {
	s.writes++
	delete(s.admins, id)
	return nil
}

// mockNoteStore keeps notes in insertion order.
type mockNoteStore struct {
	notes      []note.MemberNote
	failDelete map[string]error
	deletes    int
}

func newMockNoteStore() *mockNoteStore {
	return &mockNoteStore{failDelete: make(map[string]error)}
}

func (s *mockNoteStore) Insert(_ context.Context, n note.MemberNote) error {
	s.notes = append(s.notes, n)
	return nil
}

func (s *mockNoteStore) DeleteByMember(_ context.Context, memberID string) error {
	if err := s.failDelete[memberID]; err != nil {
		return err
	}
	s.deletes++
	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.MemberID != memberID {
			kept = append(kept, n)
		}
	}
	s.notes = kept
	return nil
}

func (s *mockNoteStore) forMember(memberID string) []note.MemberNote {
	var out []note.MemberNote
	for i := len(s.notes) - 1; i >= 0; i-- {
		if s.notes[i].MemberID == memberID {
			out = append(out, s.notes[i])
		}
	}
	return out
}

// mockAudit records saved events.
type mockAudit struct {
	events []audit.Event
}

func (a *mockAudit) Save(_ context.Context, e audit.Event) error {
	a.events = append(a.events, e)
	return nil
}

func (a *mockAudit) count(action audit.Action) int {
	n := 0
	for _, e := range a.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

// mockAccountStore implements the account store interfaces.
type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (s *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("account not found")
}

func (s *mockAccountStore) Save(_ context.Context, a account.Account) error {
	s.accounts[a.ID] = a
	return nil
}

func (s *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(s.accounts), nil
}

// mockSender records requests and fails every request from index failFrom on.
type mockSender struct {
	sent     []emailAdapter.SendRequest
	failFrom int // -1 never fails
}

func (s *mockSender) Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	res, err := s.SendBatch(ctx, []emailAdapter.SendRequest{req})
	if err != nil {
		return emailAdapter.SendResult{}, err
	}
	return res[0], nil
}

func (s *mockSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	var results []emailAdapter.SendResult
	for i, r := range reqs {
		if s.failFrom >= 0 && i >= s.failFrom {
			return results, errors.New("provider rejected batch")
		}
		s.sent = append(s.sent, r)
		results = append(results, emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", i), SentAt: fixedTime})
	}
	return results, nil
}

// mockBroadcastStore records saved broadcasts.
type mockBroadcastStore struct {
	saved []broadcast.Broadcast
}

func (s *mockBroadcastStore) Save(_ context.Context, b broadcast.Broadcast) error {
	s.saved = append(s.saved, b)
	return nil
}

// testMember returns a valid stored member.
func testMember(id, name, adminID string) member.Member {
	return member.Member{
		ID:                 id,
		FullName:           name,
		Phone:              "phone-" + id,
		Email:              id + "@example.com",
		AdminID:            adminID,
		Address:            "12 Palm Avenue",
		RelationshipStatus: member.RelationshipSingle,
		Occupation:         "Nurse",
		ServiceUnitStatus:  member.AnswerNo,
		Reminder:           member.AnswerYes,
		Gender:             member.GenderFemale,
		Birthday:           "03/14",
		CreatedAt:          fixedTime,
		UpdatedAt:          fixedTime,
	}
}
