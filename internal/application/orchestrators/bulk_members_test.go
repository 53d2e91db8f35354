package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/member"
)

func bulkDeps(t *testing.T, ms *mockMemberStore, ns *mockNoteStore, rec *mockAudit) BulkMembersDeps {
	return BulkMembersDeps{
		MemberStore: ms,
		NoteStore:   ns,
		AdminStore: newMockAdminStore(
			admin.Admin{ID: "admin-1", Name: "Ade"},
			admin.Admin{ID: "admin-2", Name: "Bola"},
		),
		AdminKey: testKey(t),
		Audit:    rec,
		Now:      fixedNow,
	}
}

func threeMembers() *mockMemberStore {
	return newMockMemberStore(
		testMember("m-1", "Jane", "admin-1"),
		testMember("m-2", "John", "admin-1"),
		testMember("m-3", "Mary", ""),
	)
}

// TestExecuteBulkReassign_WrongKey tests that a mismatched key updates nothing.
func TestExecuteBulkReassign_WrongKey(t *testing.T) {
	ms := threeMembers()
	rec := &mockAudit{}

	_, _, err := ExecuteBulkReassign(context.Background(), BulkMembersInput{
		MemberIDs: []string{"m-1", "m-2", "m-3"}, TargetAdminID: "admin-2", AdminKey: "guess",
	}, bulkDeps(t, ms, newMockNoteStore(), rec))
	if !errors.Is(err, ErrReassignmentCancelled) {
		t.Fatalf("err = %v, want ErrReassignmentCancelled", err)
	}
	if ms.adminUpdates != 0 {
		t.Errorf("adminUpdates = %d, want 0", ms.adminUpdates)
	}
	if rec.count(audit.ActionKeyRejected) != 1 {
		t.Errorf("expected one rejected-key audit event, got %d", rec.count(audit.ActionKeyRejected))
	}
}

// TestExecuteBulkReassign_Success tests every selected member moves, including
// one already on the target.
func TestExecuteBulkReassign_Success(t *testing.T) {
	ms := threeMembers()
	ms.members["m-2"] = testMember("m-2", "John", "admin-2")

	res, name, err := ExecuteBulkReassign(context.Background(), BulkMembersInput{
		MemberIDs: []string{"m-1", "m-2", "m-3", "m-1"}, TargetAdminID: "admin-2", AdminKey: testSecret,
	}, bulkDeps(t, ms, newMockNoteStore(), &mockAudit{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Bola" {
		t.Errorf("target name = %q, want Bola", name)
	}
	if len(res.Succeeded) != 3 || len(res.Failed) != 0 {
		t.Fatalf("result = %+v", res)
	}
	for _, id := range []string{"m-1", "m-2", "m-3"} {
		if ms.members[id].AdminID != "admin-2" {
			t.Errorf("%s AdminID = %q, want admin-2", id, ms.members[id].AdminID)
		}
	}
}

// TestExecuteBulkReassign_Preconditions tests the empty selection and target checks.
func TestExecuteBulkReassign_Preconditions(t *testing.T) {
	ms := threeMembers()
	deps := bulkDeps(t, ms, newMockNoteStore(), &mockAudit{})

	if _, _, err := ExecuteBulkReassign(context.Background(), BulkMembersInput{MemberIDs: []string{" "}, TargetAdminID: "admin-2", AdminKey: testSecret}, deps); !errors.Is(err, ErrNoSelection) {
		t.Errorf("empty selection: err = %v", err)
	}
	if _, _, err := ExecuteBulkReassign(context.Background(), BulkMembersInput{MemberIDs: []string{"m-1"}, AdminKey: testSecret}, deps); !errors.Is(err, ErrNoTargetAdmin) {
		t.Errorf("no target: err = %v", err)
	}
	if ms.writes() != 0 {
		t.Errorf("expected no writes, got %d", ms.writes())
	}
}

// TestExecuteBulkDelete_PartialFailure tests that one failure is named and
// the rest are still deleted.
func TestExecuteBulkDelete_PartialFailure(t *testing.T) {
	ms := threeMembers()
	ms.failDelete["m-2"] = errors.New("database is locked")
	ns := newMockNoteStore()

	res, err := ExecuteBulkDelete(context.Background(), BulkMembersInput{
		MemberIDs: []string{"m-1", "m-2", "m-3", "ghost"}, AdminKey: testSecret,
	}, bulkDeps(t, ms, ns, &mockAudit{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(res.Succeeded, ",") != "m-1,m-3" {
		t.Errorf("Succeeded = %v, want [m-1 m-3]", res.Succeeded)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("Failed = %+v, want 2 entries", res.Failed)
	}
	if res.Failed[0].Name != "John" {
		t.Errorf("first failure = %+v, want John", res.Failed[0])
	}
	if res.Failed[1].MemberID != "ghost" || !errors.Is(res.Failed[1].Err, member.ErrNotFound) {
		t.Errorf("second failure = %+v, want ghost not found", res.Failed[1])
	}
	if !res.Partial() {
		t.Error("expected Partial() to be true")
	}
	if _, ok := ms.members["m-2"]; !ok {
		t.Error("m-2 should survive its failed delete")
	}
	if len(ms.members) != 1 {
		t.Errorf("members left = %d, want 1", len(ms.members))
	}
}

// TestExecuteBulkDelete_WrongKey tests that nothing is deleted.
func TestExecuteBulkDelete_WrongKey(t *testing.T) {
	ms := threeMembers()
	ns := newMockNoteStore()

	_, err := ExecuteBulkDelete(context.Background(), BulkMembersInput{
		MemberIDs: []string{"m-1", "m-2"}, AdminKey: "",
	}, bulkDeps(t, ms, ns, &mockAudit{}))
	if !errors.Is(err, ErrDeletionCancelled) {
		t.Fatalf("err = %v, want ErrDeletionCancelled", err)
	}
	if ms.deletes != 0 || ns.deletes != 0 {
		t.Errorf("deletes member=%d notes=%d, want 0", ms.deletes, ns.deletes)
	}
}
