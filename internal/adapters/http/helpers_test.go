package web

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"chemistmap/internal/adapters/email"
	"chemistmap/internal/adapters/http/metrics"
	"chemistmap/internal/adapters/http/middleware"
	"chemistmap/internal/adapters/storage"
	accountStore "chemistmap/internal/adapters/storage/account"
	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	broadcastStore "chemistmap/internal/adapters/storage/broadcast"
	memberStore "chemistmap/internal/adapters/storage/member"
	noteStore "chemistmap/internal/adapters/storage/note"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/member"

	_ "modernc.org/sqlite"
)

const testAdminKey = "correct-horse"

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// testEnv is a wired package state backed by an in-memory database.
type testEnv struct {
	db      *sql.DB
	sender  *email.NoopSender
	session middleware.Session
}

// newTestEnv migrates an in-memory database, points the package globals at
// it and signs in one operator.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stores = &Stores{
		AccountStore:   accountStore.NewSQLiteStore(db),
		AdminStore:     adminStore.NewSQLiteStore(db),
		MemberStore:    memberStore.NewSQLiteStore(db),
		NoteStore:      noteStore.NewSQLiteStore(db),
		BroadcastStore: broadcastStore.NewSQLiteStore(db),
		AuditStore:     auditStore.NewSQLiteStore(db),
	}
	sessions = middleware.NewSessionStore()
	key, err := adminkey.New(testAdminKey)
	if err != nil {
		t.Fatalf("admin key: %v", err)
	}
	adminKey = key
	appMetrics = metrics.New()
	perfCollector = nil
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = time.Now })

	sender := email.NewNoopSender()
	SetEmailSender(sender, "Chemist MAP <noreply@chemistmap.org>", "")

	token, err := sessions.Create("acct-1", "operator@chemistmap.org", "operator")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	sess, _ := sessions.Get(token)
	return &testEnv{db: db, sender: sender, session: sess}
}

func (e *testEnv) addAdmin(t *testing.T, id, name, mail string) {
	t.Helper()
	err := stores.AdminStore.Insert(context.Background(), admin.Admin{
		ID: id, Name: name, Email: mail, CreatedAt: testNow, UpdatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("insert admin %s: %v", id, err)
	}
}

func (e *testEnv) addMember(t *testing.T, id, name, adminID string) {
	t.Helper()
	n := len(id)
	err := stores.MemberStore.Insert(context.Background(), member.Member{
		ID:                 id,
		FullName:           name,
		Phone:              fmt.Sprintf("0801%07d", hash(id)),
		Email:              strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		AdminID:            adminID,
		Address:            "1 Church Road",
		RelationshipStatus: member.RelationshipSingle,
		Occupation:         "Teacher",
		ServiceUnitStatus:  member.AnswerNo,
		Reminder:           member.AnswerYes,
		Gender:             member.GenderFemale,
		Birthday:           member.Birthday(3, n%28+1),
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	})
	if err != nil {
		t.Fatalf("insert member %s: %v", id, err)
	}
}

func hash(s string) int {
	h := 0
	for _, c := range s {
		h = h*31 + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h % 10000000
}

func (e *testEnv) member(t *testing.T, id string) (member.Member, bool) {
	t.Helper()
	m, err := stores.MemberStore.GetByID(context.Background(), id)
	if err != nil {
		return member.Member{}, false
	}
	return m, true
}

func (e *testEnv) countAudit(t *testing.T, action audit.Action) int {
	t.Helper()
	events, err := stores.AuditStore.List(context.Background(), auditStore.Filter{Action: &action}, 100)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	return len(events)
}

// formRequest builds a signed-in urlencoded POST that prefers HTML.
func (e *testEnv) formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return req.WithContext(middleware.ContextWithSession(req.Context(), e.session))
}

// jsonRequest builds a signed-in request with a JSON body and JSON response.
func (e *testEnv) jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req.WithContext(middleware.ContextWithSession(req.Context(), e.session))
}

// htmlGet builds a signed-in GET that prefers HTML.
func (e *testEnv) htmlGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	return req.WithContext(middleware.ContextWithSession(req.Context(), e.session))
}

// serve routes req through the registered mux so path values are set.
func serve(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	registerRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) flash(t *testing.T) middleware.Flash {
	t.Helper()
	f, ok := sessions.TakeFlash(e.session.Token)
	if !ok {
		t.Fatal("expected a flash message")
	}
	return f
}
