package browser_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"chemistmap/internal/adapters/email"
	web "chemistmap/internal/adapters/http"
	"chemistmap/internal/adapters/storage"
	accountStore "chemistmap/internal/adapters/storage/account"
	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	broadcastStore "chemistmap/internal/adapters/storage/broadcast"
	memberStore "chemistmap/internal/adapters/storage/member"
	noteStore "chemistmap/internal/adapters/storage/note"
	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/member"
)

const (
	operatorEmail    = "operator@test.com"
	operatorPassword = "TestPass123!long"
	testAdminKey     = "browser-admin-key"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:   acctStore,
		AdminStore:     adminStore.NewSQLiteStore(db),
		MemberStore:    memberStore.NewSQLiteStore(db),
		NoteStore:      noteStore.NewSQLiteStore(db),
		BroadcastStore: broadcastStore.NewSQLiteStore(db),
		AuditStore:     auditStore.NewSQLiteStore(db),
	}

	ctx := context.Background()
	err = orchestrators.ExecuteSeedOperator(ctx, orchestrators.CreateAccountDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}, operatorEmail, operatorPassword)
	if err != nil {
		t.Fatalf("failed to seed operator: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	key, err := adminkey.New(testAdminKey)
	if err != nil {
		t.Fatalf("admin key: %v", err)
	}
	csrfKey := make([]byte, 32)
	if _, err := rand.Read(csrfKey); err != nil {
		t.Fatalf("csrf key: %v", err)
	}

	web.SetEmailSender(email.NewNoopSender(), "Chemist MAP <noreply@test.com>", "")
	mux := web.NewMux(stores, web.Options{
		AdminKey: key,
		CSRFKey:  csrfKey,
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in as the seeded operator and waits for the overview.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(operatorEmail); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(operatorPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/overview", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to overview: %v", err)
	}
}

// seedAdmin inserts an admin directly through the store.
func (a *testApp) seedAdmin(t *testing.T, id, name, mail string) {
	t.Helper()
	now := time.Now().UTC()
	err := a.Stores.AdminStore.Insert(context.Background(), admin.Admin{
		ID: id, Name: name, Email: mail, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed admin %s: %v", id, err)
	}
}

// seedMember inserts a member directly through the store.
func (a *testApp) seedMember(t *testing.T, id, name, phone, adminID string) {
	t.Helper()
	now := time.Now().UTC()
	err := a.Stores.MemberStore.Insert(context.Background(), member.Member{
		ID:                 id,
		FullName:           name,
		Phone:              phone,
		Email:              id + "@example.com",
		AdminID:            adminID,
		Address:            "1 Church Road",
		RelationshipStatus: member.RelationshipSingle,
		Occupation:         "Engineer",
		ServiceUnitStatus:  member.AnswerNo,
		Reminder:           member.AnswerYes,
		Gender:             member.GenderMale,
		Birthday:           member.Birthday(7, 4),
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
}
