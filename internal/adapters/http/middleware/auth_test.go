package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSessionStore_Lifecycle covers create, get, expiry and delete.
func TestSessionStore_Lifecycle(t *testing.T) {
	ss := NewSessionStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ss.now = func() time.Time { return now }

	token, err := ss.Create("acct-1", "ops@chemistmap.org", "operator")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sess, ok := ss.Get(token)
	if !ok || sess.Email != "ops@chemistmap.org" || sess.Token != token {
		t.Fatalf("Get = (%+v, %v)", sess, ok)
	}

	now = now.Add(SessionTTL + time.Second)
	if _, ok := ss.Get(token); ok {
		t.Error("expired session should not be returned")
	}

	token, _ = ss.Create("acct-1", "ops@chemistmap.org", "operator")
	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("deleted session should not be returned")
	}
}

// TestSessionStore_Flash verifies a flash is read once.
func TestSessionStore_Flash(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "ops@chemistmap.org", "operator")

	ss.SetFlash(token, Flash{Kind: FlashSuccess, Message: "Member deleted"})
	f, ok := ss.TakeFlash(token)
	if !ok || f.Message != "Member deleted" {
		t.Fatalf("TakeFlash = (%+v, %v)", f, ok)
	}
	if _, ok := ss.TakeFlash(token); ok {
		t.Error("flash should be consumed")
	}

	ss.SetFlash("unknown-token", Flash{Kind: FlashError, Message: "x"})
	if _, ok := ss.TakeFlash("unknown-token"); ok {
		t.Error("flash for unknown session should be dropped")
	}
}

// TestRequireAuth covers the redirect, the JSON 401 and the pass-through.
func TestRequireAuth(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "ops@chemistmap.org", "operator")
	handler := Auth(ss)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := GetSessionFromContext(r.Context())
		w.Write([]byte(sess.Email))
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/members", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("anonymous HTML: status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	req := httptest.NewRequest("GET", "/members", nil)
	req.Header.Set("Accept", "application/json")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous JSON: status=%d, want 401", rr.Code)
	}

	req = httptest.NewRequest("GET", "/members", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "ops@chemistmap.org" {
		t.Errorf("signed in: status=%d body=%q", rr.Code, rr.Body.String())
	}
}
