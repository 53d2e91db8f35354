package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"chemistmap/internal/adapters/http/middleware"
	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/domain/audit"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *loginRequest) bindForm(form url.Values) {
	l.Email = form.Get("email")
	l.Password = form.Get("password")
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/overview", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", 0, nil)
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, "/login")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	observe("login", err)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			status = http.StatusLocked
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "login.html", status, map[string]any{
				"Error": err.Error(),
				"Email": strings.TrimSpace(req.Email),
			})
			return
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		failWorkflow(w, r, err, "/login")
		return
	}
	middleware.SetSessionCookie(w, token)

	actor := audit.Actor{ID: result.AccountID, Email: result.Email, IPAddress: middleware.ClientIP(r), UserAgent: r.UserAgent()}
	recordEvent(r, audit.NewEvent(actor, audit.CategoryAccount, audit.ActionLogin, timeNow()).
		WithResource("account", result.AccountID))

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/overview", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"account_id": result.AccountID, "email": result.Email})
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessions.Delete(sess.Token)
		recordEvent(r, audit.NewEvent(actorFrom(r), audit.CategoryAccount, audit.ActionLogout, timeNow()).
			WithResource("account", sess.AccountID))
	}
	middleware.ClearSessionCookie(w)
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordEvent writes an audit event outside an orchestrator. A failed write
// is logged and never fails the request.
func recordEvent(r *http.Request, event audit.Event) {
	if stores.AuditStore == nil {
		return
	}
	if err := stores.AuditStore.Save(r.Context(), event); err != nil {
		slog.Error("audit_write_failed", "action", event.Action, "resource_id", event.ResourceID, "error", err)
	}
}
