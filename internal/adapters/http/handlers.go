package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"chemistmap/internal/adapters/email"
	"chemistmap/internal/adapters/http/metrics"
	"chemistmap/internal/adapters/http/middleware"
	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/broadcast"
	"chemistmap/internal/domain/member"
	"chemistmap/internal/domain/note"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// formBinder is a request body that can also arrive as a urlencoded form.
type formBinder interface {
	bindForm(form url.Values)
}

// bindRequest fills v from a JSON body or from the posted form.
func bindRequest(r *http.Request, v formBinder) error {
	if isJSONBody(r) {
		return strictDecode(r, v)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	v.bindForm(r.PostForm)
	return nil
}

func formInt(form url.Values, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(form.Get(key)))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

// statusFor maps a workflow error to the HTTP status a JSON client sees.
// Unclassified errors come from the data store and map to 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, member.ErrMissingRequired),
		errors.Is(err, admin.ErrMissingRequired),
		errors.Is(err, admin.ErrInvalidEmail),
		errors.Is(err, note.ErrEmptyMemberID),
		errors.Is(err, note.ErrEmptyAdminID),
		errors.Is(err, note.ErrEmptyBody),
		errors.Is(err, broadcast.ErrEmptySubject),
		errors.Is(err, broadcast.ErrEmptyBody),
		errors.Is(err, orchestrators.ErrNoTargetAdmin),
		errors.Is(err, orchestrators.ErrNoSelection):
		return http.StatusBadRequest
	case errors.Is(err, adminkey.ErrIncorrect):
		return http.StatusForbidden
	case errors.Is(err, member.ErrNotFound), errors.Is(err, admin.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, member.ErrEmailTaken),
		errors.Is(err, member.ErrPhoneTaken),
		errors.Is(err, admin.ErrEmailTaken),
		errors.Is(err, admin.ErrHasMembers),
		errors.Is(err, orchestrators.ErrSameAdmin),
		errors.Is(err, broadcast.ErrNoRecipients):
		return http.StatusConflict
	case errors.Is(err, email.ErrNoRecipients), errors.Is(err, email.ErrNoSubject):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// outcomeFor classifies a workflow result for the workflow counter.
func outcomeFor(err error) string {
	var wfErr *orchestrators.WorkflowError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &wfErr) && wfErr.Partial():
		return metrics.OutcomePartial
	case statusFor(err) < http.StatusInternalServerError:
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

func observe(workflow string, err error) {
	appMetrics.ObserveWorkflow(workflow, outcomeFor(err))
}

func observeBulk(workflow string, result orchestrators.BulkResult, err error) {
	switch {
	case err != nil:
		observe(workflow, err)
	case result.Partial():
		appMetrics.ObserveWorkflow(workflow, metrics.OutcomePartial)
	case len(result.Failed) > 0:
		appMetrics.ObserveWorkflow(workflow, metrics.OutcomeFailed)
	default:
		appMetrics.ObserveWorkflow(workflow, metrics.OutcomeOK)
	}
}

// failWorkflow reports err to the client: HTML clients get a flash message
// and a redirect to back, JSON clients get the mapped status and message.
// Store errors are surfaced with their original message.
func failWorkflow(w http.ResponseWriter, r *http.Request, err error, back string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
	}
	if isHTMLRequest(r) {
		flash(r, middleware.FlashError, err.Error())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// succeed reports a completed mutation: HTML clients get a flash message and
// a redirect to back, JSON clients get status and body.
func succeed(w http.ResponseWriter, r *http.Request, message, back string, status int, body any) {
	if isHTMLRequest(r) {
		flash(r, middleware.FlashSuccess, message)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, r *http.Request, back string) {
	if isHTMLRequest(r) {
		flash(r, middleware.FlashError, "invalid form submission")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
}

func flash(r *http.Request, kind, message string) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessions.SetFlash(sess.Token, middleware.Flash{Kind: kind, Message: message})
	}
}

// returnTo reads the return_to form value and accepts it only as a local
// path; anything else yields fallback.
func returnTo(r *http.Request, fallback string) string {
	target := r.FormValue("return_to")
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return target
}

// actorFrom identifies the signed-in operator for audit events.
func actorFrom(r *http.Request) audit.Actor {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return audit.Actor{
		ID:        sess.AccountID,
		Email:     sess.Email,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// renderTemplate renders templates/<name> inside the layout. status 0 means 200.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, status int, data map[string]any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	if data == nil {
		data = map[string]any{}
	}
	if loggedIn {
		if f, ok := sessions.TakeFlash(sess.Token); ok {
			data["Flash"] = f
		}
	}
	data["RequestPath"] = r.URL.RequestURI()

	funcMap := template.FuncMap{
		"currentEmail": func() string { return sess.Email },
		"isLoggedIn":   func() bool { return loggedIn },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": func(md string) template.HTML {
			html, err := orchestrators.RenderMarkdown(md)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(html)
		},
		"add":       func(a, b int) int { return a + b },
		"seq":       seq,
		"date":      func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
		"pageQuery": pageQuery,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets,
		"templates/layout.html", "templates/partials.html", "templates/"+name)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != 0 {
		w.WriteHeader(status)
	}
	if err := tpl.Execute(w, data); err != nil {
		slog.Error("internal_error", "template", name, "error", err.Error())
	}
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// pageQuery builds the query string for a pagination link. prev_q and
// prev_admin carry the applied filter so the page index is kept.
func pageQuery(page, perPage int, search, adminID string) template.URL {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if search != "" {
		q.Set("q", search)
	}
	if adminID != "" {
		q.Set("admin", adminID)
	}
	q.Set("prev_q", search)
	q.Set("prev_admin", adminID)
	return template.URL(q.Encode())
}

// notFound writes a 404 in the negotiated format.
func notFound(w http.ResponseWriter, r *http.Request, what string) {
	if isHTMLRequest(r) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("%s not found", what)})
}
