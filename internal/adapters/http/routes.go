package web

import (
	"net/http"

	"chemistmap/internal/adapters/http/middleware"
)

// registerRoutes mounts every page and action. Routes wrapped in guard
// require a signed-in operator.
func registerRoutes(mux *http.ServeMux) {
	guard := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.Handle("POST /logout", guard(handleLogout))

	mux.Handle("GET /overview", guard(handleOverview))

	mux.Handle("GET /members", guard(memberListPage(false)))
	mux.Handle("POST /members", guard(handleAddMember))
	mux.Handle("GET /members/follow-up", guard(memberListPage(true)))
	mux.Handle("GET /members/{id}/notes", guard(handleNoteHistory))
	mux.Handle("POST /members/{id}/notes", guard(handleAddNote))
	mux.Handle("POST /members/{id}/reassign", guard(handleReassignMember))
	mux.Handle("POST /members/{id}/delete", guard(handleDeleteMember))
	mux.Handle("POST /members/bulk/review", guard(handleBulkReview))
	mux.Handle("POST /members/bulk/delete", guard(handleBulkDelete))
	mux.Handle("POST /members/bulk/reassign", guard(handleBulkReassign))

	mux.Handle("GET /admins", guard(handleAdminList))
	mux.Handle("POST /admins", guard(handleAddAdmin))
	mux.Handle("GET /admins/{id}/edit", guard(handleEditAdminDraft))
	mux.Handle("POST /admins/{id}", guard(handleUpdateAdmin))
	mux.Handle("POST /admins/{id}/delete", guard(handleDeleteAdmin))

	mux.Handle("GET /comms", guard(handleCommsPage))
	mux.Handle("POST /comms", guard(handleSendBroadcast))

	mux.HandleFunc("GET /new", handleNewMemberPage)
	mux.HandleFunc("POST /new", handleNewMember)
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/overview", http.StatusSeeOther)
	})
}
