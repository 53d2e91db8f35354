package web

import (
	"errors"
	"net/http"
	"net/url"

	"chemistmap/internal/application/listutil"
	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/application/projections"
	"chemistmap/internal/domain/admin"
)

type adminRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *adminRequest) bindForm(form url.Values) {
	a.Name = form.Get("name")
	a.Email = form.Get("email")
}

// renderAdminList renders the admin table; draft, when set, fills the edit form.
func renderAdminList(w http.ResponseWriter, r *http.Request, draft *admin.Admin) {
	lp := listutil.ParseListParams(r.URL.Query())
	result, err := projections.QueryGetAdminList(r.Context(), projections.GetAdminListQuery{ListParams: lp},
		projections.GetAdminListDeps{AdminStore: stores.AdminStore})
	if err != nil {
		failWorkflow(w, r, err, "/overview")
		return
	}

	if !isHTMLRequest(r) {
		if draft != nil {
			writeJSON(w, http.StatusOK, draft)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "admins.html", 0, map[string]any{
		"Title":          "Admins",
		"Admins":         result.Admins,
		"Page":           result.Page,
		"Search":         lp.Search,
		"AdminFilter":    "",
		"BasePath":       "/admins",
		"PerPageOptions": listutil.PerPageOptions,
		"Draft":          draft,
	})
}

// handleAdminList handles GET /admins
func handleAdminList(w http.ResponseWriter, r *http.Request) {
	renderAdminList(w, r, nil)
}

// handleEditAdminDraft handles GET /admins/{id}/edit. Loading a draft never writes.
func handleEditAdminDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := projections.QueryGetAdminDraft(r.Context(), r.PathValue("id"),
		projections.GetAdminListDeps{AdminStore: stores.AdminStore})
	if errors.Is(err, admin.ErrNotFound) {
		notFound(w, r, "admin")
		return
	}
	if err != nil {
		failWorkflow(w, r, err, "/admins")
		return
	}
	renderAdminList(w, r, &draft)
}

// handleAddAdmin handles POST /admins
func handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, "/admins")
		return
	}

	a, err := orchestrators.ExecuteAddAdmin(r.Context(), orchestrators.AddAdminInput{
		Name:  req.Name,
		Email: req.Email,
	}, orchestrators.AddAdminDeps{
		AdminStore: stores.AdminStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	observe("add_admin", err)
	if err != nil {
		failWorkflow(w, r, err, "/admins")
		return
	}
	succeed(w, r, a.Name+" added", "/admins", http.StatusCreated, a)
}

// handleUpdateAdmin handles POST /admins/{id}
func handleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req adminRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, "/admins")
		return
	}

	a, err := orchestrators.ExecuteEditAdmin(r.Context(), orchestrators.EditAdminInput{
		AdminID: id,
		Name:    req.Name,
		Email:   req.Email,
	}, orchestrators.EditAdminDeps{
		AdminStore: stores.AdminStore,
		Now:        timeNow,
	})
	observe("edit_admin", err)
	if err != nil {
		failWorkflow(w, r, err, "/admins/"+url.PathEscape(id)+"/edit")
		return
	}
	succeed(w, r, a.Name+" updated", "/admins", http.StatusOK, a)
}

// handleDeleteAdmin handles POST /admins/{id}/delete
func handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, "/admins")
		return
	}

	a, err := orchestrators.ExecuteDeleteAdmin(r.Context(), orchestrators.DeleteAdminInput{
		AdminID:  r.PathValue("id"),
		AdminKey: req.AdminKey,
		Actor:    actorFrom(r),
	}, orchestrators.DeleteAdminDeps{
		AdminStore: stores.AdminStore,
		AdminKey:   adminKey,
		Audit:      stores.AuditStore,
		Now:        timeNow,
	})
	observe("delete_admin", err)
	if err != nil {
		failWorkflow(w, r, err, "/admins")
		return
	}
	succeed(w, r, a.Name+" deleted", "/admins", http.StatusOK, map[string]string{"deleted": a.ID})
}
