package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"chemistmap/internal/adapters/http/middleware"
	"chemistmap/internal/application/listutil"
	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/application/projections"
	"chemistmap/internal/domain/member"
)

// intakeRequest is the new-member form shared by /members and /new.
type intakeRequest struct {
	FullName           string `json:"full_name"`
	Gender             string `json:"gender"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Address            string `json:"address"`
	RelationshipStatus string `json:"relationship_status"`
	Occupation         string `json:"occupation"`
	ServiceUnitStatus  string `json:"service_unit_status"`
	ServiceUnitName    string `json:"service_unit_name"`
	Reminder           string `json:"reminder"`
	Suggestions        string `json:"suggestions"`
	BirthMonth         int    `json:"birth_month"`
	BirthDay           int    `json:"birth_day"`
	AdminID            string `json:"admin_id"`
}

func (in *intakeRequest) bindForm(form url.Values) {
	in.FullName = form.Get("full_name")
	in.Gender = form.Get("gender")
	in.Phone = form.Get("phone")
	in.Email = form.Get("email")
	in.Address = form.Get("address")
	in.RelationshipStatus = form.Get("relationship_status")
	in.Occupation = form.Get("occupation")
	in.ServiceUnitStatus = form.Get("service_unit_status")
	in.ServiceUnitName = form.Get("service_unit_name")
	in.Reminder = form.Get("reminder")
	in.Suggestions = form.Get("suggestions")
	in.BirthMonth = formInt(form, "birth_month")
	in.BirthDay = formInt(form, "birth_day")
	in.AdminID = form.Get("admin_id")
}

func (in *intakeRequest) intake() member.Intake {
	return member.Intake{
		FullName:           in.FullName,
		Gender:             in.Gender,
		Phone:              in.Phone,
		Email:              in.Email,
		Address:            in.Address,
		RelationshipStatus: in.RelationshipStatus,
		Occupation:         in.Occupation,
		ServiceUnitStatus:  in.ServiceUnitStatus,
		ServiceUnitName:    in.ServiceUnitName,
		Reminder:           in.Reminder,
		Suggestions:        in.Suggestions,
		BirthMonth:         in.BirthMonth,
		BirthDay:           in.BirthDay,
	}
}

// keyRequest confirms a single-member action with the admin key.
type keyRequest struct {
	AdminKey string `json:"admin_key"`
	AdminID  string `json:"admin_id"` // reassign target
}

func (k *keyRequest) bindForm(form url.Values) {
	k.AdminKey = form.Get("admin_key")
	k.AdminID = form.Get("admin_id")
}

type noteRequest struct {
	AdminID string `json:"admin_id"`
	Note    string `json:"note"`
}

func (n *noteRequest) bindForm(form url.Values) {
	n.AdminID = form.Get("admin_id")
	n.Note = form.Get("note")
}

// bulkRequest carries a member selection. Forms post one member_id per
// checked row.
type bulkRequest struct {
	MemberIDs []string `json:"member_ids"`
	Action    string   `json:"action"` // review only: delete or reassign
	AdminKey  string   `json:"admin_key"`
	AdminID   string   `json:"admin_id"`
}

func (b *bulkRequest) bindForm(form url.Values) {
	b.MemberIDs = form["member_id"]
	b.Action = form.Get("action")
	b.AdminKey = form.Get("admin_key")
	b.AdminID = form.Get("admin_id")
}

// memberListPage serves GET /members and GET /members/follow-up. Both list
// the same rows; the follow-up view adds note, reassign and delete actions.
func memberListPage(followUp bool) http.HandlerFunc {
	basePath := "/members"
	if followUp {
		basePath = "/members/follow-up"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		lp := listutil.ParseListParams(r.URL.Query())
		result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{ListParams: lp},
			projections.GetMemberListDeps{MemberStore: stores.MemberStore, AdminStore: stores.AdminStore})
		if err != nil {
			failWorkflow(w, r, err, "/overview")
			return
		}

		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusOK, result)
			return
		}
		renderTemplate(w, r, "members.html", 0, map[string]any{
			"Title":          "Members",
			"FollowUp":       followUp,
			"BasePath":       basePath,
			"Members":        result.Members,
			"Page":           result.Page,
			"Admins":         result.Admins,
			"Search":         lp.Search,
			"AdminFilter":    lp.AdminID,
			"PerPageOptions": listutil.PerPageOptions,
			"Months":         member.Months,
			"Form":           intakeRequest{},
		})
	}
}

// handleAddMember handles POST /members
func handleAddMember(w http.ResponseWriter, r *http.Request) {
	back := returnTo(r, "/members")
	var req intakeRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}

	m, err := orchestrators.ExecuteAddMember(r.Context(), orchestrators.AddMemberInput{
		Intake:  req.intake(),
		AdminID: req.AdminID,
	}, orchestrators.AddMemberDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	observe("add_member", err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	succeed(w, r, m.FullName+" added", back, http.StatusCreated, m)
}

// handleNoteHistory handles GET /members/{id}/notes
func handleNoteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := projections.QueryGetNoteHistory(r.Context(), id, projections.GetNoteHistoryDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
		NoteStore:   stores.NoteStore,
	})
	if errors.Is(err, member.ErrNotFound) {
		notFound(w, r, "member")
		return
	}
	if err != nil {
		failWorkflow(w, r, err, "/members/follow-up")
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "notes.html", 0, map[string]any{
		"Title":  "Notes for " + result.Member.FullName,
		"Member": result.Member,
		"Notes":  result.Notes,
		"Admins": result.Admins,
	})
}

// handleAddNote handles POST /members/{id}/notes
func handleAddNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	back := returnTo(r, "/members/"+url.PathEscape(id)+"/notes")
	var req noteRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}

	n, err := orchestrators.ExecuteAddNote(r.Context(), orchestrators.AddNoteInput{
		MemberID: id,
		AdminID:  req.AdminID,
		Body:     req.Note,
	}, orchestrators.AddNoteDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
		NoteStore:   stores.NoteStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	observe("add_note", err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	succeed(w, r, "Note added", back, http.StatusCreated, n)
}

// handleReassignMember handles POST /members/{id}/reassign
func handleReassignMember(w http.ResponseWriter, r *http.Request) {
	back := returnTo(r, "/members/follow-up")
	var req keyRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}

	result, err := orchestrators.ExecuteReassignMember(r.Context(), orchestrators.ReassignMemberInput{
		MemberID:      r.PathValue("id"),
		TargetAdminID: req.AdminID,
		AdminKey:      req.AdminKey,
		Actor:         actorFrom(r),
	}, orchestrators.ReassignMemberDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
		AdminKey:    adminKey,
		Audit:       stores.AuditStore,
		Now:         timeNow,
	})
	observe("reassign_member", err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	msg := fmt.Sprintf("%s reassigned to %s", result.Member.FullName, result.AdminName)
	succeed(w, r, msg, back, http.StatusOK, result.Member)
}

// handleDeleteMember handles POST /members/{id}/delete
func handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	back := returnTo(r, "/members/follow-up")
	var req keyRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}

	m, err := orchestrators.ExecuteDeleteMember(r.Context(), orchestrators.DeleteMemberInput{
		MemberID: r.PathValue("id"),
		AdminKey: req.AdminKey,
		Actor:    actorFrom(r),
	}, orchestrators.DeleteMemberDeps{
		MemberStore: stores.MemberStore,
		NoteStore:   stores.NoteStore,
		AdminKey:    adminKey,
		Audit:       stores.AuditStore,
		Now:         timeNow,
	})
	observe("delete_member", err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	succeed(w, r, m.FullName+" deleted", back, http.StatusOK, map[string]string{"deleted": m.ID})
}

// handleBulkReview handles POST /members/bulk/review. It lists every
// selected member by name before the admin key form is shown.
func handleBulkReview(w http.ResponseWriter, r *http.Request) {
	back := returnTo(r, "/members")
	var req bulkRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}
	if len(req.MemberIDs) == 0 {
		failWorkflow(w, r, orchestrators.ErrNoSelection, back)
		return
	}
	if req.Action != "delete" && req.Action != "reassign" {
		badRequest(w, r, back)
		return
	}

	selection, err := projections.QueryGetBulkSelection(r.Context(), req.MemberIDs, projections.GetBulkSelectionDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
	})
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, selection)
		return
	}
	renderTemplate(w, r, "bulk_review.html", 0, map[string]any{
		"Title":    "Review selection",
		"Action":   req.Action,
		"Members":  selection.Members,
		"Missing":  selection.Missing,
		"Admins":   selection.Admins,
		"ReturnTo": back,
	})
}

// handleBulkDelete handles POST /members/bulk/delete
func handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	back := returnTo(r, "/members")
	var req bulkRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}

	result, err := orchestrators.ExecuteBulkDelete(r.Context(), orchestrators.BulkMembersInput{
		MemberIDs: req.MemberIDs,
		AdminKey:  req.AdminKey,
		Actor:     actorFrom(r),
	}, bulkDeps())
	observeBulk("bulk_delete", result, err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	reportBulk(w, r, result, fmt.Sprintf("%d member(s) deleted", len(result.Succeeded)), back)
}

// handleBulkReassign handles POST /members/bulk/reassign
func handleBulkReassign(w http.ResponseWriter, r *http.Request) {
	back := returnTo(r, "/members")
	var req bulkRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, back)
		return
	}

	result, adminName, err := orchestrators.ExecuteBulkReassign(r.Context(), orchestrators.BulkMembersInput{
		MemberIDs:     req.MemberIDs,
		TargetAdminID: req.AdminID,
		AdminKey:      req.AdminKey,
		Actor:         actorFrom(r),
	}, bulkDeps())
	observeBulk("bulk_reassign", result, err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	reportBulk(w, r, result, fmt.Sprintf("%d member(s) reassigned to %s", len(result.Succeeded), adminName), back)
}

func bulkDeps() orchestrators.BulkMembersDeps {
	return orchestrators.BulkMembersDeps{
		MemberStore: stores.MemberStore,
		NoteStore:   stores.NoteStore,
		AdminStore:  stores.AdminStore,
		AdminKey:    adminKey,
		Audit:       stores.AuditStore,
		Now:         timeNow,
	}
}

type bulkFailureJSON struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name,omitempty"`
	Error    string `json:"error"`
}

type bulkResultJSON struct {
	Succeeded []string          `json:"succeeded"`
	Failed    []bulkFailureJSON `json:"failed"`
}

// reportBulk answers a finished bulk workflow. Any failure is named in the
// flash; JSON clients get 207 when some members succeeded and some failed.
func reportBulk(w http.ResponseWriter, r *http.Request, result orchestrators.BulkResult, okMessage, back string) {
	if isHTMLRequest(r) {
		if len(result.Failed) > 0 {
			flash(r, middleware.FlashError, okMessage+". "+result.Summary())
		} else {
			flash(r, middleware.FlashSuccess, okMessage)
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	body := bulkResultJSON{Succeeded: result.Succeeded, Failed: []bulkFailureJSON{}}
	if body.Succeeded == nil {
		body.Succeeded = []string{}
	}
	for _, f := range result.Failed {
		body.Failed = append(body.Failed, bulkFailureJSON{MemberID: f.MemberID, Name: f.Name, Error: f.Err.Error()})
	}
	status := http.StatusOK
	switch {
	case result.Partial():
		status = http.StatusMultiStatus
	case len(result.Failed) > 0:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, body)
}
