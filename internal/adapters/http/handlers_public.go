package web

import (
	"net/http"

	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/domain/member"
)

func renderIntake(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Title"] = "Welcome"
	data["Months"] = member.Months
	if _, ok := data["Form"]; !ok {
		data["Form"] = intakeRequest{}
	}
	renderTemplate(w, r, "new_member.html", status, data)
}

// handleNewMemberPage handles GET /new
func handleNewMemberPage(w http.ResponseWriter, r *http.Request) {
	renderIntake(w, r, 0, nil)
}

// handleNewMember handles POST /new. The public form never assigns an admin
// and sends no confirmation email.
func handleNewMember(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := bindRequest(r, &req); err != nil {
		if isHTMLRequest(r) {
			renderIntake(w, r, http.StatusBadRequest, map[string]any{"Error": "invalid form submission"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	req.AdminID = ""

	_, err := orchestrators.ExecuteAddMember(r.Context(), orchestrators.AddMemberInput{
		Intake: req.intake(),
	}, orchestrators.AddMemberDeps{
		MemberStore: stores.MemberStore,
		AdminStore:  stores.AdminStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	observe("public_intake", err)
	if err != nil {
		status := statusFor(err)
		if isHTMLRequest(r) {
			renderIntake(w, r, status, map[string]any{"Error": err.Error(), "Form": req})
			return
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if isHTMLRequest(r) {
		renderIntake(w, r, 0, map[string]any{"Submitted": true})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "received"})
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
