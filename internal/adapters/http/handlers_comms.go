package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/application/projections"
)

var errEmailNotConfigured = errors.New("email delivery is not configured")

type broadcastRequest struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	AdminID  string `json:"admin_id"`
	AdminKey string `json:"admin_key"`
}

func (b *broadcastRequest) bindForm(form url.Values) {
	b.Subject = form.Get("subject")
	b.Body = form.Get("body")
	b.AdminID = form.Get("admin_id")
	b.AdminKey = form.Get("admin_key")
}

// handleCommsPage handles GET /comms. ?admin= narrows the audience preview.
func handleCommsPage(w http.ResponseWriter, r *http.Request) {
	overview, err := projections.QueryGetCommsOverview(r.Context(), r.URL.Query().Get("admin"), projections.GetCommsOverviewDeps{
		MemberStore:    stores.MemberStore,
		AdminStore:     stores.AdminStore,
		BroadcastStore: stores.BroadcastStore,
	})
	if err != nil {
		failWorkflow(w, r, err, "/overview")
		return
	}

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, overview)
		return
	}
	renderTemplate(w, r, "comms.html", 0, map[string]any{
		"Title":    "Comms",
		"Overview": overview,
	})
}

// handleSendBroadcast handles POST /comms
func handleSendBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := bindRequest(r, &req); err != nil {
		badRequest(w, r, "/comms")
		return
	}
	back := "/comms"
	if req.AdminID != "" {
		back += "?admin=" + url.QueryEscape(req.AdminID)
	}
	if emailSender == nil {
		failWorkflow(w, r, errEmailNotConfigured, back)
		return
	}

	b, err := orchestrators.ExecuteSendBroadcast(r.Context(), orchestrators.SendBroadcastInput{
		Subject:  req.Subject,
		Body:     req.Body,
		AdminID:  req.AdminID,
		AdminKey: req.AdminKey,
		Actor:    actorFrom(r),
	}, orchestrators.SendBroadcastDeps{
		MemberStore:    stores.MemberStore,
		BroadcastStore: stores.BroadcastStore,
		EmailSender:    emailSender,
		AdminKey:       adminKey,
		Audit:          stores.AuditStore,
		GenerateID:     generateID,
		Now:            timeNow,
		FromAddress:    emailFromAddress,
		ReplyTo:        emailReplyTo,
	})
	observe("send_broadcast", err)
	if err != nil {
		failWorkflow(w, r, err, back)
		return
	}
	msg := fmt.Sprintf("%q sent to %d member(s)", b.Subject, b.RecipientCount)
	succeed(w, r, msg, back, http.StatusCreated, b)
}
