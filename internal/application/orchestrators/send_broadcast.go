package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	emailAdapter "chemistmap/internal/adapters/email"
	memberStore "chemistmap/internal/adapters/storage/member"
	"chemistmap/internal/domain/adminkey"
	"chemistmap/internal/domain/audit"
	"chemistmap/internal/domain/broadcast"
	"chemistmap/internal/domain/member"
)

// AudienceLister lists the members a broadcast goes to.
type AudienceLister interface {
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// BroadcastStoreForOrchestrator persists sent broadcasts.
type BroadcastStoreForOrchestrator interface {
	Save(ctx context.Context, b broadcast.Broadcast) error
}

// SendBroadcastInput carries input for the send broadcast orchestrator.
type SendBroadcastInput struct {
	Subject  string
	Body     string // Markdown
	AdminID  string // optional audience filter
	AdminKey string
	Actor    audit.Actor
}

// SendBroadcastDeps holds dependencies for SendBroadcast.
type SendBroadcastDeps struct {
	MemberStore    AudienceLister
	BroadcastStore BroadcastStoreForOrchestrator
	EmailSender    emailAdapter.Sender
	AdminKey       adminkey.Key
	Audit          AuditRecorder
	GenerateID     func() string
	Now            func() time.Time
	FromAddress    string
	ReplyTo        string
}

var markdown = goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))

// RenderMarkdown converts a Markdown body to HTML.
func RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BroadcastAudience returns the members with reminder = yes, optionally
// narrowed to one admin, skipping members without an email address.
func BroadcastAudience(ctx context.Context, store AudienceLister, adminID string) ([]member.Member, error) {
	members, err := store.List(ctx, memberStore.ListFilter{ReminderOnly: true, AdminID: adminID})
	if err != nil {
		return nil, err
	}
	out := members[:0]
	for _, m := range members {
		if m.WantsReminders() && strings.TrimSpace(m.Email) != "" {
			out = append(out, m)
		}
	}
	return out, nil
}

// ExecuteSendBroadcast emails a Markdown message to the reminder audience.
// PRE: Subject and Body are non-empty
// POST: One email per recipient is handed to the sender and the broadcast is
// recorded with its delivery counts
// INVARIANT: Nothing is sent when the key does not match or the audience is empty
func ExecuteSendBroadcast(ctx context.Context, input SendBroadcastInput, deps SendBroadcastDeps) (broadcast.Broadcast, error) {
	b := broadcast.Broadcast{
		Subject:     strings.TrimSpace(input.Subject),
		Body:        input.Body,
		AdminID:     input.AdminID,
		SenderEmail: input.Actor.Email,
		CreatedAt:   deps.Now(),
	}
	if err := b.Validate(); err != nil {
		return broadcast.Broadcast{}, err
	}

	if err := deps.AdminKey.Verify(input.AdminKey); err != nil {
		recordRejectedKey(ctx, deps.Audit, input.Actor, "broadcast", "", "send_broadcast", b.CreatedAt)
		return broadcast.Broadcast{}, ErrSendCancelled
	}

	recipients, err := BroadcastAudience(ctx, deps.MemberStore, input.AdminID)
	if err != nil {
		return broadcast.Broadcast{}, err
	}
	if len(recipients) == 0 {
		return broadcast.Broadcast{}, broadcast.ErrNoRecipients
	}

	html, err := RenderMarkdown(b.Body)
	if err != nil {
		return broadcast.Broadcast{}, fmt.Errorf("render message: %w", err)
	}

	reqs := make([]emailAdapter.SendRequest, 0, len(recipients))
	for _, m := range recipients {
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{m.Email},
			From:    deps.FromAddress,
			Subject: b.Subject,
			HTML:    html,
			ReplyTo: deps.ReplyTo,
		})
	}

	results, sendErr := deps.EmailSender.SendBatch(ctx, reqs)
	failed := 0
	if sendErr != nil {
		failed = len(reqs) - len(results)
	}
	b.ID = deps.GenerateID()
	b.RecordDelivery(len(reqs), failed)

	if err := deps.BroadcastStore.Save(ctx, b); err != nil {
		slog.Error("comms_event", "event", "broadcast_record_failed", "broadcast_id", b.ID, "error", err)
	}
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.Actor, audit.CategoryComms, audit.ActionSend, b.CreatedAt).
		WithResource("broadcast", b.ID).
		WithDescription(fmt.Sprintf("%q to %d recipients (%s)", b.Subject, b.RecipientCount, b.Status)))

	if sendErr != nil {
		wfErr := &WorkflowError{
			Workflow: "send_broadcast",
			Step:     "deliver",
			Err:      fmt.Errorf("%d of %d emails could not be sent: %w", failed, len(reqs), sendErr),
		}
		if len(results) > 0 {
			wfErr.Applied = []string{"deliver_accepted"}
		}
		return b, wfErr
	}

	slog.Info("comms_event", "event", "broadcast_sent", "broadcast_id", b.ID, "recipient_count", b.RecipientCount)
	return b, nil
}
