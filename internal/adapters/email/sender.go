package email

import (
	"context"
	"errors"
	"time"
)

// MaxBatchSize is the most emails a provider batch call accepts.
const MaxBatchSize = 100

var (
	ErrNoRecipients = errors.New("email has no recipients")
	ErrNoSubject    = errors.New("email has no subject")
)

// SendRequest is one outgoing email.
type SendRequest struct {
	To      []string
	From    string // e.g. "Chemist MAP <noreply@chemistmap.org>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string
}

// Validate checks the fields every provider requires.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	if r.Subject == "" {
		return ErrNoSubject
	}
	return nil
}

// SendResult is the provider's acknowledgement of one email.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email. SendBatch returns one result per accepted request,
// in request order; on error the results cover the requests accepted before
// the failure.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}

// chunks splits reqs into consecutive slices of at most size elements.
func chunks(reqs []SendRequest, size int) [][]SendRequest {
	var out [][]SendRequest
	for len(reqs) > size {
		out = append(out, reqs[:size])
		reqs = reqs[size:]
	}
	if len(reqs) > 0 {
		out = append(out, reqs)
	}
	return out
}
