package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs and keeps every email instead of delivering it. It is used
// when no provider key is configured and in tests.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
	now  func() time.Time
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{now: time.Now}
}

// Send records the email without delivering it.
// PRE: req is a valid SendRequest
// POST: req is appended to Sent
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	slog.Info("email_event", "event", "noop_send", "recipients", len(req.To), "subject", req.Subject)
	return SendResult{MessageID: fmt.Sprintf("noop-%d", len(s.sent)), SentAt: s.now()}, nil
}

// SendBatch records each email in order and stops at the first invalid one.
func (s *NoopSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for i, req := range reqs {
		res, err := s.Send(ctx, req)
		if err != nil {
			return results, fmt.Errorf("email %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Sent returns a copy of every recorded email.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SendRequest, len(s.sent))
	copy(out, s.sent)
	return out
}
