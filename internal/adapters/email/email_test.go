package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requests(n int) []SendRequest {
	out := make([]SendRequest, n)
	for i := range out {
		out[i] = SendRequest{To: []string{fmt.Sprintf("member%d@example.com", i)}, Subject: "Sunday service", HTML: "<p>hi</p>"}
	}
	return out
}

func TestChunks(t *testing.T) {
	assert.Empty(t, chunks(nil, MaxBatchSize))

	got := chunks(requests(250), MaxBatchSize)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 100)
	assert.Len(t, got[2], 50)
	assert.Equal(t, "member200@example.com", got[2][0].To[0])
}

func TestSendRequestValidate(t *testing.T) {
	assert.ErrorIs(t, SendRequest{Subject: "x"}.Validate(), ErrNoRecipients)
	assert.ErrorIs(t, SendRequest{To: []string{"a@example.com"}}.Validate(), ErrNoSubject)
	assert.NoError(t, requests(1)[0].Validate())
}

func TestNoopSender(t *testing.T) {
	s := NewNoopSender()
	reqs := requests(3)
	reqs[2].Subject = ""

	results, err := s.SendBatch(context.Background(), reqs)
	assert.ErrorIs(t, err, ErrNoSubject)
	assert.Len(t, results, 2)
	assert.Len(t, s.Sent(), 2)
	assert.Equal(t, "noop-2", results[1].MessageID)
}

func newTestResend(t *testing.T, handler http.HandlerFunc) *ResendSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewResendSender("re_test_key", "Chemist MAP <noreply@chemistmap.org>")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	s.client.BaseURL = base
	return s
}

func TestResendSender_SendBatchChunks(t *testing.T) {
	var calls atomic.Int32
	s := newTestResend(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/emails/batch"), r.URL.Path)
		n := calls.Add(1)
		size := MaxBatchSize
		if n == 2 {
			size = 20
		}
		ids := make([]string, size)
		for i := range ids {
			ids[i] = fmt.Sprintf(`{"id":"msg-%d-%d"}`, n, i)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(ids, ","))
	})

	results, err := s.SendBatch(context.Background(), requests(120))
	require.NoError(t, err)
	assert.Len(t, results, 120)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "msg-2-0", results[100].MessageID)
}

func TestResendSender_SendBatchFailureKeepsAccepted(t *testing.T) {
	var calls atomic.Int32
	s := newTestResend(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"statusCode":422,"name":"validation_error","message":"invalid from"}`)
			return
		}
		ids := make([]string, MaxBatchSize)
		for i := range ids {
			ids[i] = fmt.Sprintf(`{"id":"ok-%d"}`, i)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(ids, ","))
	})

	results, err := s.SendBatch(context.Background(), requests(150))
	require.Error(t, err)
	assert.Len(t, results, MaxBatchSize)
}

func TestResendSender_RejectsInvalidBeforeCalling(t *testing.T) {
	var calls atomic.Int32
	s := newTestResend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	reqs := requests(2)
	reqs[1].To = nil

	_, err := s.SendBatch(context.Background(), reqs)
	assert.True(t, errors.Is(err, ErrNoRecipients))
	assert.Zero(t, calls.Load())
}
