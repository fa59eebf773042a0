package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (s *fakeSender) DialAndSend(messages ...*mail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

func newTestWorker(t *testing.T, client sender) *worker {
	return &worker{
		from:        "noreply@example.com",
		templateDir: writeTemplates(t),
		client:      client,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestWorkerHandle(t *testing.T) {
	client := &fakeSender{}
	w := newTestWorker(t, client)

	requeue, err := w.handle([]byte(`{"type":"reset_password","to":"staff1@example.com","data":{"name":"Carol Lee","otp":"654321","expiration":15}}`))
	require.NoError(t, err)
	assert.False(t, requeue)
	require.Len(t, client.sent, 1)
	to := client.sent[0].GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "staff1@example.com")
}

func TestWorkerHandleDropsBadMessages(t *testing.T) {
	client := &fakeSender{}
	w := newTestWorker(t, client)

	requeue, err := w.handle([]byte(`{"type":"change_email","to":"staff1@example.com"}`))
	assert.Error(t, err)
	assert.False(t, requeue)

	requeue, err = w.handle([]byte(`{`))
	assert.Error(t, err)
	assert.False(t, requeue)

	assert.Empty(t, client.sent)
}

func TestWorkerHandleRequeuesOnSendFailure(t *testing.T) {
	w := newTestWorker(t, &fakeSender{err: errors.New("connection refused")})

	requeue, err := w.handle([]byte(`{"type":"create_user","to":"staff1@example.com","data":{"name":"Carol Lee","email":"staff1@example.com","password":"abc12345"}}`))
	assert.Error(t, err)
	assert.True(t, requeue)
}
