package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianstroescu/saasrevive/internal/config"
)

// recordingSender captures sent emails for assertions.
type recordingSender struct {
	to      []string
	subject string
	raw     []byte
	err     error
}

func (s *recordingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	s.to = to
	s.subject = subject
	s.raw = rawMessage
	return s.err
}

func TestNewEmailDeliveryTask(t *testing.T) {
	task, err := NewEmailDeliveryTask("a@example.com", "Hello", "Body text")
	require.NoError(t, err)
	assert.Equal(t, TypeEmailDelivery, task.Type())

	var payload EmailTaskPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "a@example.com", payload.To)
	assert.Equal(t, "Hello", payload.Subject)
	assert.Equal(t, "Body text", payload.Body)
}

func TestHandleEmailDeliveryTask(t *testing.T) {
	sender := &recordingSender{}
	p := NewTaskProcessor(&config.Config{SmtpFromAddress: "noreply@saasrevive.local"}, sender)

	task, err := NewEmailDeliveryTask("buyer@example.com", "Your offer was accepted", "Congrats.")
	require.NoError(t, err)

	require.NoError(t, p.HandleEmailDeliveryTask(context.Background(), task))
	assert.Equal(t, []string{"buyer@example.com"}, sender.to)
	assert.Equal(t, "Your offer was accepted", sender.subject)
	assert.Contains(t, string(sender.raw), "From: noreply@saasrevive.local")
	assert.Contains(t, string(sender.raw), "Congrats.")
}

func TestHandleEmailDeliveryTask_SenderFailureRetries(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	p := NewTaskProcessor(&config.Config{SmtpFromAddress: "noreply@saasrevive.local"}, sender)

	task, err := NewEmailDeliveryTask("buyer@example.com", "Subject", "Body")
	require.NoError(t, err)

	err = p.HandleEmailDeliveryTask(context.Background(), task)
	require.Error(t, err)
	// Delivery failures must stay retryable.
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleEmailDeliveryTask_BadPayload(t *testing.T) {
	sender := &recordingSender{}
	p := NewTaskProcessor(&config.Config{}, sender)

	task := asynq.NewTask(TypeEmailDelivery, []byte("{not json"))
	err := p.HandleEmailDeliveryTask(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
