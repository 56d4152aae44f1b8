package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalei/backend/pkg/email"
	"github.com/escalei/backend/pkg/queue"
)

type fakeSender struct {
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func inviteJob(t *testing.T, payload queue.InviteEmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeInviteEmail, Payload: raw}
}

func TestProcessInviteEmailBuildsLinkAndSends(t *testing.T) {
	sender := &fakeSender{}
	p := NewNotificationProcessor(nil, sender, nil, "https://app.example.com", nil)

	job := inviteJob(t, queue.InviteEmailPayload{
		InviteID:       uuid.New(),
		RecipientEmail: "ana@example.com",
		Code:           "deadbeef",
		AreaName:       "Worship",
	})
	require.NoError(t, p.Process(context.Background(), job))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.ToAddress)
	assert.Contains(t, msg.Subject, "Worship")
	assert.Contains(t, msg.TextBody, "https://app.example.com/invites/deadbeef")
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewNotificationProcessor(nil, &fakeSender{}, nil, "", nil)
	job := &queue.Job{ID: uuid.New().String(), Type: "bogus"}
	assert.Error(t, p.Process(context.Background(), job))
}

func TestProcessInviteEmailPropagatesSendFailure(t *testing.T) {
	sender := &fakeSender{err: assert.AnError}
	p := NewNotificationProcessor(nil, sender, nil, "", nil)

	job := inviteJob(t, queue.InviteEmailPayload{
		InviteID:       uuid.New(),
		RecipientEmail: "ana@example.com",
		Code:           "deadbeef",
		AreaName:       "Worship",
	})
	assert.Error(t, p.Process(context.Background(), job))
}
