package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/escalei/backend/internal/schedules"
	"github.com/escalei/backend/pkg/email"
	"github.com/escalei/backend/pkg/queue"
)

// NotificationProcessor processes notification jobs: publish announcements to
// assigned members and invite emails.
type NotificationProcessor struct {
	schedRepo *schedules.Repository
	sender    email.Sender
	queue     *queue.Queue
	baseURL   string
	logger    *zap.Logger
}

// NewNotificationProcessor creates a notification processor. baseURL is the
// public frontend URL used to build invite links.
func NewNotificationProcessor(schedRepo *schedules.Repository, sender email.Sender, q *queue.Queue, baseURL string, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{schedRepo: schedRepo, sender: sender, queue: q, baseURL: baseURL, logger: logger}
}

// Process executes one notification job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeSchedulePublished:
		return p.processSchedulePublished(ctx, job)
	case queue.JobTypeInviteEmail:
		return p.processInviteEmail(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *NotificationProcessor) processSchedulePublished(ctx context.Context, job *queue.Job) error {
	var payload queue.SchedulePublishedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	s, err := p.schedRepo.GetByID(ctx, payload.ScheduleID)
	if err != nil {
		return fmt.Errorf("schedule not found: %s", payload.ScheduleID)
	}
	recipients, err := p.schedRepo.AssignedRecipients(ctx, payload.ScheduleID)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	if len(recipients) == 0 {
		p.logger.Info("schedule published with no assignments, nothing to send", zap.String("schedule_id", s.ID.String()))
		return nil
	}

	subject := fmt.Sprintf("You are scheduled: %s", s.Name)
	body := fmt.Sprintf(
		"You have been assigned to %q (%s to %s). Check the app for your role and area.",
		s.Name,
		s.StartsAt.Format("Mon, 02 Jan 2006 15:04"),
		s.EndsAt.Format("Mon, 02 Jan 2006 15:04"),
	)

	var failed int
	for _, u := range recipients {
		msg := email.Message{
			ToName:    u.FullName,
			ToAddress: u.Email,
			Subject:   subject,
			TextBody:  body,
		}
		if err := p.sender.Send(ctx, msg); err != nil {
			failed++
			p.logger.Error("publish notification send failed", zap.Error(err), zap.String("to", u.Email))
		}
	}
	if failed == len(recipients) {
		return fmt.Errorf("all %d notification sends failed", failed)
	}
	p.logger.Info("publish notifications sent",
		zap.String("schedule_id", s.ID.String()),
		zap.Int("sent", len(recipients)-failed),
		zap.Int("failed", failed))
	return nil
}

func (p *NotificationProcessor) processInviteEmail(ctx context.Context, job *queue.Job) error {
	var payload queue.InviteEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	link := fmt.Sprintf("%s/invites/%s", p.baseURL, payload.Code)
	msg := email.Message{
		ToAddress: payload.RecipientEmail,
		Subject:   fmt.Sprintf("Invitation to join %s", payload.AreaName),
		TextBody: fmt.Sprintf(
			"You have been invited to join the %s team. Accept here: %s (code %s)",
			payload.AreaName, link, payload.Code,
		),
	}
	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send invite email: %w", err)
	}
	p.logger.Info("invite email sent", zap.String("invite_id", payload.InviteID.String()), zap.String("to", payload.RecipientEmail))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
