package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// ErrNoRecipients is returned when a broadcast has nobody to go to.
var ErrNoRecipients = errors.New("notify: no recipients configured")

// FollowUp is the lead detail a reminder needs.
type FollowUp struct {
	LeadID string
	Name   string
	Phone  string
	DueAt  time.Time
}

// Service fans team notifications out over an EmailSender.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// Broadcast sends msg to every recipient. Failures for one recipient do not
// stop the others; all errors are returned joined.
func (s *Service) Broadcast(ctx context.Context, recipients []string, msg EmailMessage) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping", "subject", msg.Subject)
		return nil
	}
	var targets []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			targets = append(targets, r)
		}
	}
	if len(targets) == 0 {
		return ErrNoRecipients
	}

	var errs []error
	for _, recipient := range targets {
		out := msg
		out.To = recipient
		if err := s.email.Send(ctx, out); err != nil {
			s.logger.Error("notify: failed to send email", "error", err, "to", recipient)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("notify: email sent", "to", recipient, "subject", msg.Subject)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d of %d sends failed: %w", len(errs), len(targets), errors.Join(errs...))
	}
	return nil
}

// NotifyFollowUpDue sends the "call now" reminder for a lead.
func (s *Service) NotifyFollowUpDue(ctx context.Context, recipient string, f FollowUp, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	subject := fmt.Sprintf("Follow-up Due: %s", f.Name)
	body := fmt.Sprintf("Call %s (%s) now!\n\nScheduled for %s.", f.Name, f.Phone, f.DueAt.In(loc).Format("Monday, January 2 at 3:04 PM"))
	htmlBody := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #d97706;">Follow-up Due</h2>
<p>Call <strong>%s</strong> (<a href="tel:%s">%s</a>) now!</p>
<p style="color: #6b7280; font-size: 12px;">Scheduled for %s</p>
</div>`, html.EscapeString(f.Name), html.EscapeString(f.Phone), html.EscapeString(f.Phone), f.DueAt.In(loc).Format("Monday, January 2 at 3:04 PM"))

	return s.Broadcast(ctx, []string{recipient}, EmailMessage{Subject: subject, Body: body, HTML: htmlBody, Category: CategoryFollowUp})
}
