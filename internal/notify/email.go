package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// EmailSender delivers one email. SendGrid, SES and the stub all satisfy it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// DefaultFromName is used when no sender name is configured.
const DefaultFromName = "Nectar Leads"

// Message categories, reported to the provider for per-kind delivery stats.
const (
	CategoryWeeklyReport = "weekly-report"
	CategoryFollowUp     = "follow-up"
)

// EmailMessage is one outgoing team email. Body is plain text; HTML is an
// optional alternative part.
type EmailMessage struct {
	To       string
	ToName   string
	ReplyTo  string
	Subject  string
	Body     string
	HTML     string
	Category string
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// build assembles the v3 mail payload; the text body doubles as the HTML
// part when no HTML is given.
func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	htmlPart := msg.HTML
	if htmlPart == "" {
		htmlPart = msg.Body
	}
	m := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		htmlPart,
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	resp, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To, "category", msg.Category)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}

	s.logger.Debug("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}

// StubEmailSender only logs. It is the default provider in development.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("email not sent (stub provider)", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}
