package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/notify"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// ErrNoRecipients is returned when the report has nowhere to go.
var ErrNoRecipients = errors.New("reports: no report recipients configured")

// LeadSource supplies the lead collection and the viewer clock.
type LeadSource interface {
	All(ctx context.Context, userID string) ([]*leads.Lead, error)
	Now() time.Time
	Location() *time.Location
}

// Broadcaster delivers one email to many recipients.
type Broadcaster interface {
	Broadcast(ctx context.Context, recipients []string, msg notify.EmailMessage) error
}

// Service builds weekly reports and emails them to the team.
type Service struct {
	source     LeadSource
	mailer     Broadcaster
	recipients []string
	logger     *logging.Logger
}

func NewService(source LeadSource, mailer Broadcaster, recipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, mailer: mailer, recipients: recipients, logger: logger}
}

// Weekly builds the report for the user's leads as of the service clock.
func (s *Service) Weekly(ctx context.Context, userID string) (Report, error) {
	all, err := s.source.All(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	return Build(all, s.source.Now(), s.source.Location()), nil
}

// Email sends the weekly report to the configured recipients and returns how
// many it was addressed to.
func (s *Service) Email(ctx context.Context, userID string) (int, error) {
	if len(s.recipients) == 0 || s.mailer == nil {
		return 0, ErrNoRecipients
	}
	report, err := s.Weekly(ctx, userID)
	if err != nil {
		return 0, err
	}
	html, err := report.HTML()
	if err != nil {
		return 0, err
	}
	msg := notify.EmailMessage{
		Subject:  report.Title,
		Body:     report.String(),
		HTML:     html,
		Category: notify.CategoryWeeklyReport,
	}
	if err := s.mailer.Broadcast(ctx, s.recipients, msg); err != nil {
		if errors.Is(err, notify.ErrNoRecipients) {
			return 0, ErrNoRecipients
		}
		return 0, fmt.Errorf("reports: email weekly report: %w", err)
	}
	s.logger.Info("weekly report emailed", "user_id", userID, "recipients", len(s.recipients))
	return len(s.recipients), nil
}
