package reminders

import (
	"context"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/notify"
	"github.com/wolfman30/nectar-lead-tracker/internal/observability/metrics"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

const (
	lookBehind = 5 * time.Minute
	lookAhead  = 2 * time.Minute
)

type LeadSource interface {
	All(ctx context.Context, userID string) ([]*leads.Lead, error)
	Now() time.Time
	Location() *time.Location
}

type Notifier interface {
	NotifyFollowUpDue(ctx context.Context, recipient string, f notify.FollowUp, loc *time.Location) error
}

type Claims interface {
	Users(ctx context.Context) ([]string, error)
	Claim(ctx context.Context, leadID string, due time.Time) (bool, error)
	Release(ctx context.Context, leadID string, due time.Time) error
}

// Scanner periodically emails a reminder for every open lead whose follow-up
// falls inside the due window.
type Scanner struct {
	source    LeadSource
	notifier  Notifier
	claims    Claims
	recipient string
	interval  time.Duration
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
}

func NewScanner(source LeadSource, notifier Notifier, claims Claims, recipient string, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scanner{
		source:    source,
		notifier:  notifier,
		claims:    claims,
		recipient: recipient,
		interval:  time.Minute,
		logger:    logger,
	}
}

func (s *Scanner) WithInterval(d time.Duration) *Scanner {
	if d > 0 {
		s.interval = d
	}
	return s
}

func (s *Scanner) WithMetrics(m *metrics.LeadMetrics) *Scanner {
	s.metrics = m
	return s
}

// Due reports whether lead needs a reminder at now: open, with a follow-up
// no more than five minutes past and no more than two minutes ahead.
func Due(lead *leads.Lead, now time.Time) bool {
	if lead == nil || lead.IsClosed() || lead.NextFollowUp == nil {
		return false
	}
	at := *lead.NextFollowUp
	return !at.Before(now.Add(-lookBehind)) && !at.After(now.Add(lookAhead))
}

func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.scanLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanLogged(ctx)
		}
	}
}

func (s *Scanner) scanLogged(ctx context.Context) {
	sent, err := s.Scan(ctx)
	if err != nil {
		s.logger.Error("reminder scan failed", "error", err)
		return
	}
	if sent > 0 {
		s.logger.Info("follow-up reminders sent", "count", sent)
	}
}

// Scan sends reminders for every due lead and returns how many went out.
// A user whose leads cannot be loaded is skipped.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	if s.recipient == "" {
		return 0, nil
	}
	users, err := s.claims.Users(ctx)
	if err != nil {
		return 0, err
	}
	now := s.source.Now()
	sent := 0
	for _, userID := range users {
		all, err := s.source.All(ctx, userID)
		if err != nil {
			s.logger.Warn("reminder scan skipped user", "user_id", userID, "error", err)
			continue
		}
		for _, lead := range all {
			if !Due(lead, now) {
				continue
			}
			if s.remind(ctx, lead) {
				sent++
			}
		}
	}
	return sent, nil
}

func (s *Scanner) remind(ctx context.Context, lead *leads.Lead) bool {
	due := *lead.NextFollowUp
	ok, err := s.claims.Claim(ctx, lead.ID, due)
	if err != nil {
		s.logger.Error("reminder claim failed", "lead_id", lead.ID, "error", err)
		s.metrics.ObserveReminder("error")
		return false
	}
	if !ok {
		s.metrics.ObserveReminder("duplicate")
		return false
	}
	f := notify.FollowUp{LeadID: lead.ID, Name: lead.Name, Phone: lead.Phone, DueAt: due}
	if err := s.notifier.NotifyFollowUpDue(ctx, s.recipient, f, s.source.Location()); err != nil {
		s.logger.Error("reminder send failed", "lead_id", lead.ID, "error", err)
		s.metrics.ObserveReminder("error")
		if rerr := s.claims.Release(ctx, lead.ID, due); rerr != nil {
			s.logger.Warn("reminder claim release failed", "lead_id", lead.ID, "error", rerr)
		}
		return false
	}
	s.metrics.ObserveReminder("sent")
	return true
}
