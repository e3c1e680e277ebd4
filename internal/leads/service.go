package leads

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/nectar-lead-tracker/internal/observability/metrics"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

var leadsTracer = otel.Tracer("nectar/leads")

// Mirror actions sent to the sheet sync sink.
const (
	ActionAdd    = "ADD"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Mirror receives best-effort copies of lead mutations. Implementations must
// not block and must never report failures back to the caller.
type Mirror interface {
	Mirror(ctx context.Context, userID, action string, record any)
}

type noopMirror struct{}

func (noopMirror) Mirror(context.Context, string, string, any) {}

// Service owns lead validation, normalization and the write path.
type Service struct {
	repo          Repository
	mirror        Mirror
	logger        *logging.Logger
	metrics       *metrics.LeadMetrics
	loc           *time.Location
	now           func() time.Time
	timeout       time.Duration
	requirePhone  bool
	defaultMember string
	batchSize     int
}

// Option configures a Service.
type Option func(*Service)

// WithMirror sets the sink that receives ADD/UPDATE/DELETE copies.
func WithMirror(m Mirror) Option {
	return func(s *Service) {
		if m != nil {
			s.mirror = m
		}
	}
}

func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocation sets the viewer timezone used for follow-ups and sale dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreTimeout bounds every record store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithRequirePhone(required bool) Option {
	return func(s *Service) { s.requirePhone = required }
}

// WithDefaultMember sets the team member used when a lead has none.
func WithDefaultMember(name string) Option {
	return func(s *Service) {
		if strings.TrimSpace(name) != "" {
			s.defaultMember = strings.TrimSpace(name)
		}
	}
}

// WithImportBatchSize sets how many CSV rows are written concurrently.
func WithImportBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewService wires a lead service around repo.
func NewService(repo Repository, logger *logging.Logger, opts ...Option) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:          repo,
		mirror:        noopMirror{},
		logger:        logger,
		loc:           time.UTC,
		now:           time.Now,
		timeout:       10 * time.Second,
		requirePhone:  true,
		defaultMember: "AD",
		batchSize:     20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the viewer timezone.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.now() }

// Build turns raw form fields into a validated lead without touching the store.
// A missing hour defaults to 10 and a missing meridiem to AM, matching the form.
func (s *Service) Build(form FormState) (*Lead, error) {
	lead := &Lead{
		Name:        strings.TrimSpace(form.Name),
		Phone:       strings.TrimSpace(form.Phone),
		Email:       strings.TrimSpace(form.Email),
		Status:      strings.TrimSpace(form.Status),
		Priority:    form.Priority,
		LeadType:    form.LeadType,
		LeadSubType: strings.TrimSpace(form.LeadSubType),
		TeamMember:  strings.TrimSpace(form.TeamMember),
		Platform:    form.Platform,
		OrderValue:  strings.TrimSpace(form.OrderValue),
		SaleDate:    strings.TrimSpace(form.SaleDate),
		Notes:       form.Notes,
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	if lead.Priority == "" {
		lead.Priority = PriorityMedium
	}
	if lead.Platform == "" {
		lead.Platform = PlatformCall
	}
	if lead.LeadType == "" {
		lead.LeadType = LeadTypeB2C
	}
	if lead.TeamMember == "" {
		lead.TeamMember = s.defaultMember
	}
	products := append([]string{}, form.HoneyTypes...)
	if form.HoneyType != "" {
		products = append(products, form.HoneyType)
	}
	lead.HoneyTypes = NormalizeProducts(products)

	if err := Validate(lead, s.requirePhone); err != nil {
		return nil, err
	}

	if strings.TrimSpace(form.Date) != "" {
		hour, ampm := form.Hour, form.AMPM
		if hour == 0 {
			hour = 10
		}
		if strings.TrimSpace(ampm) == "" {
			ampm = "AM"
		}
		due, err := FollowUpInstant(form.Date, hour, form.Minute, ampm, s.loc)
		if err != nil {
			return nil, &ValidationError{Field: "nextFollowUp", Err: err}
		}
		lead.NextFollowUp = &due
	}
	return lead, nil
}

// Submit validates the form and creates a lead, or replaces the lead with
// existingID when one is given.
func (s *Service) Submit(ctx context.Context, userID string, form FormState, existingID string) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("nectar.user_id", userID),
		attribute.Bool("lead.update", existingID != ""),
	)

	lead, err := s.Build(form)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	if existingID == "" {
		return s.create(ctx, userID, lead)
	}
	lead.ID = existingID
	return s.update(ctx, userID, lead)
}

// Create persists an already built lead.
func (s *Service) Create(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	if err := Validate(lead, s.requirePhone); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, lead)
}

func (s *Service) create(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	var saved *Lead
	err := s.call(ctx, "create", func(ctx context.Context) error {
		var err error
		saved, err = s.repo.Create(ctx, userID, lead)
		return err
	})
	if err != nil {
		s.logger.Error("lead create failed", "user_id", userID, "error", err)
		return nil, err
	}
	s.logger.Info("lead created", "user_id", userID, "lead_id", saved.ID)
	s.mirror.Mirror(ctx, userID, ActionAdd, saved)
	return saved, nil
}

func (s *Service) update(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	var saved *Lead
	err := s.call(ctx, "update", func(ctx context.Context) error {
		var err error
		saved, err = s.repo.Update(ctx, userID, lead)
		return err
	})
	if err != nil {
		s.logger.Error("lead update failed", "user_id", userID, "lead_id", lead.ID, "error", err)
		return nil, err
	}
	s.mirror.Mirror(ctx, userID, ActionUpdate, saved)
	return saved, nil
}

// Get loads one lead.
func (s *Service) Get(ctx context.Context, userID, id string) (*Lead, error) {
	var lead *Lead
	err := s.call(ctx, "get", func(ctx context.Context) error {
		var err error
		lead, err = s.repo.GetByID(ctx, userID, id)
		return err
	})
	return lead, err
}

// All returns the full collection, newest first.
func (s *Service) All(ctx context.Context, userID string) ([]*Lead, error) {
	var leads []*Lead
	err := s.call(ctx, "list", func(ctx context.Context) error {
		var err error
		leads, err = s.repo.List(ctx, userID)
		return err
	})
	return leads, err
}

// List filters by a case-insensitive name match or a phone substring and by
// priority, ordered by next follow-up, latest first.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]*Lead, error) {
	all, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	priority := strings.TrimSpace(filter.Priority)
	out := make([]*Lead, 0, len(all))
	for _, lead := range all {
		if query != "" && !strings.Contains(strings.ToLower(lead.Name), query) && !strings.Contains(lead.Phone, query) {
			continue
		}
		if priority != "" && !strings.EqualFold(priority, "All") && string(lead.Priority) != priority {
			continue
		}
		out = append(out, lead)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].NextFollowUp, out[j].NextFollowUp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out, nil
}

// Today partitions the open leads into overdue, due today and upcoming.
func (s *Service) Today(ctx context.Context, userID string) (Dashboard, error) {
	all, err := s.All(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return Partition(all, s.now(), s.loc), nil
}

// Patch applies a partial update and re-validates the result.
func (s *Service) Patch(ctx context.Context, userID, id string, patch Patch) (*Lead, error) {
	return s.modify(ctx, userID, id, "leads.patch", func(lead *Lead) (*Lead, error) {
		patch.Apply(lead)
		if err := Validate(lead, s.requirePhone); err != nil {
			return nil, err
		}
		return lead, nil
	})
}

// QuickAddSale accumulates amount onto the stored order value.
func (s *Service) QuickAddSale(ctx context.Context, userID, id, amount string) (*Lead, error) {
	return s.modify(ctx, userID, id, "leads.quick_sale", func(lead *Lead) (*Lead, error) {
		return QuickAddSale(lead, amount, s.now(), s.loc)
	})
}

// ToggleProduct flips one product in the stored lead's product set.
func (s *Service) ToggleProduct(ctx context.Context, userID, id, product string) (*Lead, error) {
	if strings.TrimSpace(product) == "" {
		return nil, &ValidationError{Field: "product", Err: ErrInvalidName}
	}
	return s.modify(ctx, userID, id, "leads.toggle_product", func(lead *Lead) (*Lead, error) {
		out := ToggleProduct(lead, product)
		out.HoneyType = ""
		return out, nil
	})
}

func (s *Service) modify(ctx context.Context, userID, id, spanName string, change func(*Lead) (*Lead, error)) (*Lead, error) {
	ctx, span := leadsTracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("nectar.user_id", userID), attribute.String("lead.id", id))

	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next, err := change(current)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	return s.update(ctx, userID, next)
}

// Delete removes a lead permanently.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	ctx, span := leadsTracer.Start(ctx, "leads.delete")
	defer span.End()

	err := s.call(ctx, "delete", func(ctx context.Context) error {
		return s.repo.Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("lead deleted", "user_id", userID, "lead_id", id)
	s.mirror.Mirror(ctx, userID, ActionDelete, map[string]any{"id": id})
	return nil
}

// call runs one store operation under the store timeout, recording latency and
// mapping failures to PersistenceError.
func (s *Service) call(ctx context.Context, op string, fn func(context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveStoreLatency(op, time.Since(start).Seconds())

	if op != "get" && op != "list" {
		result := "ok"
		if err != nil {
			result = "error"
		}
		s.metrics.ObserveWrite(op, result)
	}
	return persistenceError(op, err)
}
