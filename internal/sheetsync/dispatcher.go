package sheetsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/wolfman30/nectar-lead-tracker/internal/observability/metrics"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

var tracer = otel.Tracer("nectar/sheetsync")

// URLResolver looks up a user's mirror endpoint. "" means mirroring is off.
type URLResolver interface {
	SheetURL(ctx context.Context, userID string) (string, error)
}

// Dispatcher fans lead writes out to the configured transport in the
// background. It satisfies leads.Mirror.
type Dispatcher struct {
	resolver  URLResolver
	transport Transport
	direct    *WebhookTransport
	logger    *logging.Logger
	metrics   *metrics.LeadMetrics
	timeout   time.Duration
	slots     *semaphore.Weighted
	now       func() time.Time
	wg        sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTimeout bounds each background delivery.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithMaxInFlight caps concurrent deliveries; extra events are dropped.
func WithMaxInFlight(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher creates a dispatcher. direct is used for synchronous test
// sends regardless of transport; when transport is nil direct is used for
// everything.
func NewDispatcher(resolver URLResolver, transport Transport, direct *WebhookTransport, logger *logging.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if direct == nil {
		direct = NewWebhookTransport(nil, 5*time.Second, logger)
	}
	if transport == nil {
		transport = direct
	}
	d := &Dispatcher{
		resolver:  resolver,
		transport: transport,
		direct:    direct,
		logger:    logger,
		timeout:   5 * time.Second,
		slots:     semaphore.NewWeighted(16),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mirror schedules delivery of record with action and returns immediately.
// Nothing about the delivery is reported back to the caller.
func (d *Dispatcher) Mirror(ctx context.Context, userID, action string, record any) {
	sheetURL, err := d.resolver.SheetURL(ctx, userID)
	if err != nil {
		d.logger.Warn("sheet url lookup failed", "user_id", userID, "error", err)
		d.metrics.ObserveMirror(d.transport.Name(), "error")
		return
	}
	if sheetURL == "" {
		return
	}
	payload, err := Payload(record, action, d.now())
	if err != nil {
		d.logger.Warn("sheet payload build failed", "user_id", userID, "action", action, "error", err)
		d.metrics.ObserveMirror(d.transport.Name(), "error")
		return
	}
	if !d.slots.TryAcquire(1) {
		d.logger.Warn("sheet mirror saturated, dropping event", "user_id", userID, "action", action)
		d.metrics.ObserveMirror(d.transport.Name(), "dropped")
		return
	}

	env := Envelope{UserID: userID, URL: sheetURL, Action: action, Payload: payload}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.slots.Release(1)
		d.deliver(env)
	}()
}

func (d *Dispatcher) deliver(env Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "sheetsync.deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("sheetsync.transport", d.transport.Name()),
		attribute.String("sheetsync.action", env.Action),
	)

	if err := d.transport.Deliver(ctx, env); err != nil {
		span.RecordError(err)
		d.logger.Warn("sheet mirror delivery failed", "user_id", env.UserID, "action", env.Action, "transport", d.transport.Name(), "error", err)
		d.metrics.ObserveMirror(d.transport.Name(), "error")
		return
	}
	d.metrics.ObserveMirror(d.transport.Name(), "sent")
}

// Test posts a TEST event straight to sheetURL and waits for the send.
func (d *Dispatcher) Test(ctx context.Context, sheetURL string) error {
	payload, err := TestPayload(d.now())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.direct.Deliver(ctx, Envelope{URL: sheetURL, Action: ActionTest, Payload: payload}); err != nil {
		d.metrics.ObserveMirror(d.direct.Name(), "error")
		return fmt.Errorf("sheetsync: test send: %w", err)
	}
	d.metrics.ObserveMirror(d.direct.Name(), "sent")
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
