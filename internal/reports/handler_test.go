package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/notify"
	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
)

type stubSource struct {
	leads []*leads.Lead
	err   error
}

func (s *stubSource) All(context.Context, string) ([]*leads.Lead, error) { return s.leads, s.err }
func (s *stubSource) Now() time.Time                                     { return fixedNow }
func (s *stubSource) Location() *time.Location                           { return time.UTC }

type recordingBroadcaster struct {
	recipients []string
	msg        notify.EmailMessage
	err        error
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, recipients []string, msg notify.EmailMessage) error {
	b.recipients = recipients
	b.msg = msg
	return b.err
}

func withUser(r *http.Request) *http.Request {
	return r.WithContext(tenancy.WithUserID(r.Context(), "user-1"))
}

func TestGetWeeklyReturnsText(t *testing.T) {
	svc := NewService(&stubSource{leads: scenarioLeads()}, nil, nil, nil)
	h := NewHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.GetWeekly(rec, withUser(httptest.NewRequest(http.MethodGet, "/reports/weekly", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.String() != Generate(scenarioLeads(), fixedNow, time.UTC) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestGetWeeklyRequiresUser(t *testing.T) {
	h := NewHandler(NewService(&stubSource{}, nil, nil, nil), nil)
	rec := httptest.NewRecorder()
	h.GetWeekly(rec, httptest.NewRequest(http.MethodGet, "/reports/weekly", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGetWeeklyStoreTimeout(t *testing.T) {
	source := &stubSource{err: &leads.PersistenceError{Op: "list", Timeout: true, Err: context.DeadlineExceeded}}
	h := NewHandler(NewService(source, nil, nil, nil), nil)
	rec := httptest.NewRecorder()
	h.GetWeekly(rec, withUser(httptest.NewRequest(http.MethodGet, "/reports/weekly", nil)))
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "lead store timed out" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestEmailWeeklySendsTextAndHTML(t *testing.T) {
	mailer := &recordingBroadcaster{}
	svc := NewService(&stubSource{leads: scenarioLeads()}, mailer, []string{"owner@example.com", "ops@example.com"}, nil)
	h := NewHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.EmailWeekly(rec, withUser(httptest.NewRequest(http.MethodPost, "/reports/weekly/email", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["recipients"] != 2 {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
	if len(mailer.recipients) != 2 {
		t.Fatalf("expected both recipients, got %v", mailer.recipients)
	}
	if mailer.msg.Category != notify.CategoryWeeklyReport {
		t.Fatalf("expected weekly report category, got %q", mailer.msg.Category)
	}
	if mailer.msg.Subject != "Weekly Report (Jun 8 - Jun 15, 2024)" {
		t.Fatalf("unexpected subject %q", mailer.msg.Subject)
	}
	if !strings.Contains(mailer.msg.Body, "- A: 1000") || !strings.Contains(mailer.msg.HTML, "<h2>4. Wins</h2>") {
		t.Fatalf("unexpected message %+v", mailer.msg)
	}
}

func TestEmailWeeklyWithoutRecipients(t *testing.T) {
	h := NewHandler(NewService(&stubSource{}, &recordingBroadcaster{}, nil, nil), nil)
	rec := httptest.NewRecorder()
	h.EmailWeekly(rec, withUser(httptest.NewRequest(http.MethodPost, "/reports/weekly/email", nil)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestEmailWeeklySendFailure(t *testing.T) {
	mailer := &recordingBroadcaster{err: errors.New("smtp down")}
	svc := NewService(&stubSource{}, mailer, []string{"owner@example.com"}, nil)
	if _, err := svc.Email(context.Background(), "user-1"); err == nil {
		t.Fatal("expected send error")
	}
}
