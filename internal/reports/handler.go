package reports

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// Handler serves the weekly report.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// GetWeekly handles GET /reports/weekly and returns the report as plain text.
func (h *Handler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	report, err := h.service.Weekly(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report.String()))
}

// EmailWeekly handles POST /reports/weekly/email.
func (h *Handler) EmailWeekly(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	sent, err := h.service.Email(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recipients": sent})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("weekly report failed", "error", err)
	switch {
	case errors.Is(err, ErrNoRecipients):
		http.Error(w, ErrNoRecipients.Error(), http.StatusServiceUnavailable)
	case leads.IsTimeout(err):
		http.Error(w, "lead store timed out", http.StatusGatewayTimeout)
	case leads.IsPersistence(err):
		http.Error(w, "lead store unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "failed to produce report", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
