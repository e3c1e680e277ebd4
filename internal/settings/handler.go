package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// SheetTester sends a synchronous test event to a candidate mirror endpoint.
type SheetTester interface {
	Test(ctx context.Context, sheetURL string) error
}

// Handler provides HTTP endpoints for user settings.
type Handler struct {
	store     *Store
	tester    SheetTester
	sheetHost string
	logger    *logging.Logger
}

// NewHandler creates a settings handler. sheetHost restricts accepted sheet URLs.
func NewHandler(store *Store, tester SheetTester, sheetHost string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, tester: tester, sheetHost: sheetHost, logger: logger}
}

type settingsResponse struct {
	Team     []string `json:"team"`
	Sentinel string   `json:"sentinel"`
	SheetURL string   `json:"sheetUrl"`
}

func (h *Handler) present(s *Settings) settingsResponse {
	team := s.Team
	if team == nil {
		team = []string{}
	}
	return settingsResponse{Team: team, Sentinel: h.store.Sentinel(), SheetURL: s.SheetURL}
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	current, err := h.store.Get(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(current))
}

// AddMember handles POST /settings/team.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	updated, err := h.store.AddMember(r.Context(), userID, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(updated))
}

// RemoveMember handles DELETE /settings/team/{name}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	updated, err := h.store.RemoveMember(r.Context(), userID, chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(updated))
}

// SetSheet handles PUT /settings/sheet. The URL is stored only after a test
// event could be sent to it.
func (h *Handler) SetSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := ValidateSheetURL(req.URL, h.sheetHost); err != nil {
		h.fail(w, err)
		return
	}
	if h.tester != nil {
		if err := h.tester.Test(r.Context(), req.URL); err != nil {
			h.logger.Warn("sheet test event failed", "user_id", userID, "error", err)
			http.Error(w, "could not reach sheet url", http.StatusBadGateway)
			return
		}
	}
	updated, err := h.store.SetSheetURL(r.Context(), userID, req.URL)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(updated))
}

// ClearSheet handles DELETE /settings/sheet.
func (h *Handler) ClearSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	updated, err := h.store.SetSheetURL(r.Context(), userID, "")
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(updated))
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
	}
	return userID, ok
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBlankMember), errors.Is(err, ErrInvalidSheetURL):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrMemberNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrProtectedMember):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("settings request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
