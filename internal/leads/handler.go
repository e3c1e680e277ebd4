package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

const maxImportBytes = 5 << 20

// Handler handles HTTP requests for leads
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type leadResponse struct {
	*Lead
	FollowUp *ClockFields `json:"followUp,omitempty"`
}

func (h *Handler) present(lead *Lead) leadResponse {
	resp := leadResponse{Lead: lead}
	if lead.NextFollowUp != nil {
		fields := SplitFollowUp(*lead.NextFollowUp, h.service.Location())
		resp.FollowUp = &fields
	}
	return resp
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads []*Lead `json:"leads"`
	Count int     `json:"count"`
}

// ListLeads handles GET /leads
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	filter := ListFilter{
		Query:    r.URL.Query().Get("q"),
		Priority: r.URL.Query().Get("priority"),
	}
	leads, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		h.fail(w, "failed to list leads", err)
		return
	}
	writeJSON(w, http.StatusOK, ListLeadsResponse{Leads: leads, Count: len(leads)})
}

// CreateLead handles POST /leads
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var form FormState
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	lead, err := h.service.Submit(r.Context(), userID, form, "")
	if err != nil {
		h.fail(w, "failed to create lead", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.present(lead))
}

// GetLead handles GET /leads/{id}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	lead, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "failed to load lead", err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(lead))
}

// UpdateLead handles PUT /leads/{id} with a full form.
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var form FormState
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	lead, err := h.service.Submit(r.Context(), userID, form, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "failed to update lead", err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(lead))
}

// PatchLead handles PATCH /leads/{id}.
func (h *Handler) PatchLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	lead, err := h.service.Patch(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, "failed to patch lead", err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(lead))
}

// DeleteLead handles DELETE /leads/{id}.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, "failed to delete lead", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuickSale handles POST /leads/{id}/quick-sale.
func (h *Handler) QuickSale(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount any `json:"amount"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	amount := ""
	if req.Amount != nil {
		amount = fmt.Sprint(req.Amount)
	}
	lead, err := h.service.QuickAddSale(r.Context(), userID, chi.URLParam(r, "id"), amount)
	if err != nil {
		h.fail(w, "failed to record quick sale", err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(lead))
}

// ToggleProduct handles POST /leads/{id}/products/toggle.
func (h *Handler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Product string `json:"product"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	lead, err := h.service.ToggleProduct(r.Context(), userID, chi.URLParam(r, "id"), req.Product)
	if err != nil {
		h.fail(w, "failed to toggle product", err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(lead))
}

// Today handles GET /leads/today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	board, err := h.service.Today(r.Context(), userID)
	if err != nil {
		h.fail(w, "failed to load dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Catalog handles GET /leads/products.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"products": Catalog,
		"subTypes": map[LeadType][]string{
			LeadTypeB2C:          {},
			LeadTypeB2B:          SubTypes(LeadTypeB2B),
			LeadTypeCollaborator: SubTypes(LeadTypeCollaborator),
		},
	})
}

// ExportCSV handles GET /leads/export.csv.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	leads, err := h.service.All(r.Context(), userID)
	if err != nil {
		h.fail(w, "failed to export leads", err)
		return
	}
	name := ExportFilename(h.service.Now(), h.service.Location(), "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := WriteCSV(w, leads); err != nil {
		h.logger.Error("failed to write csv", "error", err)
	}
}

// ImportCSV handles POST /leads/import. The body is either raw CSV or a
// multipart form with a "file" field.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var body io.Reader = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			http.Error(w, "invalid upload", http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
	}
	result, err := h.service.Import(r.Context(), userID, body)
	if err != nil {
		h.logger.Error("csv import failed", "user_id", userID, "imported", result.Imported, "error", err)
		status := statusFor(err)
		writeJSON(w, status, map[string]any{
			"error":    err.Error(),
			"imported": result.Imported,
			"skipped":  result.Skipped,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// fail writes err's status. Server-side failures are logged and answered with
// msg only so store details stay out of responses.
func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "status", status, "error", err)
		http.Error(w, msg, status)
		return
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrLeadNotFound):
		return http.StatusNotFound
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case IsPersistence(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
