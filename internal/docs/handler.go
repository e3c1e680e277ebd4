package docs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/nectar-lead-tracker/internal/media"
	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

const maxUploadBytes = 50 << 20

// Handler serves the documentation log.
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

// GET /docs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type contentRequest struct {
	Content string `json:"content"`
}

// POST /docs
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	entry, err := h.service.AddText(r.Context(), userID, req.Content)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// POST /docs/upload (multipart field "file")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	entry, err := h.service.Upload(r.Context(), userID, media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// PUT /docs/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	entry, err := h.service.UpdateContent(r.Context(), userID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DELETE /docs/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /docs/export.md
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	name, body, err := h.service.Export(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write([]byte(body))
}

// GET /docs/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
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
	case errors.Is(err, ErrEmptyContent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEntryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, media.ErrUploadsDisabled):
		http.Error(w, media.ErrUploadsDisabled.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error("documentation request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
