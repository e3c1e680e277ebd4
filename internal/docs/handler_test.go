package docs

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
)

func newDocsRouter(svc *Service) http.Handler {
	h := NewHandler(svc, nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(tenancy.WithUserID(r.Context(), "user-1")))
		})
	})
	r.Get("/docs", h.List)
	r.Post("/docs", h.Create)
	r.Post("/docs/upload", h.Upload)
	r.Put("/docs/{id}", h.Update)
	r.Delete("/docs/{id}", h.Delete)
	r.Get("/docs/export.md", h.Export)
	r.Get("/docs/overview", h.Overview)
	return r
}

func TestDocsHandlerLifecycle(t *testing.T) {
	router := newDocsRouter(newTestService(newMemRepo(), nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/docs", strings.NewReader(`{"content":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/docs", strings.NewReader(`{"content":"Queen spotted"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, TypeText, created.Type)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/docs/"+created.ID, strings.NewReader(`{"content":"Queen marked"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.IsEdited)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/export.md", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="documentation_2024-06-15.md"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Queen marked")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/docs/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/docs/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, filename, contentType, data string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocsHandlerUpload(t *testing.T) {
	store := &fakeMedia{}
	router := newDocsRouter(newTestService(newMemRepo(), store))

	body, ct := multipartBody(t, "hive.jpg", "image/jpeg", "jpeg-bytes")
	req := httptest.NewRequest(http.MethodPost, "/docs/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, TypeImage, created.Type)
	assert.Equal(t, "hive.jpg", created.Content)
	require.Len(t, store.puts, 1)
	assert.Equal(t, "image/jpeg", store.puts[0].ContentType)
}

func TestDocsHandlerUploadDisabled(t *testing.T) {
	router := newDocsRouter(newTestService(newMemRepo(), nil))
	body, ct := multipartBody(t, "clip.mp4", "video/mp4", "mp4")
	req := httptest.NewRequest(http.MethodPost, "/docs/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocsHandlerRequiresUser(t *testing.T) {
	h := NewHandler(newTestService(newMemRepo(), nil), nil)
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
