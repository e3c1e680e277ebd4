package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
)

type fakeTester struct {
	urls []string
	err  error
}

func (f *fakeTester) Test(_ context.Context, sheetURL string) error {
	f.urls = append(f.urls, sheetURL)
	return f.err
}

func newTestRouter(t *testing.T, tester SheetTester) (http.Handler, *Store) {
	t.Helper()
	store, _ := newTestStore(t)
	h := NewHandler(store, tester, "script.google.com", nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(tenancy.WithUserID(r.Context(), "user-1")))
		})
	})
	r.Get("/settings", h.GetSettings)
	r.Post("/settings/team", h.AddMember)
	r.Delete("/settings/team/{name}", h.RemoveMember)
	r.Put("/settings/sheet", h.SetSheet)
	r.Delete("/settings/sheet", h.ClearSheet)
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestSettingsHandlerRoster(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got settingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"AD", "Rohan", "Akshay"}, got.Team)
	assert.Equal(t, "AD", got.Sentinel)

	rec = do(t, router, http.MethodPost, "/settings/team", `{"name":"Meera"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/settings/team", `{"name":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/settings/team/AD", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodDelete, "/settings/team/Rohan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"AD", "Akshay", "Meera"}, got.Team)

	rec = do(t, router, http.MethodDelete, "/settings/team/Ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetSheetTestsBeforeStoring(t *testing.T) {
	tester := &fakeTester{}
	router, store := newTestRouter(t, tester)
	const sheet = "https://script.google.com/macros/s/abc/exec"

	rec := do(t, router, http.MethodPut, "/settings/sheet", `{"url":"`+sheet+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{sheet}, tester.urls)
	stored, _ := store.SheetURL(context.Background(), "user-1")
	assert.Equal(t, sheet, stored)

	rec = do(t, router, http.MethodDelete, "/settings/sheet", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stored, _ = store.SheetURL(context.Background(), "user-1")
	assert.Empty(t, stored)
}

func TestSetSheetRejectsInvalidURL(t *testing.T) {
	tester := &fakeTester{}
	router, _ := newTestRouter(t, tester)
	rec := do(t, router, http.MethodPut, "/settings/sheet", `{"url":"https://example.com/hook"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tester.urls)
}

func TestSetSheetNotStoredWhenTestFails(t *testing.T) {
	tester := &fakeTester{err: errors.New("dial tcp: refused")}
	router, store := newTestRouter(t, tester)
	rec := do(t, router, http.MethodPut, "/settings/sheet", `{"url":"https://script.google.com/x"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	stored, _ := store.SheetURL(context.Background(), "user-1")
	assert.Empty(t, stored)
}
