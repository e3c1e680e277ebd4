package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
)

type countingTracker struct {
	calls map[string]int
	err   error
}

func (c *countingTracker) Touch(_ context.Context, userID string) error {
	c.calls[userID]++
	return c.err
}

func TestTrackUsersOncePerUser(t *testing.T) {
	tracker := &countingTracker{calls: map[string]int{}}
	h := TrackUsers(tracker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, user := range []string{"a", "a", "b", ""} {
		req := httptest.NewRequest(http.MethodGet, "/leads", nil)
		if user != "" {
			req = req.WithContext(tenancy.WithUserID(req.Context(), user))
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if tracker.calls["a"] != 1 || tracker.calls["b"] != 1 || len(tracker.calls) != 2 {
		t.Fatalf("unexpected tracking calls %v", tracker.calls)
	}
}

func TestTrackUsersRetriesAfterFailure(t *testing.T) {
	tracker := &countingTracker{calls: map[string]int{}, err: errors.New("redis down")}
	h := TrackUsers(tracker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/leads", nil)
		h.ServeHTTP(httptest.NewRecorder(), req.WithContext(tenancy.WithUserID(req.Context(), "a")))
	}
	if tracker.calls["a"] != 2 {
		t.Fatalf("expected retry on next request, got %d calls", tracker.calls["a"])
	}
}
