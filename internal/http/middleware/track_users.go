package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// UserTracker records that a user is active.
type UserTracker interface {
	Touch(ctx context.Context, userID string) error
}

// TrackUsers reports each authenticated user to tracker once per process.
// Tracking failures are logged and retried on the user's next request.
func TrackUsers(tracker UserTracker, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	var seen sync.Map
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := tenancy.UserIDFromContext(r.Context()); ok && tracker != nil {
				if _, done := seen.Load(userID); !done {
					if err := tracker.Touch(r.Context(), userID); err != nil {
						logger.Warn("failed to track user", "user_id", userID, "error", err)
					} else {
						seen.Store(userID, struct{}{})
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
