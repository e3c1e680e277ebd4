package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

type requestInfoKey struct{}

// requestInfo lets inner middleware report the resolved user back to the
// request logger, which only sees the outer request.
type requestInfo struct {
	userID string
}

// withUser scopes r to userID and records it for the request log line.
func withUser(r *http.Request, userID string) *http.Request {
	if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
		info.userID = userID
	}
	return r.WithContext(tenancy.WithUserID(r.Context(), userID))
}

// RequestLogger emits one structured log line per completed request and
// echoes the request id back in X-Request-ID.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Component("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			info := &requestInfo{}
			if userID, ok := tenancy.UserIDFromContext(r.Context()); ok {
				info.userID = userID
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"request_id", reqID,
				"user_id", info.userID,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				attrs = append(attrs, "trace_id", sc.TraceID().String())
			}
			logger.Info("request completed", attrs...)
		})
	}
}
