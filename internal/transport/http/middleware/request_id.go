package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"emportal/internal/requestctx"
)

// RequestID tags the request with a correlation ID and echoes it back
// to the browser. An inbound X-Request-ID from the reverse proxy is
// kept when it is a well-formed UUID; anything else is replaced.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), reqID)))
	})
}

// GetRequestID is a convenience re-export for handlers already
// importing this package.
func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
