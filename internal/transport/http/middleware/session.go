package middleware

import (
	"context"
	"net/http"

	"emportal/internal/session"
	"emportal/internal/transport/http/api"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

// Session resolves the request's cookie into a session and stashes it
// in the context. Anonymous requests pass through untouched.
func Session(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := mgr.Resolve(r.Context(), r); ok {
				ctx := context.WithValue(r.Context(), ctxKeySession, sess)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetSession(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(session.Session)
	return sess, ok
}

// RequireSession guards views that need any authenticated user; the
// anonymous redirect goes to login, not to the unauthorized view.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			api.FailRedirect(w, http.StatusUnauthorized, "unauthorized",
				"authentication required", "/login", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles guards views that declare a required role set. An empty
// set always permits; a role mismatch keeps the session and signals the
// unauthorized view instead of login.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if resolved, ok := GetSession(r.Context()); ok {
				sess = &resolved
			}
			switch session.Authorize(sess, roles) {
			case session.Allow:
				next.ServeHTTP(w, r)
			case session.RequireLogin:
				api.FailRedirect(w, http.StatusUnauthorized, "unauthorized",
					"authentication required", "/login", GetRequestID(r.Context()))
			default:
				api.FailRedirect(w, http.StatusForbidden, "forbidden",
					"insufficient role", "/unauthorized", GetRequestID(r.Context()))
			}
		})
	}
}
