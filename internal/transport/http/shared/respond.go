package shared

import (
	"net/http"

	"emportal/internal/backend"
	"emportal/internal/requestctx"
	"emportal/internal/session"
	"emportal/internal/transport/http/api"
)

const (
	// LoginRedirect is where the front end goes when the gate observes
	// an expired session.
	LoginRedirect = "/login?reason=session-expired"
	// UnauthorizedRedirect is the role-mismatch destination; the session
	// itself survives.
	UnauthorizedRedirect = "/unauthorized"
)

// RespondBackendError reduces a failed backend call to the envelope the
// front end displays. A 401 is the forced gate transition: the session
// is destroyed, the cookie cleared and a login redirect signalled. The
// login and register handlers must NOT route their own backend errors
// through here, or bad credentials would masquerade as expiry.
func RespondBackendError(w http.ResponseWriter, r *http.Request, mgr *session.Manager, sess session.Session, err error, code string) {
	requestID := requestctx.GetRequestID(r.Context())

	be, ok := backend.AsError(err)
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected failure", requestID)
		return
	}

	switch be.Kind {
	case backend.KindAuthorization:
		if sess.ID != "" {
			_ = mgr.Destroy(r.Context(), sess.ID)
		}
		mgr.ClearCookie(w)
		api.FailRedirect(w, http.StatusUnauthorized, "session_expired",
			"Your session has expired. Please sign in again.", LoginRedirect, requestID)
	case backend.KindNetwork:
		api.FailWithMessages(w, http.StatusBadGateway, "network_error", be.Messages, requestID)
	case backend.KindMalformed:
		api.FailWithMessages(w, http.StatusBadGateway, "bad_upstream_response", be.Messages, requestID)
	default:
		status := be.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		api.FailWithMessages(w, status, code, be.Messages, requestID)
	}
}
