// Package session owns the portal's authentication state: the browser
// holds an opaque cookie, the store holds the cached role, email and
// backend token behind it. The only transitions are login (all fields
// set) and logout (row deleted), the latter also forced when a backend
// call observes a 401.
package session

import (
	"errors"
	"time"
)

// Roles returned by the backend's login endpoint.
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID           string
	Email        string
	Role         string
	Token        string
	TokenExpires time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the session or its cached token lapsed.
func (s Session) Expired(now time.Time) bool {
	if !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) {
		return true
	}
	if !s.TokenExpires.IsZero() && now.After(s.TokenExpires) {
		return true
	}
	return false
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Decision is the outcome of evaluating a route's required roles.
type Decision int

const (
	// Allow admits the request.
	Allow Decision = iota
	// RequireLogin redirects to the login view.
	RequireLogin
	// Forbidden redirects to the unauthorized view; the session stays.
	Forbidden
)

// Authorize evaluates a required-role set. An empty set always permits;
// a non-empty set permits only an authenticated session whose role is a
// member. sess is nil for anonymous requests.
func Authorize(sess *Session, roles []string) Decision {
	if len(roles) == 0 {
		return Allow
	}
	if sess == nil {
		return RequireLogin
	}
	for _, role := range roles {
		if sess.Role == role {
			return Allow
		}
	}
	return Forbidden
}
