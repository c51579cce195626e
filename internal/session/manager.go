package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, sess Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

type Manager struct {
	store        Store
	ttl          time.Duration
	cookieName   string
	cookieSecure bool
	onDestroy    []func(id string)
}

func NewManager(store Store, ttl time.Duration, cookieName string, cookieSecure bool) *Manager {
	return &Manager{store: store, ttl: ttl, cookieName: cookieName, cookieSecure: cookieSecure}
}

// Establish performs the ANONYMOUS -> AUTHENTICATED(role) transition
// after a successful backend login: all fields are persisted at once so
// the state survives a browser reload and a portal restart.
func (m *Manager) Establish(ctx context.Context, email, role, token string) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		Token:        token,
		TokenExpires: tokenDeadline(token),
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Resolve maps the request's cookie back to a live session. Expired
// rows are destroyed on sight.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}
	sess, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		return Session{}, false
	}
	if sess.Expired(time.Now().UTC()) {
		_ = m.store.Delete(ctx, sess.ID)
		m.notifyDestroyed(sess.ID)
		return Session{}, false
	}
	return sess, true
}

// OnDestroy registers a hook fired whenever a session leaves the store,
// whether by logout, an observed 401 or expiry. Callers holding
// per-session state (the roster cache) release it here. Register
// before serving; registration is not synchronized.
func (m *Manager) OnDestroy(hook func(id string)) {
	m.onDestroy = append(m.onDestroy, hook)
}

func (m *Manager) notifyDestroyed(id string) {
	for _, hook := range m.onDestroy {
		hook(id)
	}
}

// Destroy performs the AUTHENTICATED -> ANONYMOUS transition: explicit
// logout, or forced when a decorated request observed a 401.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	err := m.store.Delete(ctx, id)
	m.notifyDestroyed(id)
	return err
}

func (m *Manager) SetCookie(w http.ResponseWriter, sess Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sweep deletes expired rows and fires the destroy hooks for each;
// run periodically from main.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	ids, err := m.store.DeleteExpired(ctx, time.Now().UTC())
	for _, id := range ids {
		m.notifyDestroyed(id)
	}
	return len(ids), err
}

// tokenDeadline reads the exp claim without verifying the signature:
// the portal never holds the backend's signing secret, it only bounds
// session life by what the token itself declares.
func tokenDeadline(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time.UTC()
}
