package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestEstablishAndResolve(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewManager(store, time.Hour, "portal_session", false)

	exp := time.Now().Add(30 * time.Minute).UTC()
	sess, err := mgr.Establish(context.Background(), "asha@corp.io", RoleAdmin, signedToken(t, exp))
	if err != nil {
		t.Fatalf("establish failed: %v", err)
	}
	if sess.ID == "" || sess.Role != RoleAdmin || sess.Email != "asha@corp.io" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.TokenExpires.IsZero() || sess.TokenExpires.Sub(exp) > time.Second {
		t.Fatalf("expected token expiry from jwt claims, got %v", sess.TokenExpires)
	}

	req := httptest.NewRequest(http.MethodGet, "/portal/employees", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: sess.ID})
	resolved, ok := mgr.Resolve(context.Background(), req)
	if !ok {
		t.Fatal("expected session to resolve")
	}
	if resolved.Token != sess.Token {
		t.Fatal("token did not survive the round trip")
	}
}

func TestResolveRejectsMissingAndUnknownCookies(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Hour, "portal_session", false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := mgr.Resolve(context.Background(), req); ok {
		t.Fatal("expected no session without a cookie")
	}

	req.AddCookie(&http.Cookie{Name: "portal_session", Value: "nope"})
	if _, ok := mgr.Resolve(context.Background(), req); ok {
		t.Fatal("expected no session for an unknown id")
	}
}

func TestResolveDestroysExpiredSessions(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewManager(store, time.Hour, "portal_session", false)

	// Token already expired even though the session TTL has not run out.
	sess, err := mgr.Establish(context.Background(), "a@b.c", RoleEmployee, signedToken(t, time.Now().Add(-time.Minute)))
	if err != nil {
		t.Fatalf("establish failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: sess.ID})
	if _, ok := mgr.Resolve(context.Background(), req); ok {
		t.Fatal("expected expired session to be rejected")
	}
	if store.Len() != 0 {
		t.Fatal("expected expired session row to be deleted")
	}
}

func TestDestroyIsLogout(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewManager(store, time.Hour, "portal_session", false)
	sess, _ := mgr.Establish(context.Background(), "a@b.c", RoleEmployee, signedToken(t, time.Now().Add(time.Hour)))

	if err := mgr.Destroy(context.Background(), sess.ID); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: sess.ID})
	if _, ok := mgr.Resolve(context.Background(), req); ok {
		t.Fatal("expected destroyed session to be gone")
	}
}

func TestTokenWithoutExpClaim(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Hour, "portal_session", false)
	sess, err := mgr.Establish(context.Background(), "a@b.c", RoleEmployee, "not-a-jwt")
	if err != nil {
		t.Fatalf("establish failed: %v", err)
	}
	// Session TTL still bounds the session when exp is unreadable.
	if !sess.TokenExpires.IsZero() {
		t.Fatalf("expected zero token expiry, got %v", sess.TokenExpires)
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatal("expected session TTL to apply")
	}
}

func TestAuthorize(t *testing.T) {
	admin := &Session{Role: RoleAdmin}
	employee := &Session{Role: RoleEmployee}

	cases := []struct {
		name  string
		sess  *Session
		roles []string
		want  Decision
	}{
		{"empty roles permit anonymous", nil, nil, Allow},
		{"empty roles permit any session", employee, nil, Allow},
		{"anonymous needs login", nil, []string{RoleAdmin}, RequireLogin},
		{"admin route denies employee", employee, []string{RoleAdmin}, Forbidden},
		{"admin route permits admin", admin, []string{RoleAdmin}, Allow},
		{"multi-role set permits member", employee, []string{RoleAdmin, RoleEmployee}, Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.sess, tc.roles); got != tc.want {
				t.Fatalf("Authorize = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestSweepRemovesExpiredRows(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewManager(store, time.Millisecond, "portal_session", false)
	_, _ = mgr.Establish(context.Background(), "a@b.c", RoleEmployee, signedToken(t, time.Now().Add(time.Hour)))

	time.Sleep(5 * time.Millisecond)
	removed, err := mgr.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 || store.Len() != 0 {
		t.Fatalf("expected one expired row removed, got %d (len %d)", removed, store.Len())
	}
}

func TestDestroyHooksFireForEveryExit(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewManager(store, 10*time.Millisecond, "portal_session", false)

	var gone []string
	mgr.OnDestroy(func(id string) { gone = append(gone, id) })

	byLogout, _ := mgr.Establish(context.Background(), "a@b.c", RoleEmployee, "tok")
	if err := mgr.Destroy(context.Background(), byLogout.ID); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if len(gone) != 1 || gone[0] != byLogout.ID {
		t.Fatalf("expected hook fired for logout, got %v", gone)
	}

	bySweep, _ := mgr.Establish(context.Background(), "b@b.c", RoleEmployee, "tok")
	time.Sleep(20 * time.Millisecond)
	if _, err := mgr.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(gone) != 2 || gone[1] != bySweep.ID {
		t.Fatalf("expected hook fired for swept session, got %v", gone)
	}
}
