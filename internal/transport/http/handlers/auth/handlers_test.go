package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"emportal/internal/backend"
	"emportal/internal/session"
	"emportal/internal/transport/http/api"
	"emportal/internal/transport/http/middleware"
)

const cookieName = "portal_session"

func newHarness(t *testing.T, backendHandler http.HandlerFunc) (*Handler, *session.Manager, *session.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(backendHandler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	mgr := session.NewManager(store, time.Hour, cookieName, false)
	return New(backend.New(server.URL, 2*time.Second), mgr), mgr, store
}

func serve(mgr *session.Manager, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.Session(mgr)(h).ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var envelope api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/portal/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginEstablishesSession(t *testing.T) {
	handler, mgr, store := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected backend path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "backend-token", "role": "ADMIN"})
	})

	rec := serve(mgr, handler.Login, loginRequest(`{"email":"admin@corp.io","password":"secret1"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if envelope := decodeEnvelope(t, rec); envelope.Redirect != HomeRedirect {
		t.Fatalf("expected home redirect, got %q", envelope.Redirect)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie to be set")
	}
	sess, err := store.Get(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("cookie does not resolve: %v", err)
	}
	if sess.Role != "ADMIN" || sess.Token != "backend-token" {
		t.Fatalf("unexpected session state: %+v", sess)
	}
}

func TestLoginBadCredentialsIsNotExpiry(t *testing.T) {
	handler, mgr, store := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
	})

	rec := serve(mgr, handler.Login, loginRequest(`{"email":"admin@corp.io","password":"wrong1"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Redirect != "" {
		t.Fatalf("bad credentials must not redirect, got %q", envelope.Redirect)
	}
	if envelope.Error == nil || envelope.Error.Code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %+v", envelope.Error)
	}
	if store.Len() != 0 {
		t.Fatal("no session should exist after a failed login")
	}
}

func TestLoginValidatesForm(t *testing.T) {
	handler, mgr, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for an invalid form")
	})

	rec := serve(mgr, handler.Login, loginRequest(`{"email":"not-an-email","password":""}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if envelope := decodeEnvelope(t, rec); envelope.Error == nil || envelope.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", envelope.Error)
	}
}

func TestLoginWhileSignedInBouncesHome(t *testing.T) {
	handler, mgr, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called when already signed in")
	})

	sess, err := mgr.Establish(context.Background(), "user@corp.io", "EMPLOYEE", "tok")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	req := loginRequest(`{"email":"user@corp.io","password":"secret1"}`)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.ID})

	rec := serve(mgr, handler.Login, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if envelope := decodeEnvelope(t, rec); envelope.Redirect != HomeRedirect {
		t.Fatalf("expected home redirect, got %q", envelope.Redirect)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	handler, mgr, store := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	sess, err := mgr.Establish(context.Background(), "user@corp.io", "EMPLOYEE", "tok")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/portal/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.ID})

	rec := serve(mgr, handler.Logout, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session destroyed, got %d rows", store.Len())
	}
}

func registerRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/portal/auth/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	handler, mgr, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for an invalid form")
	})

	rec := serve(mgr, handler.Register, registerRequest(t, map[string]string{
		"name": "Jess Morgan", "email": "jess@corp.io",
		"password": "secret1", "confirmPassword": "secret2",
		"age": "30", "gender": "FEMALE",
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterForwardsToBackend(t *testing.T) {
	var got backend.Registration
	handler, mgr, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Fatalf("unexpected backend path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("data")), &got); err != nil {
			t.Fatalf("decode data part: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	rec := serve(mgr, handler.Register, registerRequest(t, map[string]string{
		"name": "Jess Morgan", "email": "jess@corp.io",
		"password": "secret1", "confirmPassword": "secret1",
		"age": "30", "gender": "FEMALE",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Email != "jess@corp.io" || got.Age != 30 {
		t.Fatalf("unexpected forwarded registration: %+v", got)
	}
}

func TestSessionProbe(t *testing.T) {
	handler, mgr, _ := newHarness(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := serve(mgr, handler.Session, httptest.NewRequest(http.MethodGet, "/portal/session", nil))
	var anon struct {
		Authenticated bool `json:"authenticated"`
	}
	envelope := decodeEnvelope(t, rec)
	raw, _ := json.Marshal(envelope.Data)
	_ = json.Unmarshal(raw, &anon)
	if anon.Authenticated {
		t.Fatal("expected anonymous probe")
	}

	sess, err := mgr.Establish(context.Background(), "user@corp.io", "EMPLOYEE", "tok")
	if err != nil {
		t.Fatalf("establish: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/portal/session", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sess.ID})
	rec = serve(mgr, handler.Session, req)

	var info struct {
		Authenticated bool   `json:"authenticated"`
		Role          string `json:"role"`
	}
	envelope = decodeEnvelope(t, rec)
	raw, _ = json.Marshal(envelope.Data)
	_ = json.Unmarshal(raw, &info)
	if !info.Authenticated || info.Role != "EMPLOYEE" {
		t.Fatalf("unexpected probe result: %+v", info)
	}
}
