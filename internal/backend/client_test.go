package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second)
}

func TestBearerDecoration(t *testing.T) {
	var sawAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Department{{DeptID: 1, DeptName: "Engineering"}})
	})

	if _, err := client.ListDepartments(context.Background(), "tok-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", sawAuth)
	}
}

func TestAnonymousRequestsAreUndecorated(t *testing.T) {
	var sawAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(LoginResult{Token: "t", Role: "ADMIN"})
	})

	if _, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth != "" {
		t.Fatalf("login must not carry a bearer token, got %q", sawAuth)
	}
}

func TestUnauthorizedKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	})

	_, err := client.MyLeaves(context.Background(), "stale")
	if !IsUnauthorized(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	be, _ := AsError(err)
	if be.Message != "token expired" {
		t.Fatalf("expected backend message surfaced, got %q", be.Message)
	}
}

func TestNetworkErrorKind(t *testing.T) {
	client := New("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.ListDepartments(context.Background(), "tok")
	be, ok := AsError(err)
	if !ok || be.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if !strings.Contains(be.Message, "check your connection") {
		t.Fatalf("expected connection message, got %q", be.Message)
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>not json</html>")
	})

	_, err := client.MyLeaves(context.Background(), "tok")
	be, ok := AsError(err)
	if !ok || be.Kind != KindMalformed {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestErrorMessageExtractionOrder(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"plain string", `backend exploded`, []string{"backend exploded"}},
		{"json string", `"quota exceeded"`, []string{"quota exceeded"}},
		{"message field", `{"message":"leave overlaps holiday"}`, []string{"leave overlaps holiday"}},
		{
			"errors array of objects",
			`{"errors":[{"message":"start date required"},{"message":"end date required"}]}`,
			[]string{"start date required", "end date required"},
		},
		{"errors array of strings", `{"errors":["bad type"]}`, []string{"bad type"}},
		{"messages array", `{"messages":["one","two"]}`, []string{"one", "two"}},
		{"message wins over errors", `{"message":"primary","errors":[{"message":"secondary"}]}`, []string{"primary"}},
		{"empty body", ``, []string{"Unprocessable Entity"}},
		{"unknown json", `{"detail":"nope"}`, []string{"Unprocessable Entity"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.MyLeaves(context.Background(), "tok")
			be, ok := AsError(err)
			if !ok {
				t.Fatalf("expected backend error, got %v", err)
			}
			if len(be.Messages) != len(tc.want) {
				t.Fatalf("expected %d messages, got %v", len(tc.want), be.Messages)
			}
			for i := range tc.want {
				if be.Messages[i] != tc.want[i] {
					t.Fatalf("message %d: expected %q, got %q", i, tc.want[i], be.Messages[i])
				}
			}
			if be.Message != tc.want[0] {
				t.Fatalf("primary message: expected %q, got %q", tc.want[0], be.Message)
			}
		})
	}
}

func TestRegisterMultipartAssembly(t *testing.T) {
	var dataPart Registration
	var imageName string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("data")), &dataPart); err != nil {
			t.Fatalf("decode data part: %v", err)
		}
		if file, header, err := r.FormFile("image"); err == nil {
			imageName = header.Filename
			file.Close()
		}
		w.WriteHeader(http.StatusCreated)
	})

	reg := Registration{Name: "Asha Rao", Email: "asha@corp.io", Password: "secret1", Age: 29, Gender: "FEMALE"}
	image := &Upload{Filename: "avatar.png", ContentType: "image/png", Reader: strings.NewReader("png-bytes")}
	if err := client.Register(context.Background(), reg, image); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dataPart != reg {
		t.Fatalf("data part mismatch: %+v", dataPart)
	}
	if imageName != "avatar.png" {
		t.Fatalf("expected image part, got %q", imageName)
	}
}

func TestDecideLeaveQuery(t *testing.T) {
	var gotPath, gotDecision string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDecision = r.URL.Query().Get("decision")
		_ = json.NewEncoder(w).Encode(Leave{LeaveID: 7, Status: LeaveApproved})
	})

	leave, err := client.DecideLeave(context.Background(), "tok", 7, LeaveApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/leaves/7/decision" || gotDecision != "APPROVED" {
		t.Fatalf("unexpected request: %s?decision=%s", gotPath, gotDecision)
	}
	if leave.Status != LeaveApproved {
		t.Fatalf("expected approved leave, got %+v", leave)
	}
}

func TestLeaveRevocable(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		leave Leave
		want  bool
	}{
		{Leave{Status: LeaveApproved, StartDate: "2025-06-16"}, true},
		{Leave{Status: LeaveApproved, StartDate: "2025-06-15"}, false},
		{Leave{Status: LeaveApproved, StartDate: "2025-06-01"}, false},
		{Leave{Status: LeavePending, StartDate: "2025-06-20"}, false},
		{Leave{Status: LeaveRevoked, StartDate: "2025-06-20"}, false},
	}
	for _, tc := range cases {
		if got := tc.leave.Revocable(today); got != tc.want {
			t.Fatalf("Revocable(%s %s) = %v; want %v", tc.leave.Status, tc.leave.StartDate, got, tc.want)
		}
	}
}
