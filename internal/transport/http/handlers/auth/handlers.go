// Package auth owns the portal's sign-in surface: login, logout,
// registration and the session probe the front end boots from.
package auth

import (
	"encoding/json"
	"net/http"

	"emportal/internal/backend"
	"emportal/internal/requestctx"
	"emportal/internal/session"
	"emportal/internal/transport/http/api"
	"emportal/internal/transport/http/middleware"
	"emportal/internal/transport/http/shared"
)

// HomeRedirect is where an already signed-in visitor is bounced when
// they land on a public screen.
const HomeRedirect = "/employees"

const maxRegisterForm = 8 << 20

type Handler struct {
	backend  *backend.Client
	sessions *session.Manager
}

func New(client *backend.Client, sessions *session.Manager) *Handler {
	return &Handler{backend: client, sessions: sessions}
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
}

// Login exchanges credentials for a portal session. A backend 401 here
// means bad credentials, never expiry, so it must not go through the
// shared gate handling.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	if sess, ok := middleware.GetSession(r.Context()); ok {
		api.WriteJSON(w, http.StatusOK, api.Envelope{
			Success:   true,
			Data:      sessionInfo{Authenticated: true, Email: sess.Email, Role: sess.Role},
			Redirect:  HomeRedirect,
			RequestID: requestID,
		})
		return
	}

	var form loginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}

	result, err := h.backend.Login(r.Context(), backend.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.failLogin(w, err, requestID)
		return
	}

	sess, err := h.sessions.Establish(r.Context(), form.Email, result.Role, result.Token)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "could not establish session", requestID)
		return
	}
	h.sessions.SetCookie(w, sess)

	api.WriteJSON(w, http.StatusOK, api.Envelope{
		Success:   true,
		Data:      sessionInfo{Authenticated: true, Email: sess.Email, Role: sess.Role},
		Redirect:  HomeRedirect,
		RequestID: requestID,
	})
}

func (h *Handler) failLogin(w http.ResponseWriter, err error, requestID string) {
	be, ok := backend.AsError(err)
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected failure", requestID)
		return
	}
	switch be.Kind {
	case backend.KindAuthorization:
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.", requestID)
	case backend.KindNetwork:
		api.FailWithMessages(w, http.StatusBadGateway, "network_error", be.Messages, requestID)
	case backend.KindMalformed:
		api.FailWithMessages(w, http.StatusBadGateway, "bad_upstream_response", be.Messages, requestID)
	default:
		status := be.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		api.FailWithMessages(w, status, "login_failed", be.Messages, requestID)
	}
}

type registerForm struct {
	Name            string `validate:"required,min=2"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Age             int    `validate:"required,min=18,max=120"`
	Gender          string `validate:"required,oneof=MALE FEMALE OTHER"`
}

// Register forwards the sign-up form, image included, to the backend.
// Registration is public; a signed-in visitor is bounced home instead.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	if _, ok := middleware.GetSession(r.Context()); ok {
		api.WriteJSON(w, http.StatusOK, api.Envelope{Success: true, Redirect: HomeRedirect, RequestID: requestID})
		return
	}

	if err := r.ParseMultipartForm(maxRegisterForm); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid multipart form", requestID)
		return
	}

	age, err := shared.FormInt(r, "age")
	if err != nil {
		api.FailValidation(w, []shared.FieldError{{Field: "age", Message: "Must be a number."}}, requestID)
		return
	}
	form := registerForm{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		Age:             age,
		Gender:          r.FormValue("gender"),
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}

	var image *backend.Upload
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image = &backend.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		}
	}

	reg := backend.Registration{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Age:      form.Age,
		Gender:   form.Gender,
	}
	if err := h.backend.Register(r.Context(), reg, image); err != nil {
		h.failRegister(w, err, requestID)
		return
	}

	api.Created(w, map[string]string{"status": "registered"}, requestID)
}

func (h *Handler) failRegister(w http.ResponseWriter, err error, requestID string) {
	be, ok := backend.AsError(err)
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected failure", requestID)
		return
	}
	if be.Kind == backend.KindNetwork {
		api.FailWithMessages(w, http.StatusBadGateway, "network_error", be.Messages, requestID)
		return
	}
	status := be.Status
	if status < 400 {
		status = http.StatusBadGateway
	}
	api.FailWithMessages(w, status, "register_failed", be.Messages, requestID)
}

// Logout destroys the session row and clears the cookie. Logging out
// while already anonymous is a no-op success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	if sess, ok := middleware.GetSession(r.Context()); ok {
		_ = h.sessions.Destroy(r.Context(), sess.ID)
	}
	h.sessions.ClearCookie(w)

	api.WriteJSON(w, http.StatusOK, api.Envelope{
		Success:   true,
		Data:      sessionInfo{Authenticated: false},
		Redirect:  "/login",
		RequestID: requestID,
	})
}

// Session reports who the cookie belongs to; the front end calls it on
// boot to restore state after a reload.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())

	if sess, ok := middleware.GetSession(r.Context()); ok {
		api.Success(w, sessionInfo{Authenticated: true, Email: sess.Email, Role: sess.Role}, requestID)
		return
	}
	api.Success(w, sessionInfo{Authenticated: false}, requestID)
}
