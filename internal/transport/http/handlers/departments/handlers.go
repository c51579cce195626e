// Package departments serves the department list and its admin CRUD.
package departments

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

type Handler struct {
	backend  *backend.Client
	sessions *session.Manager
}

func New(client *backend.Client, sessions *session.Manager) *Handler {
	return &Handler{backend: client, sessions: sessions}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	departments, err := h.backend.ListDepartments(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "departments_failed")
		return
	}
	if departments == nil {
		departments = []backend.Department{}
	}
	api.Success(w, departments, requestID)
}

type departmentForm struct {
	DeptName string `json:"deptName" validate:"required,min=2,max=60"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	var form departmentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}

	department, err := h.backend.CreateDepartment(r.Context(), sess.Token, form.DeptName)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "department_create_failed")
		return
	}
	api.Created(w, department, requestID)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	deptID, err := shared.PathInt(r, "deptId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid department id", requestID)
		return
	}

	if err := h.backend.DeleteDepartment(r.Context(), sess.Token, deptID); err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "department_delete_failed")
		return
	}
	api.Success(w, map[string]int{"deleted": deptID}, requestID)
}
