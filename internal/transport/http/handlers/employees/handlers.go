// Package employees serves the roster screens: the employee directory,
// the signed-in user's profile and the admin user management table.
package employees

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"emportal/internal/backend"
	"emportal/internal/listing"
	"emportal/internal/requestctx"
	"emportal/internal/session"
	"emportal/internal/transport/http/api"
	"emportal/internal/transport/http/middleware"
	"emportal/internal/transport/http/shared"
)

const (
	defaultPageSize = 10
	pagerWidth      = 5
	maxImageForm    = 16 << 20
)

type Handler struct {
	backend  *backend.Client
	sessions *session.Manager

	// rosters caches each admin session's user table so filtering and
	// paging happen without refetching. Entries are dropped on writes
	// that change the roster and via EvictSession, which main registers
	// as a session destroy hook so logout, observed 401s and the expiry
	// sweep all release the cache.
	mu      sync.Mutex
	rosters map[string]*listing.View[backend.AdminEmployee]
}

func New(client *backend.Client, sessions *session.Manager) *Handler {
	return &Handler{
		backend:  client,
		sessions: sessions,
		rosters:  make(map[string]*listing.View[backend.AdminEmployee]),
	}
}

func (h *Handler) roster(sessionID string) *listing.View[backend.AdminEmployee] {
	h.mu.Lock()
	defer h.mu.Unlock()
	view, ok := h.rosters[sessionID]
	if !ok {
		view = listing.NewView(
			func(e backend.AdminEmployee) int { return e.UserID },
			func(e backend.AdminEmployee) string { return e.Status },
			func(e backend.AdminEmployee) []string { return []string{e.Name, e.Email, e.Department} },
		)
		h.rosters[sessionID] = view
	}
	return view
}

func (h *Handler) dropRoster(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rosters, sessionID)
}

// EvictSession releases the roster cached for a destroyed session.
func (h *Handler) EvictSession(sessionID string) {
	h.dropRoster(sessionID)
}

// cachedRosters reports the live cache size; test helper.
func (h *Handler) cachedRosters() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rosters)
}

type pagedResponse[T any] struct {
	listing.Result[T]
	Pages []int `json:"pages"`
}

// List is the employee directory, paged by the backend.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	page := shared.QueryInt(r, "page", 0)
	size := shared.QueryInt(r, "size", defaultPageSize)
	search := r.URL.Query().Get("search")

	result, err := h.backend.ListEmployees(r.Context(), sess.Token, page, size, search)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "employees_failed")
		return
	}

	api.Success(w, pagedResponse[backend.Employee]{
		Result: listing.Result[backend.Employee]{
			Page:          result.Content,
			TotalElements: result.TotalElements,
			TotalPages:    result.TotalPages,
			PageIndex:     page,
		},
		Pages: listing.PageWindow(page, result.TotalPages, pagerWidth),
	}, requestID)
}

// Detail shows one employee.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	empID, err := shared.PathInt(r, "empId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid employee id", requestID)
		return
	}

	employee, err := h.backend.GetEmployee(r.Context(), sess.Token, empID)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "employee_failed")
		return
	}
	api.Success(w, employee, requestID)
}

// Profile returns the signed-in user's own record.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	employee, err := h.backend.MyProfile(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "profile_failed")
		return
	}
	api.Success(w, employee, requestID)
}

type profileForm struct {
	Name   string `json:"name" validate:"required,min=2"`
	Age    int    `json:"age" validate:"required,min=18,max=120"`
	Gender string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	DeptID *int   `json:"deptId"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	var form profileForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}

	updated, err := h.backend.UpdateMyProfile(r.Context(), sess.Token, backend.ProfileUpdate{
		Name:   form.Name,
		Age:    form.Age,
		Gender: form.Gender,
		DeptID: form.DeptID,
	})
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "profile_update_failed")
		return
	}
	api.Success(w, updated, requestID)
}

// AdminUsers is the admin user table. The full roster is fetched once
// per session and filtered here; pass refresh=true to refetch.
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	view := h.roster(sess.ID)
	view.SetQuery(listing.Query{
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		PageSize: shared.QueryInt(r, "size", defaultPageSize),
		Page:     shared.QueryInt(r, "page", 0),
	})

	if !view.Loaded() || r.URL.Query().Get("refresh") == "true" {
		if err := h.reloadRoster(r, view, sess); err != nil {
			shared.RespondBackendError(w, r, h.sessions, sess, err, "users_failed")
			return
		}
	}

	snap := view.Snapshot()
	api.Success(w, pagedResponse[backend.AdminEmployee]{
		Result: snap,
		Pages:  listing.PageWindow(snap.PageIndex, snap.TotalPages, pagerWidth),
	}, requestID)
}

func (h *Handler) reloadRoster(r *http.Request, view *listing.View[backend.AdminEmployee], sess session.Session) error {
	token := view.Begin()
	users, err := h.backend.ListAllUsers(r.Context(), sess.Token)
	if err != nil {
		return err
	}
	view.Accept(token, users)
	return nil
}

func (h *Handler) AdminUser(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	userID, err := shared.PathInt(r, "userId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid user id", requestID)
		return
	}

	user, err := h.backend.GetUser(r.Context(), sess.Token, userID)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "user_failed")
		return
	}
	api.Success(w, user, requestID)
}

type adminUserForm struct {
	Name   string `json:"name" validate:"required,min=2"`
	Email  string `json:"email" validate:"required,email"`
	Age    int    `json:"age" validate:"required,min=18,max=120"`
	Gender string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	DeptID *int   `json:"deptId"`
	Status string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE PENDING"`
}

func (h *Handler) UpdateAdminUser(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	userID, err := shared.PathInt(r, "userId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid user id", requestID)
		return
	}

	var form adminUserForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}

	updated, err := h.backend.UpdateUser(r.Context(), sess.Token, userID, backend.AdminUserUpdate{
		Name:   form.Name,
		Email:  form.Email,
		Age:    form.Age,
		Gender: form.Gender,
		DeptID: form.DeptID,
		Status: form.Status,
	})
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "user_update_failed")
		return
	}
	h.dropRoster(sess.ID)
	api.Success(w, updated, requestID)
}

// DeleteEmployee removes a roster row optimistically: the row vanishes
// from snapshots immediately, is forgotten once the backend confirms,
// and is rolled back plus refetched from the canonical roster when the
// delete fails.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	userID, err := shared.PathInt(r, "userId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid user id", requestID)
		return
	}
	empID := shared.QueryInt(r, "empId", 0)
	if empID <= 0 {
		api.Fail(w, http.StatusBadRequest, "bad_request", "empId query parameter required", requestID)
		return
	}

	view := h.roster(sess.ID)
	view.RemoveOptimistic(userID)

	if err := h.backend.DeleteEmployee(r.Context(), sess.Token, empID); err != nil {
		view.RollbackRemoval(userID)
		// Reconcile with the canonical roster so the table does not show
		// stale state after a failed delete.
		_ = h.reloadRoster(r, view, sess)
		shared.RespondBackendError(w, r, h.sessions, sess, err, "delete_failed")
		return
	}

	view.ConfirmRemoval(userID)
	api.Success(w, map[string]int{"deleted": empID}, requestID)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decideUser(w, r, h.backend.ApproveUser, "approved")
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decideUser(w, r, h.backend.RejectUser, "rejected")
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.decideUser(w, r, h.backend.ReopenUser, "reopened")
}

func (h *Handler) decideUser(w http.ResponseWriter, r *http.Request,
	call func(ctx context.Context, token string, userID int) error, outcome string) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	userID, err := shared.PathInt(r, "userId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid user id", requestID)
		return
	}

	if err := call(r.Context(), sess.Token, userID); err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "approval_failed")
		return
	}
	// Approval changes roster state; force a refetch on the next list.
	h.dropRoster(sess.ID)
	api.Success(w, map[string]string{"outcome": outcome}, requestID)
}

// UploadImages forwards profile pictures from the browser form. The
// admin route keys on userId, the self-service route on empId.
func (h *Handler) UploadUserImages(w http.ResponseWriter, r *http.Request) {
	h.uploadImages(w, r, "userId", h.backend.UploadUserImages)
}

func (h *Handler) UploadEmployeeImages(w http.ResponseWriter, r *http.Request) {
	h.uploadImages(w, r, "empId", h.backend.UploadEmployeeImages)
}

func (h *Handler) uploadImages(w http.ResponseWriter, r *http.Request, param string,
	call func(ctx context.Context, token string, id int, uploads []backend.Upload) ([]backend.Image, error)) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	id, err := shared.PathInt(r, param)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid id", requestID)
		return
	}

	if err := r.ParseMultipartForm(maxImageForm); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid multipart form", requestID)
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		api.Fail(w, http.StatusBadRequest, "bad_request", "no images attached", requestID)
		return
	}

	uploads := make([]backend.Upload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "bad_request", "unreadable image part", requestID)
			return
		}
		defer file.Close()
		uploads = append(uploads, backend.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		})
	}

	images, err := call(r.Context(), sess.Token, id, uploads)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "image_upload_failed")
		return
	}
	api.Success(w, images, requestID)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	imageID, err := shared.PathInt(r, "imageId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid image id", requestID)
		return
	}

	if err := h.backend.DeleteImage(r.Context(), sess.Token, imageID); err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "image_delete_failed")
		return
	}
	api.Success(w, map[string]int{"deleted": imageID}, requestID)
}
