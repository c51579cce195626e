// Package leaves serves the leave workflow: the employee's own
// requests, the admin pending queue and processed history, decisions
// and revocation.
package leaves

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"emportal/internal/backend"
	"emportal/internal/listing"
	"emportal/internal/report"
	"emportal/internal/requestctx"
	"emportal/internal/session"
	"emportal/internal/transport/http/api"
	"emportal/internal/transport/http/middleware"
	"emportal/internal/transport/http/shared"
)

const (
	defaultPageSize = 10
	pagerWidth      = 5
)

type Handler struct {
	backend  *backend.Client
	sessions *session.Manager
	// now is swappable so revocability cutoffs are testable.
	now func() time.Time
}

func New(client *backend.Client, sessions *session.Manager) *Handler {
	return &Handler{backend: client, sessions: sessions, now: time.Now}
}

// leaveRow decorates a leave with the flags the screens switch on.
type leaveRow struct {
	backend.Leave
	Processed bool `json:"processed"`
	Revocable bool `json:"revocable"`
}

func (h *Handler) rows(leaves []backend.Leave) []leaveRow {
	today := h.now()
	rows := make([]leaveRow, 0, len(leaves))
	for _, leave := range leaves {
		rows = append(rows, leaveRow{
			Leave:     leave,
			Processed: leave.Processed(),
			Revocable: leave.Revocable(today),
		})
	}
	return rows
}

// My lists the signed-in employee's own requests.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaves, err := h.backend.MyLeaves(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
		return
	}
	api.Success(w, h.rows(leaves), requestID)
}

type applyForm struct {
	LeaveType string `json:"leaveType" validate:"required,oneof=SICK CASUAL EARNED OPTIONAL UNPAID"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=3,max=250"`
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	var form applyForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}
	if !h.datesValid(w, form.StartDate, form.EndDate, requestID) {
		return
	}

	leave, err := h.backend.ApplyLeave(r.Context(), sess.Token, backend.LeaveApplication{
		LeaveType: form.LeaveType,
		StartDate: form.StartDate,
		EndDate:   form.EndDate,
		Reason:    form.Reason,
	})
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leave_apply_failed")
		return
	}
	api.Created(w, leave, requestID)
}

// findMyLeave resolves one of the caller's own requests; nil without
// error means the id is not theirs.
func (h *Handler) findMyLeave(ctx context.Context, token string, leaveID int) (*backend.Leave, error) {
	leaves, err := h.backend.MyLeaves(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range leaves {
		if leaves[i].LeaveID == leaveID {
			return &leaves[i], nil
		}
	}
	return nil, nil
}

func (h *Handler) datesValid(w http.ResponseWriter, start, end, requestID string) bool {
	if _, err := shared.ParseDate(start); err != nil {
		api.FailValidation(w, []shared.FieldError{{Field: "startDate", Message: "Must be a yyyy-MM-dd date."}}, requestID)
		return false
	}
	if _, err := shared.ParseDate(end); err != nil {
		api.FailValidation(w, []shared.FieldError{{Field: "endDate", Message: "Must be a yyyy-MM-dd date."}}, requestID)
		return false
	}
	if !shared.DateOrdered(start, end) {
		api.FailValidation(w, []shared.FieldError{{Field: "endDate", Message: "End date must not be before start date."}}, requestID)
		return false
	}
	return true
}

type editForm struct {
	LeaveType string `json:"leaveType" validate:"omitempty,oneof=SICK CASUAL EARNED OPTIONAL UNPAID"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason" validate:"omitempty,min=3,max=250"`
}

// Edit patches a request that is still pending; the backend rejects
// edits to processed ones.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaveID, err := shared.PathInt(r, "leaveId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid leave id", requestID)
		return
	}

	var form editForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return
	}

	// A single supplied date is checked against the stored counterpart
	// so an edit cannot invert the range.
	if form.StartDate != "" || form.EndDate != "" {
		start, end := form.StartDate, form.EndDate
		if start == "" || end == "" {
			current, err := h.findMyLeave(r.Context(), sess.Token, leaveID)
			if err != nil {
				shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
				return
			}
			if current == nil {
				api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
				return
			}
			if start == "" {
				start = current.StartDate
			}
			if end == "" {
				end = current.EndDate
			}
		}
		if !h.datesValid(w, start, end, requestID) {
			return
		}
	}

	leave, err := h.backend.EditLeave(r.Context(), sess.Token, leaveID, backend.LeaveEdit{
		LeaveType: form.LeaveType,
		StartDate: form.StartDate,
		EndDate:   form.EndDate,
		Reason:    form.Reason,
	})
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leave_edit_failed")
		return
	}
	api.Success(w, leave, requestID)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaveID, err := shared.PathInt(r, "leaveId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid leave id", requestID)
		return
	}

	if err := h.backend.DeleteLeave(r.Context(), sess.Token, leaveID); err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leave_delete_failed")
		return
	}
	api.Success(w, map[string]int{"deleted": leaveID}, requestID)
}

// Revoke undoes an approved request. Only approved leaves starting
// strictly in the future qualify; anything else is refused before the
// backend is involved.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaveID, err := shared.PathInt(r, "leaveId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid leave id", requestID)
		return
	}

	target, err := h.findMyLeave(r.Context(), sess.Token, leaveID)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
		return
	}
	if target == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
		return
	}
	if !target.Revocable(h.now()) {
		api.Fail(w, http.StatusConflict, "not_revocable",
			"Only approved leaves that have not started can be revoked.", requestID)
		return
	}

	leave, err := h.backend.RevokeLeave(r.Context(), sess.Token, leaveID)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leave_revoke_failed")
		return
	}
	api.Success(w, leave, requestID)
}

// Pending is the admin approval queue.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaves, err := h.backend.PendingLeaves(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
		return
	}
	api.Success(w, h.rows(leaves), requestID)
}

type pagedLeaves struct {
	listing.Result[leaveRow]
	Pages []int `json:"pages"`
}

// Processed is the admin history table: every request that has left
// PENDING, filtered and paged here from the full list.
func (h *Handler) Processed(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaves, err := h.backend.AllLeaves(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
		return
	}

	var processed []backend.Leave
	for _, leave := range leaves {
		if leave.Processed() {
			processed = append(processed, leave)
		}
	}

	result := listing.Paginate(h.rows(processed), listing.Query{
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		PageSize: shared.QueryInt(r, "size", defaultPageSize),
		Page:     shared.QueryInt(r, "page", 0),
	},
		func(row leaveRow) string { return row.Status },
		func(row leaveRow) []string { return []string{row.EmployeeName, row.LeaveType, row.Reason} },
	)

	api.Success(w, pagedLeaves{
		Result: result,
		Pages:  listing.PageWindow(result.PageIndex, result.TotalPages, pagerWidth),
	}, requestID)
}

// Decide approves or rejects a pending request.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	leaveID, err := shared.PathInt(r, "leaveId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid leave id", requestID)
		return
	}
	decision := r.URL.Query().Get("decision")
	if decision != backend.LeaveApproved && decision != backend.LeaveRejected {
		api.Fail(w, http.StatusBadRequest, "bad_request", "decision must be APPROVED or REJECTED", requestID)
		return
	}

	leave, err := h.backend.DecideLeave(r.Context(), sess.Token, leaveID, decision)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leave_decide_failed")
		return
	}
	api.Success(w, leave, requestID)
}

// Search is the admin filter surface over the whole history.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	search := backend.LeaveSearch{
		EmpID:     shared.QueryInt(r, "empId", 0),
		Status:    r.URL.Query().Get("status"),
		LeaveType: r.URL.Query().Get("type"),
		Year:      shared.QueryInt(r, "year", 0),
		FromDate:  r.URL.Query().Get("from"),
		ToDate:    r.URL.Query().Get("to"),
	}

	leaves, err := h.backend.SearchLeaves(r.Context(), sess.Token, search)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leave_search_failed")
		return
	}
	api.Success(w, h.rows(leaves), requestID)
}

// ExportMy downloads the signed-in employee's history as a PDF.
func (h *Handler) ExportMy(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	leaves, err := h.backend.MyLeaves(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
		return
	}
	h.servePDF(w, r, "My Leave History", "my-leaves.pdf", leaves)
}

// ExportAll downloads the full history for admins.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	leaves, err := h.backend.AllLeaves(r.Context(), sess.Token)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "leaves_failed")
		return
	}
	h.servePDF(w, r, "Leave History", "leaves.pdf", leaves)
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, title, filename string, leaves []backend.Leave) {
	requestID := requestctx.GetRequestID(r.Context())

	doc, err := report.LeaveHistory(title, leaves)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "could not render PDF", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(doc)
}
