// Package holidays serves the holiday card list, the month calendar
// grid and the admin holiday CRUD.
package holidays

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"emportal/internal/backend"
	"emportal/internal/calendar"
	"emportal/internal/report"
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

// List returns the year's holidays for the card view.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	year := shared.QueryInt(r, "year", time.Now().Year())
	holidays, err := h.backend.HolidaysByYear(r.Context(), sess.Token, year)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "holidays_failed")
		return
	}
	if holidays == nil {
		holidays = []backend.Holiday{}
	}
	api.Success(w, holidays, requestID)
}

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type gridResponse struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	MonthName string          `json:"monthName"`
	Cells     []calendar.Cell `json:"cells"`
	Prev      monthRef        `json:"prev"`
	Next      monthRef        `json:"next"`
}

// Grid builds the 42-cell month view. The month parameter is zero
// based the way the calendar screens count; the backend counts from
// one, so the lookup shifts by one.
func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	now := time.Now()
	year, month := calendar.Normalize(
		shared.QueryInt(r, "year", now.Year()),
		shared.QueryInt(r, "month", int(now.Month())-1),
	)

	holidays, err := h.backend.HolidaysByMonth(r.Context(), sess.Token, year, month+1)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "holidays_failed")
		return
	}

	events := make([]calendar.Event, 0, len(holidays))
	for _, holiday := range holidays {
		date, err := holiday.Date()
		if err != nil {
			continue
		}
		events = append(events, calendar.Event{
			ID:          holiday.Ident(),
			Name:        holiday.Name,
			Date:        date,
			Category:    holiday.Type,
			Optional:    holiday.Optional,
			Description: holiday.Description,
		})
	}

	prevYear, prevMonth := calendar.AddMonths(year, month, -1)
	nextYear, nextMonth := calendar.AddMonths(year, month, 1)

	api.Success(w, gridResponse{
		Year:      year,
		Month:     month,
		MonthName: time.Month(month + 1).String(),
		Cells:     calendar.BuildMonthGrid(year, month, events),
		Prev:      monthRef{Year: prevYear, Month: prevMonth},
		Next:      monthRef{Year: nextYear, Month: nextMonth},
	}, requestID)
}

type holidayForm struct {
	Name        string `json:"holidayName" validate:"required,min=2"`
	Date        string `json:"holidayDate" validate:"required"`
	Type        string `json:"holidayType" validate:"required,oneof=NATIONAL FESTIVAL COMPANY"`
	Optional    bool   `json:"optional"`
	Description string `json:"description" validate:"max=250"`
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request, requestID string) (holidayForm, bool) {
	var form holidayForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", requestID)
		return form, false
	}
	if fields := shared.ValidateStruct(form); fields != nil {
		api.FailValidation(w, fields, requestID)
		return form, false
	}
	if _, err := shared.ParseDate(form.Date); err != nil {
		api.FailValidation(w, []shared.FieldError{{Field: "holidayDate", Message: "Must be a yyyy-MM-dd date."}}, requestID)
		return form, false
	}
	return form, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	form, ok := h.parseForm(w, r, requestID)
	if !ok {
		return
	}

	holiday, err := h.backend.CreateHoliday(r.Context(), sess.Token, backend.HolidayInput{
		Name:        form.Name,
		DateString:  form.Date,
		Type:        form.Type,
		Optional:    form.Optional,
		Description: form.Description,
	})
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "holiday_create_failed")
		return
	}
	api.Created(w, holiday, requestID)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	id, err := shared.PathInt(r, "holidayId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid holiday id", requestID)
		return
	}
	form, ok := h.parseForm(w, r, requestID)
	if !ok {
		return
	}

	holiday, err := h.backend.UpdateHoliday(r.Context(), sess.Token, id, backend.HolidayInput{
		Name:        form.Name,
		DateString:  form.Date,
		Type:        form.Type,
		Optional:    form.Optional,
		Description: form.Description,
	})
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "holiday_update_failed")
		return
	}
	api.Success(w, holiday, requestID)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	id, err := shared.PathInt(r, "holidayId")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid holiday id", requestID)
		return
	}

	if err := h.backend.DeleteHoliday(r.Context(), sess.Token, id); err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "holiday_delete_failed")
		return
	}
	api.Success(w, map[string]int{"deleted": id}, requestID)
}

// Export downloads the year's holidays as a PDF.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())

	year := shared.QueryInt(r, "year", time.Now().Year())
	holidays, err := h.backend.HolidaysByYear(r.Context(), sess.Token, year)
	if err != nil {
		shared.RespondBackendError(w, r, h.sessions, sess, err, "holidays_failed")
		return
	}

	doc, err := report.HolidayCalendar(year, holidays)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "could not render PDF", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="holidays-%d.pdf"`, year))
	_, _ = w.Write(doc)
}
