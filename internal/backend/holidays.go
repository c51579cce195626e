package backend

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

const holidayDateLayout = "2006-01-02"

// Holiday categories.
const (
	HolidayNational = "NATIONAL"
	HolidayFestival = "FESTIVAL"
	HolidayCompany  = "COMPANY"
)

type Holiday struct {
	ID          int    `json:"id"`
	HolidayID   int    `json:"holidayId"`
	Name        string `json:"holidayName"`
	DateString  string `json:"holidayDate"`
	Type        string `json:"holidayType"`
	Optional    bool   `json:"optional"`
	Description string `json:"description,omitempty"`
}

// Ident resolves the identifier regardless of which field the backend
// populated; responses carry one or the other.
func (h Holiday) Ident() int {
	if h.ID != 0 {
		return h.ID
	}
	return h.HolidayID
}

// Date parses the yyyy-MM-dd wire date.
func (h Holiday) Date() (time.Time, error) {
	return time.Parse(holidayDateLayout, h.DateString)
}

type HolidayInput struct {
	Name        string `json:"holidayName"`
	DateString  string `json:"holidayDate"`
	Type        string `json:"holidayType"`
	Optional    bool   `json:"optional"`
	Description string `json:"description,omitempty"`
}

func (c *Client) HolidaysByYear(ctx context.Context, token string, year int) ([]Holiday, error) {
	var result []Holiday
	err := c.get(ctx, token, "/holidays/year/"+strconv.Itoa(year), nil, &result)
	return result, err
}

// HolidaysByMonth takes a 1-based month, the backend's convention.
func (c *Client) HolidaysByMonth(ctx context.Context, token string, year, month int) ([]Holiday, error) {
	var result []Holiday
	path := "/holidays/year/" + strconv.Itoa(year) + "/month/" + strconv.Itoa(month)
	err := c.get(ctx, token, path, nil, &result)
	return result, err
}

func (c *Client) CreateHoliday(ctx context.Context, token string, input HolidayInput) (Holiday, error) {
	var result Holiday
	err := c.send(ctx, token, http.MethodPost, "/holidays", input, &result)
	return result, err
}

func (c *Client) UpdateHoliday(ctx context.Context, token string, id int, input HolidayInput) (Holiday, error) {
	var result Holiday
	err := c.send(ctx, token, http.MethodPut, "/holidays/"+strconv.Itoa(id), input, &result)
	return result, err
}

func (c *Client) DeleteHoliday(ctx context.Context, token string, id int) error {
	return c.send(ctx, token, http.MethodDelete, "/holidays/"+strconv.Itoa(id), nil, nil)
}
