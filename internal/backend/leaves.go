package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Leave statuses.
const (
	LeavePending  = "PENDING"
	LeaveApproved = "APPROVED"
	LeaveRejected = "REJECTED"
	LeaveRevoked  = "REVOKED"
)

// Leave types.
var LeaveTypes = []string{"SICK", "CASUAL", "EARNED", "OPTIONAL", "UNPAID"}

type Leave struct {
	LeaveID      int     `json:"leaveId"`
	EmpID        int     `json:"empId"`
	EmployeeName string  `json:"employeeName"`
	LeaveType    string  `json:"leaveType"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	TotalDays    int     `json:"totalDays"`
	PaidDays     int     `json:"paidDays"`
	UnpaidDays   int     `json:"unpaidDays"`
	Year         int     `json:"year"`
	Status       string  `json:"status"`
	Reason       string  `json:"reason"`
	AppliedAt    string  `json:"appliedAt"`
	ApprovedAt   *string `json:"approvedAt"`
	ApprovedBy   *string `json:"approvedBy"`
}

// Processed reports whether the request left the PENDING state.
func (l Leave) Processed() bool {
	return l.Status != LeavePending
}

// Starts parses the wire start date.
func (l Leave) Starts() (time.Time, error) {
	return time.Parse(holidayDateLayout, l.StartDate)
}

// Revocable requests may be undone: only approved leaves whose start
// date is strictly in the future.
func (l Leave) Revocable(today time.Time) bool {
	if l.Status != LeaveApproved {
		return false
	}
	start, err := l.Starts()
	if err != nil {
		return false
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return start.After(today)
}

type LeaveApplication struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// LeaveEdit patches a PENDING request; empty fields are left unchanged.
type LeaveEdit struct {
	LeaveType string `json:"leaveType,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type LeaveSearch struct {
	EmpID     int
	Status    string
	LeaveType string
	Year      int
	FromDate  string
	ToDate    string
}

func (c *Client) MyLeaves(ctx context.Context, token string) ([]Leave, error) {
	var result []Leave
	err := c.get(ctx, token, "/leaves/my", nil, &result)
	return result, err
}

func (c *Client) ApplyLeave(ctx context.Context, token string, application LeaveApplication) (Leave, error) {
	var result Leave
	err := c.send(ctx, token, http.MethodPost, "/leaves", application, &result)
	return result, err
}

func (c *Client) EditLeave(ctx context.Context, token string, leaveID int, edit LeaveEdit) (Leave, error) {
	var result Leave
	err := c.send(ctx, token, http.MethodPatch, "/leaves/"+strconv.Itoa(leaveID), edit, &result)
	return result, err
}

func (c *Client) DeleteLeave(ctx context.Context, token string, leaveID int) error {
	return c.send(ctx, token, http.MethodDelete, "/leaves/"+strconv.Itoa(leaveID), nil, nil)
}

func (c *Client) PendingLeaves(ctx context.Context, token string) ([]Leave, error) {
	var result []Leave
	err := c.get(ctx, token, "/leaves/pending", nil, &result)
	return result, err
}

func (c *Client) AllLeaves(ctx context.Context, token string) ([]Leave, error) {
	var result []Leave
	err := c.get(ctx, token, "/leaves", nil, &result)
	return result, err
}

// DecideLeave approves or rejects a pending request.
func (c *Client) DecideLeave(ctx context.Context, token string, leaveID int, decision string) (Leave, error) {
	query := url.Values{}
	query.Set("decision", decision)
	var result Leave
	err := c.do(ctx, token, http.MethodPut, "/leaves/"+strconv.Itoa(leaveID)+"/decision", query, nil, "", &result)
	return result, err
}

func (c *Client) RevokeLeave(ctx context.Context, token string, leaveID int) (Leave, error) {
	var result Leave
	err := c.send(ctx, token, http.MethodPut, "/leaves/"+strconv.Itoa(leaveID)+"/revoke", nil, &result)
	return result, err
}

func (c *Client) SearchLeaves(ctx context.Context, token string, search LeaveSearch) ([]Leave, error) {
	query := url.Values{}
	if search.EmpID > 0 {
		query.Set("empId", strconv.Itoa(search.EmpID))
	}
	if search.Status != "" {
		query.Set("status", search.Status)
	}
	if search.LeaveType != "" {
		query.Set("leaveType", search.LeaveType)
	}
	if search.Year > 0 {
		query.Set("year", strconv.Itoa(search.Year))
	}
	if search.FromDate != "" {
		query.Set("fromDate", search.FromDate)
	}
	if search.ToDate != "" {
		query.Set("toDate", search.ToDate)
	}
	var result []Leave
	err := c.get(ctx, token, "/leaves/admin/search", query, &result)
	return result, err
}
