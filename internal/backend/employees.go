package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type Image struct {
	ImageID  int    `json:"imageId"`
	FileName string `json:"fileName"`
}

// Employee is the roster entry for an approved employee.
type Employee struct {
	EmpID      int     `json:"empId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	DeptID     *int    `json:"deptId"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	Status     string  `json:"status"`
	Images     []Image `json:"images"`
}

// AdminEmployee is the admin roster row: approval may still be pending,
// in which case EmpID is absent and only user-scoped endpoints apply.
type AdminEmployee struct {
	UserID     int     `json:"userId"`
	EmpID      *int    `json:"empId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	Status     string  `json:"status"`
	DeptID     *int    `json:"deptId"`
	Department string  `json:"department"`
	Images     []Image `json:"images"`
}

// Approved reports whether the record has been promoted to an employee.
func (e AdminEmployee) Approved() bool {
	return e.EmpID != nil
}

// EmployeePage mirrors the backend's server-side paged response.
type EmployeePage struct {
	Content       []Employee `json:"content"`
	TotalElements int        `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
}

type ProfileUpdate struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	DeptID *int   `json:"deptId,omitempty"`
}

type AdminUserUpdate struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	DeptID *int   `json:"deptId,omitempty"`
	Status string `json:"status,omitempty"`
}

// ListEmployees returns the backend-paged approved roster.
func (c *Client) ListEmployees(ctx context.Context, token string, page, size int, search string) (EmployeePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if search != "" {
		query.Set("search", search)
	}
	var result EmployeePage
	err := c.get(ctx, token, "/employees", query, &result)
	return result, err
}

func (c *Client) GetEmployee(ctx context.Context, token string, empID int) (Employee, error) {
	var result Employee
	err := c.get(ctx, token, "/employees/"+strconv.Itoa(empID), nil, &result)
	return result, err
}

func (c *Client) MyProfile(ctx context.Context, token string) (Employee, error) {
	var result Employee
	err := c.get(ctx, token, "/employees/me", nil, &result)
	return result, err
}

func (c *Client) UpdateMyProfile(ctx context.Context, token string, update ProfileUpdate) (Employee, error) {
	var result Employee
	err := c.send(ctx, token, http.MethodPut, "/employees/me", update, &result)
	return result, err
}

// ListAllUsers returns every user record, approved or not. Admin only;
// the portal filters and pages this list itself.
func (c *Client) ListAllUsers(ctx context.Context, token string) ([]AdminEmployee, error) {
	var result []AdminEmployee
	err := c.get(ctx, token, "/admin/employees", nil, &result)
	return result, err
}

func (c *Client) GetUser(ctx context.Context, token string, userID int) (AdminEmployee, error) {
	var result AdminEmployee
	err := c.get(ctx, token, "/admin/employees/user/"+strconv.Itoa(userID), nil, &result)
	return result, err
}

func (c *Client) UpdateUser(ctx context.Context, token string, userID int, update AdminUserUpdate) (AdminEmployee, error) {
	var result AdminEmployee
	err := c.send(ctx, token, http.MethodPut, "/admin/employees/user/"+strconv.Itoa(userID), update, &result)
	return result, err
}

// DeleteEmployee removes an approved employee. Records without an empId
// cannot be deleted through this endpoint.
func (c *Client) DeleteEmployee(ctx context.Context, token string, empID int) error {
	return c.send(ctx, token, http.MethodDelete, "/admin/employees/"+strconv.Itoa(empID), nil, nil)
}
