package backend

import (
	"context"
	"net/http"
	"strconv"
)

type Department struct {
	DeptID   int    `json:"deptId"`
	DeptName string `json:"deptName"`
}

func (c *Client) ListDepartments(ctx context.Context, token string) ([]Department, error) {
	var result []Department
	err := c.get(ctx, token, "/departments", nil, &result)
	return result, err
}

func (c *Client) CreateDepartment(ctx context.Context, token, name string) (Department, error) {
	var result Department
	err := c.send(ctx, token, http.MethodPost, "/departments", map[string]string{"deptName": name}, &result)
	return result, err
}

func (c *Client) DeleteDepartment(ctx context.Context, token string, deptID int) error {
	return c.send(ctx, token, http.MethodDelete, "/departments/"+strconv.Itoa(deptID), nil, nil)
}
