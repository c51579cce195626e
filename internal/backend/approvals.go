package backend

import (
	"context"
	"net/http"
	"strconv"
)

// ApproveUser promotes a pending registration to an employee record.
func (c *Client) ApproveUser(ctx context.Context, token string, userID int) error {
	body := map[string]int{"userId": userID}
	return c.send(ctx, token, http.MethodPost, "/admin/approval/approve", body, nil)
}

func (c *Client) RejectUser(ctx context.Context, token string, userID int) error {
	return c.send(ctx, token, http.MethodPost, "/admin/approval/reject/"+strconv.Itoa(userID), nil, nil)
}

// ReopenUser moves a rejected registration back to pending.
func (c *Client) ReopenUser(ctx context.Context, token string, userID int) error {
	return c.send(ctx, token, http.MethodPost, "/admin/approval/reopen/"+strconv.Itoa(userID), nil, nil)
}
