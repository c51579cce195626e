// Package backend is the typed client for the employee-management REST
// API the portal fronts. Every authenticated call carries the session's
// bearer token; failures are reduced to the Error taxonomy in errors.go.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out any) error {
	return c.do(ctx, token, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) send(ctx context.Context, token, method, path string, body any, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, token, method, path, nil, reader, contentType, out)
}

// sendMultipart lets callers assemble the form themselves; the register
// and image-upload endpoints take multipart bodies.
func (c *Client) sendMultipart(ctx context.Context, token, method, path string, build func(*multipart.Writer) error, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := build(writer); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return c.do(ctx, token, method, path, nil, &buf, writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode >= 400 {
		return fromResponse(resp.StatusCode, payload, http.StatusText(resp.StatusCode))
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return malformedError(err)
	}
	return nil
}
