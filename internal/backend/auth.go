package backend

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
}

// Upload is a file forwarded from the browser form as-is.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Login is intentionally unauthenticated; a 401 here means bad
// credentials, not an expired session, so callers must not treat it as
// a gate transition.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var result LoginResult
	if err := c.send(ctx, "", http.MethodPost, "/auth/login", creds, &result); err != nil {
		return LoginResult{}, err
	}
	if result.Token == "" || result.Role == "" {
		return LoginResult{}, malformedError(nil)
	}
	return result, nil
}

// Register posts the multipart form the backend expects: a JSON part
// named "data" plus an optional "image" file part.
func (c *Client) Register(ctx context.Context, reg Registration, image *Upload) error {
	return c.sendMultipart(ctx, "", http.MethodPost, "/auth/register", func(w *multipart.Writer) error {
		payload, err := json.Marshal(reg)
		if err != nil {
			return err
		}
		part, err := w.CreatePart(jsonPartHeader("data"))
		if err != nil {
			return err
		}
		if _, err := part.Write(payload); err != nil {
			return err
		}
		if image != nil {
			return writeFilePart(w, "image", image)
		}
		return nil
	}, nil)
}

func jsonPartHeader(field string) textproto.MIMEHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"`)
	header.Set("Content-Type", "application/json")
	return header
}

func writeFilePart(w *multipart.Writer, field string, upload *Upload) error {
	header := textproto.MIMEHeader{}
	name := strings.ReplaceAll(upload.Filename, `"`, "")
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, upload.Reader)
	return err
}
