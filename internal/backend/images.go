package backend

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
)

// UploadEmployeeImages attaches images to an approved employee record.
func (c *Client) UploadEmployeeImages(ctx context.Context, token string, empID int, uploads []Upload) ([]Image, error) {
	return c.uploadImages(ctx, token, "/images/upload/"+strconv.Itoa(empID), uploads)
}

// UploadUserImages attaches images to a not-yet-approved user record;
// records without an empId must go through this endpoint.
func (c *Client) UploadUserImages(ctx context.Context, token string, userID int, uploads []Upload) ([]Image, error) {
	return c.uploadImages(ctx, token, "/images/upload/user/"+strconv.Itoa(userID), uploads)
}

func (c *Client) uploadImages(ctx context.Context, token, path string, uploads []Upload) ([]Image, error) {
	var result []Image
	err := c.sendMultipart(ctx, token, http.MethodPost, path, func(w *multipart.Writer) error {
		for i := range uploads {
			if err := writeFilePart(w, "images", &uploads[i]); err != nil {
				return err
			}
		}
		return nil
	}, &result)
	return result, err
}

func (c *Client) DeleteImage(ctx context.Context, token string, imageID int) error {
	return c.send(ctx, token, http.MethodDelete, "/images/"+strconv.Itoa(imageID), nil, nil)
}
