package client

import (
	"context"
	"fmt"

	"procurepay/internal/model"
)

// ListRequests returns the current user's requests.
func (c *Client) ListRequests(ctx context.Context) ([]model.Request, error) {
	const op = "list requests"
	var requests []model.Request
	err := c.getList(ctx, op, "/api/requests/", func(data []byte) error {
		var derr error
		requests, derr = decodeList[model.Request](data)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// GetRequest returns one request with its nested approval history.
func (c *Client) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	op := "load request details"
	var req model.Request
	if err := c.getJSON(ctx, op, fmt.Sprintf("/api/requests/%d/", id), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest validates the input and submits it as multipart form data.
// The proforma invoice is mandatory on creation.
func (c *Client) CreateRequest(ctx context.Context, in RequestInput, proforma *FileUpload) (*model.Request, error) {
	const op = "create request"
	if err := in.Validate(); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	if proforma == nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("proforma invoice is required")}
	}
	proforma.Field = "proforma_file"

	var created model.Request
	if err := c.sendMultipart(ctx, op, "POST", "/api/requests/", in.formFields(), []FileUpload{*proforma}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRequest replaces the descriptive fields of a request still in its
// initial state. A nil proforma keeps the existing file. The backend rejects
// the update once review has started.
func (c *Client) UpdateRequest(ctx context.Context, id int64, in RequestInput, proforma *FileUpload) (*model.Request, error) {
	const op = "update request"
	if err := in.Validate(); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	var files []FileUpload
	if proforma != nil {
		proforma.Field = "proforma_file"
		files = append(files, *proforma)
	}

	var updated model.Request
	if err := c.sendMultipart(ctx, op, "PUT", fmt.Sprintf("/api/requests/%d/", id), in.formFields(), files, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRequest removes a request. Only meaningful before review starts.
func (c *Client) DeleteRequest(ctx context.Context, id int64) error {
	return c.delete(ctx, "delete request", fmt.Sprintf("/api/requests/%d/", id))
}
