package client

import (
	"context"
	"fmt"

	"procurepay/internal/model"
)

// PendingApprovals returns the requests waiting on the current approver's
// level.
func (c *Client) PendingApprovals(ctx context.Context) ([]model.Request, error) {
	const op = "list pending approvals"
	var requests []model.Request
	err := c.getList(ctx, op, "/api/approvals/pending/", func(data []byte) error {
		var derr error
		requests, derr = decodeList[model.Request](data)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// MyApprovals returns every request the current approver has ever decided.
func (c *Client) MyApprovals(ctx context.Context) ([]model.Request, error) {
	const op = "list my approvals"
	var requests []model.Request
	err := c.getList(ctx, op, "/api/requests/my_approvals/", func(data []byte) error {
		var derr error
		requests, derr = decodeList[model.Request](data)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

// Approve records an approval at the current user's level. The backend
// decides whether the request advances to level 2 or straight to approved.
func (c *Client) Approve(ctx context.Context, id int64, comment string) (*model.Request, error) {
	op := "approve request"
	var updated model.Request
	if err := c.postJSON(ctx, op, fmt.Sprintf("/api/requests/%d/approve/", id), decisionRequest{Comment: comment}, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reject records a rejection at the current user's level, terminating the
// request's forward progress.
func (c *Client) Reject(ctx context.Context, id int64, comment string) (*model.Request, error) {
	op := "reject request"
	var updated model.Request
	if err := c.postJSON(ctx, op, fmt.Sprintf("/api/requests/%d/reject/", id), decisionRequest{Comment: comment}, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}
