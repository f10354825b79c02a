package client

import (
	"context"
	"fmt"

	"procurepay/internal/model"
)

// FinanceRequests returns every request that has reached finance (approved
// and beyond), including nested receipt validations.
func (c *Client) FinanceRequests(ctx context.Context) ([]model.Request, error) {
	const op = "list finance requests"
	var requests []model.Request
	err := c.getList(ctx, op, "/api/finance/", func(data []byte) error {
		var derr error
		requests, derr = decodeList[model.Request](data)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// PurchaseOrders returns the requests that have a purchase-order file.
func (c *Client) PurchaseOrders(ctx context.Context) ([]model.Request, error) {
	const op = "list purchase orders"
	var requests []model.Request
	err := c.getList(ctx, op, "/api/finance/purchase_orders/", func(data []byte) error {
		var derr error
		requests, derr = decodeList[model.Request](data)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// PlaceOrder uploads the purchase-order file for an approved request, moving
// it to ordered.
func (c *Client) PlaceOrder(ctx context.Context, id int64, po FileUpload) (*model.Request, error) {
	op := "place purchase order"
	po.Field = "purchase_order_file"
	var updated model.Request
	if err := c.sendMultipart(ctx, op, "POST", fmt.Sprintf("/api/finance/%d/place_order/", id), nil, []FileUpload{po}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UploadReceipt attaches the goods receipt document to a request.
func (c *Client) UploadReceipt(ctx context.Context, id int64, receipt FileUpload) (*model.Request, error) {
	op := "upload receipt"
	receipt.Field = "receipt_file"
	var updated model.Request
	if err := c.sendMultipart(ctx, op, "POST", fmt.Sprintf("/api/finance/%d/upload_receipt/", id), nil, []FileUpload{receipt}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ValidateReceipt records finance's receipt validation, moving an ordered
// request to delivered.
func (c *Client) ValidateReceipt(ctx context.Context, id int64, in ReceiptValidationInput) (*model.Request, error) {
	op := "validate receipt"
	if err := in.Validate(); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	var updated model.Request
	if err := c.postJSON(ctx, op, fmt.Sprintf("/api/finance/%d/validate_receipt/", id), in, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Complete closes out a delivered request.
func (c *Client) Complete(ctx context.Context, id int64) (*model.Request, error) {
	op := "complete request"
	var updated model.Request
	if err := c.postJSON(ctx, op, fmt.Sprintf("/api/finance/%d/complete/", id), struct{}{}, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}
