package client

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"procurepay/internal/model"
)

var validate = validator.New()

// RequestInput carries the form fields for creating or updating a request.
// Validation runs locally before any network call is issued.
type RequestInput struct {
	Title       string `validate:"required,min=3"`
	Description string `validate:"required,min=10"`
	Amount      string `validate:"required"`
	Quantity    int    `validate:"required,gt=0"`
	Department  string `validate:"required"`
	VendorName  string `validate:"required,min=2"`
	Category    string `validate:"required"`
	Urgency     string `validate:"required,oneof=low normal high critical"`
}

// Validate checks the struct tags plus the decimal amount rule.
func (in RequestInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid request input: %w", err)
	}
	amount, err := model.ParseAmount(in.Amount)
	if err != nil {
		return err
	}
	if !amount.Positive() {
		return fmt.Errorf("amount must be a positive number, got %s", in.Amount)
	}
	return nil
}

// formFields renders the input as the multipart field set the backend expects.
func (in RequestInput) formFields() map[string]string {
	return map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"amount":      in.Amount,
		"quantity":    strconv.Itoa(in.Quantity),
		"department":  in.Department,
		"vendor_name": in.VendorName,
		"category":    in.Category,
		"urgency":     in.Urgency,
	}
}

// ReceiptValidationInput is the body of a validate_receipt call.
type ReceiptValidationInput struct {
	Status  string `json:"status" validate:"required,oneof=received partially_received not_received"`
	Comment string `json:"comment"`
}

// Validate checks the receipt status against the closed value set.
func (in ReceiptValidationInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid receipt validation: %w", err)
	}
	return nil
}
