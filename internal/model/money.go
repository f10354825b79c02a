package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value. The backend serializes amounts as
// decimal-formatted strings ("1234.50"); Amount accepts both that and a bare
// JSON number, and always marshals back to the string form.
type Amount struct {
	d decimal.Decimal
}

// ParseAmount parses a decimal-formatted amount string.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// AmountFromDecimal wraps an existing decimal value.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// String returns the wire form with two fractional digits.
func (a Amount) String() string { return a.d.StringFixed(2) }

// Display returns the user-facing form, e.g. "$1234.50".
func (a Amount) Display() string { return "$" + a.d.StringFixed(2) }

// Positive reports whether the amount is strictly greater than zero.
func (a Amount) Positive() bool { return a.d.IsPositive() }

// MarshalJSON emits the backend's string representation.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both "1234.50" and 1234.5.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseAmount(s)
		if perr != nil {
			return perr
		}
		*a = parsed
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	a.d = d
	return nil
}
