// Package money implements fixed-point monetary arithmetic in minor units
// (cents). Amounts travel as int64 cents end-to-end so that summing many
// line items never accumulates floating-point drift.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("invalid monetary amount")
)

// Cents is a monetary amount in minor units (1/100 of the major unit).
type Cents int64

// Parse converts a decimal string such as "15.50", "100", or "-3.1"
// into cents. At most two fraction digits are accepted; anything finer
// than a cent is rejected rather than silently rounded.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("%w: missing digits", ErrInvalidAmount)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("%w: more than two decimal places in %q", ErrInvalidAmount, s)
	}
	// ParseInt would accept a sign here, turning "1.-5" into 95 cents.
	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	minor, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	total := major*100 + minor
	if neg {
		total = -total
	}
	return Cents(total), nil
}

// MustParse is Parse for test fixtures and seed data; it panics on error.
func MustParse(s string) Cents {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the amount with exactly two decimal places, e.g. "134.10".
func (c Cents) String() string {
	n := int64(c)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

// MulQty multiplies a unit price by an item quantity.
func (c Cents) MulQty(qty int) Cents {
	return c * Cents(qty)
}

// MarshalJSON encodes the amount as a decimal string ("15.50").
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON accepts either a JSON string ("15.50") or a bare JSON
// number (15.5); clients historically sent both.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*c = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, s)
		}
		s = unquoted
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// LineTotal is the subtotal of one priced, quantified line item.
func LineTotal(unitPrice Cents, qty int) Cents {
	return unitPrice.MulQty(qty)
}

// InvoiceFinal computes final = total - discount + tax. A negative result
// (discount exceeding total plus tax) is returned as-is; whether to clamp
// or reject it is an open product decision.
func InvoiceFinal(total, discount, tax Cents) Cents {
	return total - discount + tax
}
