package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderHasNoLines    = errors.New("order has no lines")
	ErrOrderTotalMismatch = errors.New("order total does not match its lines")
)

// LinesTotal sums price_at_order times quantity over the order's lines.
func (o Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Verify checks that a stored order is internally consistent.
func (o Order) Verify() error {
	if len(o.Items) == 0 {
		return ErrOrderHasNoLines
	}
	if sum := o.LinesTotal(); !sum.Equal(o.TotalAmount) {
		return fmt.Errorf("%w: total %s, lines %s", ErrOrderTotalMismatch, o.TotalAmount.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}
