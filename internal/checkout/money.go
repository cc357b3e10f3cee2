package checkout

import (
	"fmt"

	"github.com/safar/chat-storefront/internal/models"
	"github.com/shopspring/decimal"
)

// maxAmount is the first value that does not fit NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// orderTotal sums quantity times price exactly. Prices with fractional cents
// are rejected rather than rounded.
func orderTotal(lines []models.CartLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		if !isWholeCents(line.Price) || line.Price.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: product %d priced %s", ErrUnrepresentableAmount, line.ProductID, line.Price)
		}
		total = total.Add(line.Subtotal())
	}
	if total.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: total %s exceeds storage precision", ErrUnrepresentableAmount, total)
	}
	return total, nil
}

func isWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}
