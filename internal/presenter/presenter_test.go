package presenter

import (
	"context"
	"testing"
	"time"

	"github.com/safar/chat-storefront/internal/i18n"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$25.50", FormatPrice(d("25.5"), "USD"))
	assert.Equal(t, "€3.00", FormatPrice(d("3"), "EUR"))
	assert.Equal(t, "10.00 zł", FormatPrice(d("10"), "PLN"))
	assert.Equal(t, "0.99 ₽", FormatPrice(d("0.99"), "RUB"))
	assert.Equal(t, "1.00 GBP", FormatPrice(d("1"), "GBP"))
}

func TestFormatCart(t *testing.T) {
	p := New(i18n.NewTranslator(nil, nil), "USD")
	ctx := context.Background()

	assert.Equal(t, defaultCartEmpty, p.FormatCart(ctx, nil, "en"))

	got := p.FormatCart(ctx, []models.CartLine{
		{Name: "Tea", Quantity: 2, Price: d("10.00")},
		{Name: "Coffee", Quantity: 1, Price: d("5.50")},
	}, "en")

	assert.Equal(t, "Your cart:\n"+
		"- Tea (x2) @ $10.00 each = $20.00\n"+
		"- Coffee (x1) @ $5.50 each = $5.50\n"+
		"\n"+
		"Total: $25.50", got)
}

func TestFormatCart_UsesStoredTemplates(t *testing.T) {
	texts := map[string]string{
		"cart_header": "Koszyk:",
		"cart_total":  "Razem: {total}",
	}
	tr := i18n.NewTranslator(i18n.TextSourceFunc(func(ctx context.Context, key, lang string) (string, bool, error) {
		text, ok := texts[key]
		return text, ok, nil
	}), nil)
	p := New(tr, "PLN")

	got := p.FormatCart(context.Background(), []models.CartLine{{Name: "Herbata", Quantity: 1, Price: d("4")}}, "pl")
	assert.Contains(t, got, "Koszyk:")
	assert.Contains(t, got, "Razem: 4.00 zł")
}

func TestFormatOrders(t *testing.T) {
	p := New(i18n.NewTranslator(nil, nil), "EUR")
	ctx := context.Background()

	assert.Equal(t, defaultNoOrders, p.FormatOrders(ctx, nil, "en"))

	got := p.FormatOrders(ctx, []models.Order{{
		ID:          7,
		Status:      models.OrderStatusPendingApproval,
		TotalAmount: d("20"),
		CreatedAt:   time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC),
		Items:       []models.OrderItem{{ProductName: "Tea", Quantity: 2, PriceAtOrder: d("10")}},
	}}, "en")

	assert.Equal(t, "Your orders:\n"+
		"Order #7 - Status: pending_admin_approval - Total: €20.00 - Date: 2024-03-09\n"+
		"  Tea x2 @ €10.00", got)
}

func TestFormatProductDetails(t *testing.T) {
	p := New(i18n.NewTranslator(nil, nil), "USD")
	ctx := context.Background()
	product := models.Product{Name: "Tea", Description: "Loose leaf", Price: d("3.2")}

	got := p.FormatProductDetails(ctx, product, []models.StockLevel{
		{Location: models.Location{Name: "Warsaw"}, Quantity: 8},
	}, "en")
	assert.Equal(t, "Tea\n\nLoose leaf\n\nPrice: $3.20\n\nStock:\nWarsaw: 8 units", got)

	got = p.FormatProductDetails(ctx, product, nil, "en")
	assert.Contains(t, got, defaultNoStock)
}
