// Package presenter renders carts, orders and products as chat text.
package presenter

import (
	"context"
	"strconv"
	"strings"

	"github.com/safar/chat-storefront/internal/i18n"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/shopspring/decimal"
)

const (
	defaultCartHeader     = "Your cart:"
	defaultCartLine       = "- {name} (x{quantity}) @ {price} each = {subtotal}"
	defaultCartTotal      = "Total: {total}"
	defaultCartEmpty      = "Your cart is currently empty."
	defaultOrdersHeader   = "Your orders:"
	defaultOrderLine      = "Order #{id} - Status: {status} - Total: {total} - Date: {date}"
	defaultOrderItemLine  = "  {name} x{quantity} @ {price}"
	defaultNoOrders       = "You have no orders yet."
	defaultProductDetails = "{name}\n\n{description}\n\nPrice: {price}\n\nStock:\n{stock_list}"
	defaultStockLine      = "{location_name}: {quantity} units"
	defaultNoStock        = "Stock information unavailable"
)

type Presenter struct {
	tr       *i18n.Translator
	currency string
}

func New(tr *i18n.Translator, currency string) *Presenter {
	return &Presenter{tr: tr, currency: currency}
}

// FormatPrice renders an amount with two decimals and the currency symbol.
func FormatPrice(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	switch currency {
	case "USD":
		return "$" + s
	case "EUR":
		return "€" + s
	case "PLN":
		return s + " zł"
	case "RUB":
		return s + " ₽"
	}
	return s + " " + currency
}

func (p *Presenter) price(d decimal.Decimal) string {
	return FormatPrice(d, p.currency)
}

func (p *Presenter) FormatCart(ctx context.Context, lines []models.CartLine, lang string) string {
	if len(lines) == 0 {
		return p.tr.Get(ctx, "cart_is_empty", lang, defaultCartEmpty)
	}

	out := []string{p.tr.Get(ctx, "cart_header", lang, defaultCartHeader)}
	lineTpl := p.tr.Get(ctx, "cart_line", lang, defaultCartLine)

	total := decimal.Zero
	for _, line := range lines {
		subtotal := line.Subtotal()
		total = total.Add(subtotal)
		out = append(out, i18n.Fill(lineTpl, map[string]string{
			"name":     line.Name,
			"quantity": strconv.Itoa(line.Quantity),
			"price":    p.price(line.Price),
			"subtotal": p.price(subtotal),
			"location": line.Location,
		}))
	}

	out = append(out, "", p.tr.Format(ctx, "cart_total", lang, defaultCartTotal, map[string]string{
		"total": p.price(total),
	}))
	return strings.Join(out, "\n")
}

func (p *Presenter) FormatOrders(ctx context.Context, orders []models.Order, lang string) string {
	if len(orders) == 0 {
		return p.tr.Get(ctx, "no_orders_found", lang, defaultNoOrders)
	}

	out := []string{p.tr.Get(ctx, "orders_header", lang, defaultOrdersHeader)}
	orderTpl := p.tr.Get(ctx, "order_line", lang, defaultOrderLine)
	itemTpl := p.tr.Get(ctx, "order_item_line", lang, defaultOrderItemLine)

	for _, order := range orders {
		out = append(out, i18n.Fill(orderTpl, map[string]string{
			"id":     strconv.FormatInt(order.ID, 10),
			"status": p.tr.Get(ctx, "order_status_"+order.Status, lang, order.Status),
			"total":  p.price(order.TotalAmount),
			"date":   order.CreatedAt.Format("2006-01-02"),
		}))
		for _, item := range order.Items {
			out = append(out, i18n.Fill(itemTpl, map[string]string{
				"name":     item.ProductName,
				"quantity": strconv.Itoa(item.Quantity),
				"price":    p.price(item.PriceAtOrder),
			}))
		}
	}
	return strings.Join(out, "\n")
}

func (p *Presenter) FormatProductDetails(ctx context.Context, product models.Product, stock []models.StockLevel, lang string) string {
	var stockLines []string
	if len(stock) == 0 {
		stockLines = append(stockLines, p.tr.Get(ctx, "stock_unavailable", lang, defaultNoStock))
	} else {
		tpl := p.tr.Get(ctx, "product_stock_line", lang, defaultStockLine)
		for _, s := range stock {
			stockLines = append(stockLines, i18n.Fill(tpl, map[string]string{
				"location_name": s.Location.Name,
				"quantity":      strconv.Itoa(s.Quantity),
			}))
		}
	}

	return p.tr.Format(ctx, "product_details_template", lang, defaultProductDetails, map[string]string{
		"name":        product.Name,
		"description": product.Description,
		"price":       p.price(product.Price),
		"stock_list":  strings.Join(stockLines, "\n"),
	})
}
