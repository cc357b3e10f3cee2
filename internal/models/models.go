package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	TelegramID   int64     `json:"telegram_id"`
	LanguageCode string    `json:"language_code"`
	IsBlocked    bool      `json:"is_blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
}

type Manufacturer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Location struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Product carries the localized name and description when a translation
// exists for the requested language, the base name otherwise.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url,omitempty"`
	Variation    string          `json:"variation,omitempty"`
	Category     *Category       `json:"category,omitempty"`
	Manufacturer *Manufacturer   `json:"manufacturer,omitempty"`
}

type StockLevel struct {
	Location Location `json:"location"`
	Quantity int      `json:"quantity"`
}

// CartLine is a live view of a user_cart row. Name and Price are read at
// query time and are not stored on the line.
type CartLine struct {
	UserID     int64           `json:"user_id"`
	ProductID  int64           `json:"product_id"`
	LocationID int64           `json:"location_id"`
	Quantity   int             `json:"quantity"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Location   string          `json:"location,omitempty"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AdminNotes    string          `json:"admin_notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `json:"items"`
	Anomaly       string          `json:"anomaly,omitempty"`
}

type OrderItem struct {
	OrderID          int64           `json:"order_id"`
	ProductID        int64           `json:"product_id"`
	LocationID       int64           `json:"location_id"`
	Quantity         int             `json:"quantity"`
	PriceAtOrder     decimal.Decimal `json:"price_at_order"`
	ReservedQuantity int             `json:"reserved_quantity"`
	ProductName      string          `json:"product_name,omitempty"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtOrder.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

const (
	OrderStatusPendingApproval = "pending_admin_approval"
	OrderStatusApproved        = "approved"
	OrderStatusRejected        = "rejected"
	OrderStatusFulfilled       = "fulfilled"
	OrderStatusCancelled       = "cancelled"
)

const (
	LanguageEnglish = "en"
	LanguageRussian = "ru"
	LanguagePolish  = "pl"
)

func IsSupportedLanguage(code string) bool {
	switch code {
	case LanguageEnglish, LanguageRussian, LanguagePolish:
		return true
	}
	return false
}
