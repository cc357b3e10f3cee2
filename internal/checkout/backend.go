package checkout

import (
	"context"

	"github.com/safar/chat-storefront/internal/models"
	"github.com/safar/chat-storefront/internal/store"
)

// Backend is the storage the cart and checkout workflow runs against.
type Backend interface {
	CartItems(ctx context.Context, userID int64, lang string) ([]models.CartLine, error)
	FindCartLine(ctx context.Context, userID, productID, locationID int64) (int, bool, error)
	InsertCartLine(ctx context.Context, userID, productID, locationID int64, quantity int) error
	UpdateCartLineQuantity(ctx context.Context, userID, productID, locationID int64, quantity int) error
	DeleteCartLine(ctx context.Context, userID, productID, locationID int64) error
	DeleteCartLines(ctx context.Context, userID int64, lines []models.CartLine) error
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderLines(ctx context.Context, items []models.OrderItem) error
	ListOrders(ctx context.Context, userID int64) ([]models.Order, error)
}

// Transactor is implemented by backends that can run several calls
// atomically. fn receives a Backend bound to the transaction; returning an
// error from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Backend) error) error
}

// OrderPager is implemented by backends that support keyset pagination of a
// user's orders.
type OrderPager interface {
	ListOrdersPage(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage, error)
}

// AdminBackend runs on a separate connection with elevated privileges.
type AdminBackend interface {
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrdersByStatus(ctx context.Context, status string, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, from, to, notes string) (*models.Order, error)
}

// Locker hands out a per-user mutual exclusion. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, userID int64) (func(), error)
}

// Publisher is notified after an order has been committed.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order models.Order) error
}
