package checkout

import (
	"context"
	"database/sql"
	"errors"

	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/safar/chat-storefront/internal/store"
)

// PostgresBackend implements Backend, Transactor and OrderPager over the
// store package.
type PostgresBackend struct {
	db *sql.DB
	tx *sql.Tx
}

var (
	_ Backend    = (*PostgresBackend)(nil)
	_ Transactor = (*PostgresBackend)(nil)
	_ OrderPager = (*PostgresBackend)(nil)
)

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (p *PostgresBackend) q() store.Querier {
	if p.tx != nil {
		return p.tx
	}
	return p.db
}

// WithinTx runs fn in a READ COMMITTED transaction. Inside it, CartItems and
// FindCartLine lock the cart rows they return.
func (p *PostgresBackend) WithinTx(ctx context.Context, fn func(Backend) error) error {
	if p.tx != nil {
		return fn(p)
	}
	return database.WithTransaction(ctx, p.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return fn(&PostgresBackend{db: p.db, tx: tx})
	})
}

func (p *PostgresBackend) CartItems(ctx context.Context, userID int64, lang string) ([]models.CartLine, error) {
	if p.tx != nil {
		return store.CartItemsForUpdate(ctx, p.tx, userID, lang)
	}
	return store.CartItems(ctx, p.db, userID, lang)
}

// FindCartLine locks the line when called inside a transaction.
func (p *PostgresBackend) FindCartLine(ctx context.Context, userID, productID, locationID int64) (int, bool, error) {
	if p.tx != nil {
		return store.FindCartLineForUpdate(ctx, p.tx, userID, productID, locationID)
	}
	return store.FindCartLine(ctx, p.db, userID, productID, locationID)
}

func (p *PostgresBackend) InsertCartLine(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	return mapCartError(store.InsertCartLine(ctx, p.q(), userID, productID, locationID, quantity))
}

func (p *PostgresBackend) UpdateCartLineQuantity(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	return mapCartError(store.UpdateCartLineQuantity(ctx, p.q(), userID, productID, locationID, quantity))
}

func (p *PostgresBackend) DeleteCartLine(ctx context.Context, userID, productID, locationID int64) error {
	return mapCartError(store.DeleteCartLine(ctx, p.q(), userID, productID, locationID))
}

func (p *PostgresBackend) DeleteCartLines(ctx context.Context, userID int64, lines []models.CartLine) error {
	_, err := store.DeleteCartLines(ctx, p.q(), userID, lines)
	return err
}

func (p *PostgresBackend) InsertOrder(ctx context.Context, order *models.Order) error {
	return store.InsertOrder(ctx, p.q(), order)
}

func (p *PostgresBackend) InsertOrderLines(ctx context.Context, items []models.OrderItem) error {
	return store.InsertOrderLines(ctx, p.q(), items)
}

// ListOrders reads headers and lines from one snapshot.
func (p *PostgresBackend) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	if p.tx != nil {
		return store.ListOrders(ctx, p.tx, userID)
	}

	var orders []models.Order
	err := database.WithRetry(ctx, p.db, database.ReadOnlyTxOptions(), func(tx *sql.Tx) error {
		var err error
		orders, err = store.ListOrders(ctx, tx, userID)
		return err
	})
	return orders, err
}

func (p *PostgresBackend) ListOrdersPage(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage, error) {
	var page *store.CursorPage
	err := database.WithRetry(ctx, p.db, database.ReadOnlyTxOptions(), func(tx *sql.Tx) error {
		var err error
		page, err = store.ListOrdersCursor(ctx, tx, userID, cursor, limit)
		return err
	})
	return page, err
}

func mapCartError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrCartLineNotFound):
		return ErrCartLineNotFound
	case database.IsForeignKeyViolation(err):
		return ErrUnknownProductOrLocation
	case database.IsCheckViolation(err):
		return ErrInvalidQuantity
	}
	return err
}

// PostgresAdmin implements AdminBackend on the elevated connection.
type PostgresAdmin struct {
	db *sql.DB
}

var _ AdminBackend = (*PostgresAdmin)(nil)

func NewPostgresAdmin(db *sql.DB) *PostgresAdmin {
	return &PostgresAdmin{db: db}
}

func (p *PostgresAdmin) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return mapOrderError(store.GetOrder(ctx, p.db, orderID))
}

func (p *PostgresAdmin) ListOrdersByStatus(ctx context.Context, status string, limit int) ([]models.Order, error) {
	return store.ListOrdersByStatus(ctx, p.db, status, limit)
}

func (p *PostgresAdmin) UpdateOrderStatus(ctx context.Context, orderID int64, from, to, notes string) (*models.Order, error) {
	return mapOrderError(store.UpdateOrderStatus(ctx, p.db, orderID, from, to, notes))
}

func mapOrderError(order *models.Order, err error) (*models.Order, error) {
	switch {
	case errors.Is(err, database.ErrOrderNotFound):
		return nil, ErrOrderNotFound
	case errors.Is(err, database.ErrStatusConflict):
		return nil, ErrOrderStatusConflict
	case err != nil:
		return nil, err
	}
	return order, nil
}
