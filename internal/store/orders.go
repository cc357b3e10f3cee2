package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
)

const orderColumns = `id, user_id, status, payment_method, total_amount,
	COALESCE(admin_notes, ''), created_at, updated_at`

// InsertOrder writes the header and fills in the generated id and timestamps.
func InsertOrder(ctx context.Context, q Querier, order *models.Order) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, status, payment_method, total_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		order.UserID, order.Status, order.PaymentMethod, order.TotalAmount,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func InsertOrderLines(ctx context.Context, q Querier, items []models.OrderItem) error {
	for _, item := range items {
		_, err := q.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, location_id, quantity, price_at_order, reserved_quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.OrderID, item.ProductID, item.LocationID, item.Quantity, item.PriceAtOrder, item.ReservedQuantity)
		if err != nil {
			return fmt.Errorf("create order item (product %d, location %d): %w", item.ProductID, item.LocationID, err)
		}
	}
	return nil
}

func GetOrder(ctx context.Context, q Querier, id int64) (*models.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := attachOrderLines(ctx, q, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns every order of the user, newest first, with lines.
func ListOrders(ctx context.Context, q Querier, userID int64) ([]models.Order, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := attachOrderLines(ctx, q, orderPointers(orders)); err != nil {
		return nil, err
	}
	return orders, nil
}

func ListOrdersCursor(ctx context.Context, q Querier, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		   AND (created_at, id) < ($2, $3)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $4`,
		userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	if err := attachOrderLines(ctx, q, orderPointers(orders)); err != nil {
		return nil, err
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListOrdersByStatus is the admin review queue, oldest first.
func ListOrdersByStatus(ctx context.Context, q Querier, status string, limit int) ([]models.Order, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE status = $1
		 ORDER BY created_at, id
		 LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders by status: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := attachOrderLines(ctx, q, orderPointers(orders)); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves an order from one status to another only if it is
// still in the expected status. Empty notes keep the existing admin notes.
func UpdateOrderStatus(ctx context.Context, q Querier, id int64, from, to, notes string) (*models.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx,
		`UPDATE orders
		 SET status = $3,
		     admin_notes = COALESCE(NULLIF($4, ''), admin_notes),
		     updated_at = NOW()
		 WHERE id = $1 AND status = $2
		 RETURNING `+orderColumns,
		id, from, to, notes))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := q.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check order exists: %w", err)
		}
		if !exists {
			return nil, database.ErrOrderNotFound
		}
		return nil, database.ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentMethod,
		&order.TotalAmount,
		&order.AdminNotes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return orders, nil
}

func orderPointers(orders []models.Order) []*models.Order {
	out := make([]*models.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out
}

// attachOrderLines loads the lines of all given orders in one query.
func attachOrderLines(ctx context.Context, q Querier, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []models.OrderItem{}
	}

	rows, err := q.QueryContext(ctx,
		`SELECT oi.order_id, oi.product_id, oi.location_id, oi.quantity,
		        oi.price_at_order, oi.reserved_quantity, p.name
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = ANY($1)
		 ORDER BY oi.order_id, oi.product_id, oi.location_id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.OrderID,
			&item.ProductID,
			&item.LocationID,
			&item.Quantity,
			&item.PriceAtOrder,
			&item.ReservedQuantity,
			&item.ProductName,
		)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}
