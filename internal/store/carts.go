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

const cartItemsQuery = `
	SELECT c.user_id, c.product_id, c.location_id, c.quantity,
	       COALESCE(pl.name, p.name), p.price, l.name
	FROM user_cart c
	JOIN products p ON p.id = c.product_id
	JOIN locations l ON l.id = c.location_id
	LEFT JOIN product_localization pl
	       ON pl.product_id = p.id AND pl.language_code = $2
	WHERE c.user_id = $1
	ORDER BY c.created_at, c.product_id, c.location_id`

// CartItems returns the user's cart resolved against current product name
// and price. A missing translation falls back to the base product name.
func CartItems(ctx context.Context, q Querier, userID int64, lang string) ([]models.CartLine, error) {
	return cartItems(ctx, q, cartItemsQuery, userID, lang)
}

// CartItemsForUpdate is CartItems with row locks on the cart lines. It must
// run inside a transaction; a concurrent checkout of the same cart blocks
// until this one commits and then sees the cleared cart.
func CartItemsForUpdate(ctx context.Context, tx *sql.Tx, userID int64, lang string) ([]models.CartLine, error) {
	return cartItems(ctx, tx, cartItemsQuery+"\n\tFOR UPDATE OF c", userID, lang)
}

func cartItems(ctx context.Context, q Querier, query string, userID int64, lang string) ([]models.CartLine, error) {
	rows, err := q.QueryContext(ctx, query, userID, lang)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		err := rows.Scan(
			&line.UserID,
			&line.ProductID,
			&line.LocationID,
			&line.Quantity,
			&line.Name,
			&line.Price,
			&line.Location,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

const findCartLineQuery = `
	SELECT quantity FROM user_cart
	WHERE user_id = $1 AND product_id = $2 AND location_id = $3`

// FindCartLine reports the quantity of one line and whether it exists.
func FindCartLine(ctx context.Context, q Querier, userID, productID, locationID int64) (int, bool, error) {
	return findCartLine(ctx, q, findCartLineQuery, userID, productID, locationID)
}

// FindCartLineForUpdate is FindCartLine with a row lock, so a read-modify-write
// of the quantity cannot interleave with another writer or a checkout holding
// the line. If a checkout removes the line while this waits, the line is
// reported as absent.
func FindCartLineForUpdate(ctx context.Context, tx *sql.Tx, userID, productID, locationID int64) (int, bool, error) {
	return findCartLine(ctx, tx, findCartLineQuery+"\n\tFOR UPDATE", userID, productID, locationID)
}

func findCartLine(ctx context.Context, q Querier, query string, userID, productID, locationID int64) (int, bool, error) {
	var quantity int
	err := q.QueryRowContext(ctx, query, userID, productID, locationID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find cart line: %w", err)
	}
	return quantity, true, nil
}

// InsertCartLine adds a new line. If a concurrent writer created the same
// line first, the quantities are summed instead of failing on the key.
func InsertCartLine(ctx context.Context, q Querier, userID, productID, locationID int64, quantity int) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO user_cart (user_id, product_id, location_id, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (user_id, product_id, location_id)
		 DO UPDATE SET quantity = user_cart.quantity + EXCLUDED.quantity, updated_at = NOW()`,
		userID, productID, locationID, quantity)
	if err != nil {
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func UpdateCartLineQuantity(ctx context.Context, q Querier, userID, productID, locationID int64, quantity int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE user_cart
		 SET quantity = $4, updated_at = NOW()
		 WHERE user_id = $1 AND product_id = $2 AND location_id = $3`,
		userID, productID, locationID, quantity)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return expectRow(result, database.ErrCartLineNotFound)
}

func DeleteCartLine(ctx context.Context, q Querier, userID, productID, locationID int64) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM user_cart
		 WHERE user_id = $1 AND product_id = $2 AND location_id = $3`,
		userID, productID, locationID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return expectRow(result, database.ErrCartLineNotFound)
}

// DeleteCartLines removes the given lines from the user's cart and returns
// how many were deleted. Lines added after lines were read stay in the cart.
func DeleteCartLines(ctx context.Context, q Querier, userID int64, lines []models.CartLine) (int64, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	productIDs := make([]int64, len(lines))
	locationIDs := make([]int64, len(lines))
	for i, line := range lines {
		productIDs[i] = line.ProductID
		locationIDs[i] = line.LocationID
	}

	result, err := q.ExecContext(ctx,
		`DELETE FROM user_cart
		 WHERE user_id = $1
		   AND (product_id, location_id) IN (
		       SELECT * FROM unnest($2::bigint[], $3::bigint[]))`,
		userID, pq.Array(productIDs), pq.Array(locationIDs))
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}

func expectRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
