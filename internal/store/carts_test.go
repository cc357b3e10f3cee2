package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var cartColumns = []string{"user_id", "product_id", "location_id", "quantity", "name", "price", "location"}

func TestCartItems(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_cart c")).
		WithArgs(int64(42), "ru").
		WillReturnRows(sqlmock.NewRows(cartColumns).
			AddRow(42, 1, 3, 2, "Чай", "10.00", "Warsaw").
			AddRow(42, 2, 3, 1, "Coffee", "5.50", "Warsaw"))

	lines, err := CartItems(context.Background(), db, 42, "ru")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Чай", lines[0].Name)
	assert.True(t, decimal.RequireFromString("10.00").Equal(lines[0].Price))
	assert.True(t, decimal.RequireFromString("20.00").Equal(lines[0].Subtotal()))
	assert.Equal(t, int64(3), lines[1].LocationID)
}

func TestCartItemsForUpdate_LocksCartRows(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE OF c`).
		WithArgs(int64(42), "en").
		WillReturnRows(sqlmock.NewRows(cartColumns))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	lines, err := CartItemsForUpdate(context.Background(), tx, 42, "en")
	require.NoError(t, err)
	assert.Empty(t, lines)
	require.NoError(t, tx.Commit())
}

func TestFindCartLine(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM user_cart")).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM user_cart")).
		WithArgs(int64(1), int64(9), int64(3)).
		WillReturnError(sql.ErrNoRows)

	qty, found, err := FindCartLine(context.Background(), db, 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, qty)

	qty, found, err = FindCartLine(context.Background(), db, 1, 9, 3)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, qty)
}

func TestFindCartLineForUpdate_LocksLine(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT quantity FROM user_cart\s+WHERE .*\s+FOR UPDATE$`).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(4))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	qty, found, err := FindCartLineForUpdate(context.Background(), tx, 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, qty)
	require.NoError(t, tx.Commit())
}

func TestUpdateCartLineQuantity_NotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_cart")).
		WithArgs(int64(1), int64(2), int64(3), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := UpdateCartLineQuantity(context.Background(), db, 1, 2, 3, 7)
	assert.ErrorIs(t, err, database.ErrCartLineNotFound)
}

func TestDeleteCartLine(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_cart")).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, DeleteCartLine(context.Background(), db, 1, 2, 3))
}

func TestDeleteCartLines_OnlyListedKeys(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("(product_id, location_id) IN (")).
		WithArgs(int64(1), "{2,5}", "{3,3}").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := DeleteCartLines(context.Background(), db, 1, []models.CartLine{
		{ProductID: 2, LocationID: 3},
		{ProductID: 5, LocationID: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteCartLines_NothingToDelete(t *testing.T) {
	db, _ := newMock(t)

	n, err := DeleteCartLines(context.Background(), db, 1, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
