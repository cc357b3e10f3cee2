package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/chat-storefront/internal/database"
	"github.com/safar/chat-storefront/internal/models"
)

const userColumns = `telegram_id, language_code, is_blocked, created_at, updated_at`

// CreateUser registers a chat user. Registering an existing user returns the
// stored row unchanged.
func CreateUser(ctx context.Context, q Querier, telegramID int64, languageCode string) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`INSERT INTO users (telegram_id, language_code, is_blocked, created_at, updated_at)
		 VALUES ($1, $2, FALSE, NOW(), NOW())
		 ON CONFLICT (telegram_id) DO UPDATE SET telegram_id = users.telegram_id
		 RETURNING `+userColumns,
		telegramID, languageCode))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func GetUser(ctx context.Context, q Querier, telegramID int64) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func SetUserLanguage(ctx context.Context, q Querier, telegramID int64, languageCode string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE users SET language_code = $2, updated_at = NOW() WHERE telegram_id = $1`,
		telegramID, languageCode)
	if err != nil {
		return fmt.Errorf("set user language: %w", err)
	}
	return expectRow(result, database.ErrUserNotFound)
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.TelegramID,
		&user.LanguageCode,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
