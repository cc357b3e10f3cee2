package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetInterfaceText looks up a UI string in the requested language. The bool
// is false when the key is unknown or has no text for that language.
func GetInterfaceText(ctx context.Context, q Querier, key, lang string) (string, bool, error) {
	var text sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT CASE $2
		            WHEN 'ru' THEN text_ru
		            WHEN 'pl' THEN text_pl
		            ELSE text_en
		        END
		 FROM interface_text
		 WHERE key = $1`,
		key, lang).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get interface text %q: %w", key, err)
	}
	if !text.Valid || text.String == "" {
		return "", false, nil
	}
	return text.String, true, nil
}
