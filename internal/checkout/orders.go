package checkout

import (
	"context"
	"errors"

	"github.com/safar/chat-storefront/internal/models"
	"github.com/safar/chat-storefront/internal/store"
	"go.uber.org/zap"
)

// GetOrders returns the user's orders, newest first. Orders that fail
// verification are returned with Anomaly set.
func (s *Service) GetOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.backend.ListOrders(ctx, userID)
	if err != nil {
		err = backendErr("list orders", err)
		s.logFailure("get orders", err, zap.Int64("user_id", userID))
		return nil, err
	}

	s.verify(orders)
	return orders, nil
}

// ListOrdersPage is GetOrders with keyset pagination.
func (s *Service) ListOrdersPage(ctx context.Context, userID int64, cursor string, limit int) (*store.CursorPage, error) {
	pager, ok := s.backend.(OrderPager)
	if !ok {
		return nil, ErrPagingUnsupported
	}

	page, err := pager.ListOrdersPage(ctx, userID, cursor, pageLimit(limit))
	if errors.Is(err, store.ErrInvalidCursor) {
		return nil, err
	}
	if err != nil {
		return nil, backendErr("list orders page", err)
	}

	if orders, ok := page.Items.([]models.Order); ok {
		s.verify(orders)
	}
	return page, nil
}

func (s *Service) verify(orders []models.Order) {
	for i := range orders {
		if err := orders[i].Verify(); err != nil {
			orders[i].Anomaly = err.Error()
			s.logger.Warn("order failed verification",
				zap.Int64("order_id", orders[i].ID),
				zap.Int64("user_id", orders[i].UserID),
				zap.Error(err),
			)
		}
	}
}

// pageLimit replaces a missing or out-of-range limit with the default page size.
func pageLimit(limit int) int {
	if limit < 1 || limit > store.MaxPageSize {
		return store.DefaultPageSize
	}
	return limit
}
