package checkout

import (
	"context"

	"github.com/safar/chat-storefront/internal/models"
	"go.uber.org/zap"
)

// AddToCart adds quantity of a product at a location. Adding an existing
// line increments it.
func (s *Service) AddToCart(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if locationID <= 0 {
		return ErrLocationRequired
	}

	err := s.withUserLock(ctx, userID, func(b Backend) error {
		existing, found, err := b.FindCartLine(ctx, userID, productID, locationID)
		if err != nil {
			return backendErr("find cart line", err)
		}
		if found {
			return backendErr("update cart line", b.UpdateCartLineQuantity(ctx, userID, productID, locationID, existing+quantity))
		}
		return backendErr("insert cart line", b.InsertCartLine(ctx, userID, productID, locationID, quantity))
	})
	if err != nil {
		s.logFailure("add to cart", err, zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Int64("location_id", locationID))
		return err
	}

	s.logger.Debug("cart line added",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int64("location_id", locationID),
		zap.Int("quantity", quantity),
	)
	return nil
}

// RemoveFromCart deletes one cart line.
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID, locationID int64) error {
	err := s.withUserLock(ctx, userID, func(b Backend) error {
		return backendErr("delete cart line", b.DeleteCartLine(ctx, userID, productID, locationID))
	})
	if err != nil {
		s.logFailure("remove from cart", err, zap.Int64("user_id", userID), zap.Int64("product_id", productID))
	}
	return err
}

// GetCart returns the cart with current names and prices for display.
func (s *Service) GetCart(ctx context.Context, userID int64, lang string) ([]models.CartLine, error) {
	lines, err := s.backend.CartItems(ctx, userID, lang)
	if err != nil {
		err = backendErr("read cart", err)
		s.logFailure("get cart", err, zap.Int64("user_id", userID))
		return nil, err
	}
	return lines, nil
}

func (s *Service) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if isBackendFailure(err) {
		s.logger.Error(op+" failed", fields...)
		return
	}
	s.logger.Debug(op+" rejected", fields...)
}
