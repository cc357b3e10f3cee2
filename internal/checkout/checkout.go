package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/safar/chat-storefront/internal/models"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Checkout converts the user's cart into an order awaiting admin approval.
//
// The cart is read, the header and lines are written, and the lines that were
// ordered are removed from the cart while the user's lock is held. On a transactional backend these steps
// commit or roll back together; otherwise a failure after the header is
// written is reported as *PartialOrderWriteError.
func (s *Service) Checkout(ctx context.Context, userID int64, paymentMethod string) (*models.Order, error) {
	method, err := s.normalizePaymentMethod(paymentMethod)
	if err != nil {
		s.logger.Debug("checkout rejected", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	transactional := s.transactional()

	var order *models.Order
	err = s.withUserLock(ctx, userID, func(b Backend) error {
		lines, err := b.CartItems(ctx, userID, models.LanguageEnglish)
		if err != nil {
			return backendErr("read cart", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total, err := orderTotal(lines)
		if err != nil {
			return err
		}

		o := &models.Order{
			UserID:        userID,
			Status:        models.OrderStatusPendingApproval,
			PaymentMethod: method,
			TotalAmount:   total,
		}
		if err := b.InsertOrder(ctx, o); err != nil {
			return backendErr("insert order", err)
		}

		items := snapshotLines(o.ID, lines)
		if err := b.InsertOrderLines(ctx, items); err != nil {
			return partialWrite(transactional, o.ID, StageLines, backendErr("insert order lines", err))
		}
		if err := b.DeleteCartLines(ctx, userID, lines); err != nil {
			return partialWrite(transactional, o.ID, StageClearCart, backendErr("clear cart", err))
		}

		o.Items = items
		order = o
		return nil
	})
	if err != nil {
		s.logCheckoutFailure(userID, err)
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.String("payment_method", method),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)),
	)

	s.publish(ctx, *order)
	return order, nil
}

// snapshotLines copies the prices read from the cart onto the order lines.
func snapshotLines(orderID int64, lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItem{
			OrderID:      orderID,
			ProductID:    line.ProductID,
			LocationID:   line.LocationID,
			Quantity:     line.Quantity,
			PriceAtOrder: line.Price,
			ProductName:  line.Name,
		}
	}
	return items
}

func partialWrite(transactional bool, orderID int64, stage WriteStage, err error) error {
	if transactional {
		return err
	}
	return &PartialOrderWriteError{OrderID: orderID, Stage: stage, Err: err}
}

func (s *Service) logCheckoutFailure(userID int64, err error) {
	var partial *PartialOrderWriteError
	switch {
	case errors.As(err, &partial):
		s.logger.Error("order partially written, needs reconciliation",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", partial.OrderID),
			zap.String("stage", string(partial.Stage)),
			zap.Error(partial.Err),
		)
	case isBackendFailure(err):
		s.logger.Error("checkout failed", zap.Int64("user_id", userID), zap.Error(err))
	default:
		s.logger.Debug("checkout rejected", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, order models.Order) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Warn("publish order.created",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func isBackendFailure(err error) bool {
	var partial *PartialOrderWriteError
	return errors.Is(err, ErrBackendUnavailable) || errors.As(err, &partial)
}
