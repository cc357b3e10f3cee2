package checkout

import (
	"context"
	"fmt"

	"github.com/safar/chat-storefront/internal/models"
	"go.uber.org/zap"
)

var transitions = map[string][]string{
	models.OrderStatusPendingApproval: {models.OrderStatusApproved, models.OrderStatusRejected, models.OrderStatusCancelled},
	models.OrderStatusApproved:        {models.OrderStatusFulfilled, models.OrderStatusCancelled},
	models.OrderStatusRejected:        nil,
	models.OrderStatusFulfilled:       nil,
	models.OrderStatusCancelled:       nil,
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Admin exposes privileged order operations. It is built on its own backend
// so user-facing code never holds the elevated connection.
type Admin struct {
	backend AdminBackend
	logger  *zap.Logger
}

func NewAdmin(backend AdminBackend, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{backend: backend, logger: logger}
}

// UpdateOrderStatus moves an order to status, optionally recording admin
// notes. The write only succeeds if nobody changed the status in between.
func (a *Admin) UpdateOrderStatus(ctx context.Context, orderID int64, status, notes string) (*models.Order, error) {
	if _, ok := transitions[status]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	current, err := a.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, backendErr("get order", err)
	}
	if !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, status)
	}

	updated, err := a.backend.UpdateOrderStatus(ctx, orderID, current.Status, status, notes)
	if err != nil {
		err = backendErr("update order status", err)
		a.logger.Warn("order status update failed",
			zap.Int64("order_id", orderID),
			zap.String("from", current.Status),
			zap.String("to", status),
			zap.Error(err),
		)
		return nil, err
	}

	a.logger.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", current.Status),
		zap.String("to", status),
	)
	return updated, nil
}

// PendingOrders is the approval queue, oldest first. A limit outside
// 1..store.MaxPageSize means the default page size.
func (a *Admin) PendingOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders, err := a.backend.ListOrdersByStatus(ctx, models.OrderStatusPendingApproval, pageLimit(limit))
	if err != nil {
		return nil, backendErr("list pending orders", err)
	}
	return orders, nil
}
