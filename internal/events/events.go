package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/safar/chat-storefront/internal/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const TypeOrderCreated = "order.created"

type OrderCreated struct {
	Type          string      `json:"type"`
	OrderID       int64       `json:"order_id"`
	UserID        int64       `json:"user_id"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	TotalAmount   string      `json:"total_amount"`
	Lines         []OrderLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
}

type OrderLine struct {
	ProductID    int64  `json:"product_id"`
	LocationID   int64  `json:"location_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

func NewOrderCreated(order models.Order) OrderCreated {
	lines := make([]OrderLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = OrderLine{
			ProductID:    item.ProductID,
			LocationID:   item.LocationID,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder.StringFixed(2),
		}
	}
	return OrderCreated{
		Type:          TypeOrderCreated,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Lines:         lines,
		CreatedAt:     order.CreatedAt,
	}
}

// Message builds the Kafka message for an order. Keying by user keeps one
// user's events on one partition, in order.
func Message(order models.Order) (kafka.Message, error) {
	value, err := json.Marshal(NewOrderCreated(order))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", TypeOrderCreated, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(order.UserID, 10)),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeOrderCreated)},
		},
	}, nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w      messageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// PublishOrderCreated writes synchronously; the caller bounds it with ctx.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	msg, err := Message(order)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for order %d: %w", TypeOrderCreated, order.ID, err)
	}
	p.logger.Debug("event published", zap.String("type", TypeOrderCreated), zap.Int64("order_id", order.ID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
