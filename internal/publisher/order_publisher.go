package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const eventTypeOrderPlaced = "OrderPlaced"

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPlacedPayload is the message body on the order-placed topic.
type OrderPlacedPayload struct {
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	Items      []domain.OrderItem `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
}

type OrderPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

func NewOrderPublisher(topic string, brokers ...string) *OrderPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return newOrderPublisher(w)
}

func newOrderPublisher(w MessageWriter) *OrderPublisher {
	return &OrderPublisher{writer: w, timeout: 5 * time.Second}
}

// OrderPlaced publishes order keyed by its id.
func (p *OrderPublisher) OrderPlaced(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID:    order.ID,
		UserID:     order.ActorID,
		TotalPrice: order.TotalPrice,
		Items:      order.Items,
		CreatedAt:  order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
