package notifications

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes payment events to a topic exchange with routing key
// "payment.<event>". Consumers deduplicate on MessageId.
type AMQPSender struct {
	conn     *amqp.Connection
	ch       amqpPublisher
	exchange string
	now      func() time.Time
}

var _ interfaces.INotificationSender = (*AMQPSender)(nil)

func NewAMQPSender(url, exchange string) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	log.Printf("[notification][amqp] publisher ready exchange=%s", exchange)
	return &AMQPSender{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

type paymentEventMessage struct {
	ID        string            `json:"id"`
	BookingID string            `json:"booking_id"`
	Event     string            `json:"event"`
	Payload   map[string]string `json:"payload,omitempty"`
}

func routingKey(event entities.NotificationEvent) string {
	return "payment." + string(event)
}

func (s *AMQPSender) Send(ctx context.Context, msg entities.OutboundMessage) error {
	body, err := json.Marshal(paymentEventMessage{
		ID:        msg.ID,
		BookingID: msg.BookingID,
		Event:     string(msg.Event),
		Payload:   msg.Payload,
	})
	if err != nil {
		return err
	}
	err = s.ch.PublishWithContext(ctx, s.exchange, routingKey(msg.Event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    s.now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("[notification][amqp] publish failed id=%s event=%s err=%v", msg.ID, msg.Event, err)
		return err
	}
	return nil
}

func (s *AMQPSender) Close() error {
	if c, ok := s.ch.(*amqp.Channel); ok && c != nil {
		_ = c.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
