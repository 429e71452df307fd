package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "restaurant_exchange"

// RabbitMQ wraps an AMQP connection with a publish helper bound to the
// restaurant exchange. This service is publish-only; downstream services
// bind their own queues to the exchange.
type RabbitMQ struct {
	conn *amqp.Connection
}

func NewRabbitMQ(conn *amqp.Connection) *RabbitMQ {
	return &RabbitMQ{conn: conn}
}

// Emit publishes a JSON-encoded domain event under the given routing key.
// Failures are logged and dropped; consumers are designed for
// at-least-once, version-deduplicated processing and must tolerate loss.
func (r *RabbitMQ) Emit(ctx context.Context, subject string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal event", "subject", subject, "err", err)
		return
	}

	err = r.publish(ctx, subject, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.NewString(),
		Type:        fmt.Sprintf("%T", payload),
		Body:        body,
	})
	if err != nil {
		slog.Error("failed to publish event", "subject", subject, "err", err)
		return
	}

	slog.Info("published event", "routingKey", subject)
}

func (r *RabbitMQ) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		exchangeName, // exchange
		key,          // routing key
		false,        // mandatory
		false,        // immediate
		msg,
	)
}
