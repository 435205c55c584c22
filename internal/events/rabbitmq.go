package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ResumeSense/internal/models"

	"github.com/streadway/amqp"
)

// AMQPPublisher publishes updates to a durable topic exchange with routing
// key resume.<resumeID> (upload.<uploadID> before the row exists).
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, update models.StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	return ch.Publish(
		p.exchange,
		RoutingKey(update),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   update.Timestamp,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

// RoutingKey is resume.<id> once the resume row exists.
func RoutingKey(update models.StatusUpdate) string {
	if update.ResumeID != "" {
		return "resume." + update.ResumeID
	}
	return "upload." + update.UploadID
}
