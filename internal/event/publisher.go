package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"offer-service/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExtractionPublisher publishes batch-settled events to RabbitMQ. A nil
// publisher is valid and drops events, so the service runs without a broker
// in local setups.
type ExtractionPublisher struct {
	conn *RabbitMQConnection
}

func NewExtractionPublisher(conn *RabbitMQConnection) *ExtractionPublisher {
	return &ExtractionPublisher{conn: conn}
}

// PublishExtractionFinished announces that every document of a job settled.
func (p *ExtractionPublisher) PublishExtractionFinished(ctx context.Context, event models.ExtractionFinishedEvent) error {
	if p == nil || p.conn == nil {
		slog.Debug("No RabbitMQ connection, dropping extraction event", "job_id", event.JobID)
		return nil
	}

	_, err := p.conn.Channel.QueueDeclare(
		ExtractionEventsQueue, // queue name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                    // exchange
		ExtractionEventsQueue, // routing key (queue name)
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish extraction event: %w", err)
	}

	slog.Info("Published extraction finished event",
		"job_id", event.JobID,
		"product", event.Product,
		"documents", event.Documents,
		"failed", event.Failed)

	return nil
}
