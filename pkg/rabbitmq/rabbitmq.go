package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
	// Queues are declared durable when the client connects.
	Queues []string
}

// Handler processes one delivery. A nil return acks the message.
type Handler func(ctx context.Context, body []byte) error

// NewClient connects to RabbitMQ, opens a channel and declares cfg.Queues.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range cfg.Queues {
		if err := declare(ch, queue); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	logger.Info("RabbitMQ client connected", zap.Strings("queues", cfg.Queues))
	return &Client{conn: conn, channel: ch, logger: logger}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to queue through the default exchange.
func (c *Client) Publish(ctx context.Context, queue string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	msg := newPublishing(body, time.Now().UTC())
	c.mu.Lock()
	err := c.channel.Publish("", queue, false, false, msg)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", queue, err)
	}

	c.logger.Debug("message published", zap.String("queue", queue), zap.String("message_id", msg.MessageId))
	return nil
}

func newPublishing(body []byte, now time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ulid.Make().String(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
	}
}

// Consume delivers messages from queue to handler until ctx is done or the
// channel closes. Failed messages are requeued once, then dropped.
func (c *Client) Consume(ctx context.Context, queue string, handler Handler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}
	if err := declare(c.channel, queue); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for messages", zap.String("queue", queue))
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.dispatch(ctx, msg, handler)
			}
		}
	}()
	return nil
}

func (c *Client) dispatch(ctx context.Context, msg amqp.Delivery, handler Handler) {
	log := c.logger.With(zap.String("message_id", msg.MessageId), zap.Uint64("delivery_tag", msg.DeliveryTag))
	if err := handler(ctx, msg.Body); err != nil {
		log.Error("failed to process message", zap.Error(err), zap.Bool("redelivered", msg.Redelivered))
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			log.Error("failed to nack message", zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error("failed to ack message", zap.Error(ackErr))
	}
}
