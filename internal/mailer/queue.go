package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Queue is the RabbitMQ queue carrying outgoing mail.
const Queue = "mail"

// Publisher publishes a message body to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// QueueSender hands messages to a worker through the mail queue.
type QueueSender struct {
	publisher Publisher
}

// NewQueueSender creates a QueueSender publishing through publisher.
func NewQueueSender(publisher Publisher) *QueueSender {
	return &QueueSender{publisher: publisher}
}

// Send enqueues msg.
func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}
	if err := s.publisher.Publish(ctx, Queue, body); err != nil {
		return fmt.Errorf("failed to enqueue %s mail: %w", msg.Template, err)
	}
	return nil
}

// Worker delivers queued messages with the wrapped Sender.
type Worker struct {
	sender Sender
	logger *zap.Logger
}

// NewWorker creates a Worker delivering through sender.
func NewWorker(sender Sender, logger *zap.Logger) *Worker {
	return &Worker{sender: sender, logger: logger}
}

// Handle decodes one queued message and sends it.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		w.logger.Error("dropping malformed mail message", zap.Error(err))
		return fmt.Errorf("failed to decode mail message: %w", err)
	}
	return w.sender.Send(ctx, msg)
}
