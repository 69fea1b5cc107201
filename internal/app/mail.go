package app

import (
	"context"

	"storedir/internal/config"
	"storedir/internal/mailer"
	"storedir/pkg/rabbitmq"

	"go.uber.org/zap"
)

// Mail is the configured outgoing mail path.
type Mail struct {
	Sender mailer.Sender
	queue  *rabbitmq.Client
}

// OpenMail builds the SMTP sender. When RABBITMQ_URL is set, messages are
// queued instead and a worker consuming the queue delivers them until ctx ends.
func OpenMail(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Mail, error) {
	templates, err := mailer.LoadTemplates()
	if err != nil {
		return nil, err
	}
	smtp, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, templates, logger)
	if err != nil {
		return nil, err
	}
	if cfg.RabbitMQURL == "" {
		return &Mail{Sender: smtp}, nil
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:    cfg.RabbitMQURL,
		Queues: []string{mailer.Queue},
	}, logger)
	if err != nil {
		return nil, err
	}
	worker := mailer.NewWorker(smtp, logger)
	if err := client.Consume(ctx, mailer.Queue, worker.Handle); err != nil {
		client.Close()
		return nil, err
	}
	return &Mail{Sender: mailer.NewQueueSender(client), queue: client}, nil
}

// Close closes the queue connection, if any.
func (m *Mail) Close() error {
	if m.queue == nil {
		return nil
	}
	return m.queue.Close()
}
