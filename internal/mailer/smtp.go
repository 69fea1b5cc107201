package mailer

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPSender renders messages and delivers them over SMTP.
type SMTPSender struct {
	client    smtpClient
	from      string
	templates *Templates
	logger    *zap.Logger
}

// NewSMTPSender creates an SMTPSender for cfg.
func NewSMTPSender(cfg SMTPConfig, templates *Templates, logger *zap.Logger) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return newSMTPSender(client, cfg.From, templates, logger), nil
}

func newSMTPSender(client smtpClient, from string, templates *Templates, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{client: client, from: from, templates: templates, logger: logger}
}

// Send renders msg and delivers it.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send %s mail to %s: %w", msg.Template, msg.To, err)
	}
	s.logger.Info("mail sent", zap.String("template", msg.Template), zap.String("to", msg.To))
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	html, text, err := s.templates.Render(msg)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}
	if msg.Name != "" {
		err = m.AddToFormat(msg.Name, msg.To)
	} else {
		err = m.To(msg.To)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, text)
	m.AddAlternativeString(gomail.TypeTextHTML, html)
	return m, nil
}
