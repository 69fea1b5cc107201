// Package mailer renders and delivers transactional email.
package mailer

import (
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// PasswordResetTemplate is the template used for password reset links.
const PasswordResetTemplate = "password-reset"

//go:embed templates/*
var templateFS embed.FS

// Message is a single templated email.
type Message struct {
	To       string         `json:"to"`
	Name     string         `json:"name"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Templates holds the parsed HTML and plain text bodies keyed by template name.
type Templates struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// LoadTemplates parses the embedded mail templates.
func LoadTemplates() (*Templates, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html mail templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text mail templates: %w", err)
	}
	return &Templates{html: html, text: text}, nil
}

// Render returns the HTML and plain text bodies of msg.
func (t *Templates) Render(msg Message) (string, string, error) {
	data := map[string]any{"Name": msg.Name, "Email": msg.To, "Subject": msg.Subject}
	for k, v := range msg.Data {
		data[k] = v
	}

	var html, text strings.Builder
	if err := t.html.ExecuteTemplate(&html, msg.Template+".html", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s html body: %w", msg.Template, err)
	}
	if err := t.text.ExecuteTemplate(&text, msg.Template+".txt", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s text body: %w", msg.Template, err)
	}
	return html.String(), text.String(), nil
}
