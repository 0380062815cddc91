package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer renders html templates and sends them over SMTP.
type SMTPMailer struct {
	cfg Config
	log *zap.Logger
}

func NewSMTP(cfg Config, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		log: log.Named("providers.email"),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, templateName string, data map[string]any) bool {
	body, err := m.render(templateName, data)
	if err != nil {
		m.log.Warn("mail template render failed",
			zap.String("template", templateName),
			zap.Error(err),
		)
		return false
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.FromName, m.cfg.From, strings.Join(to, ", "), subject, body,
	))

	if err := smtp.SendMail(addr, auth, m.cfg.From, to, msg); err != nil {
		m.log.Warn("mail dispatch failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (m *SMTPMailer) render(templateName string, data map[string]any) (string, error) {
	tmplPath := filepath.Join("internal", "providers", "email", "templates", templateName+".html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return body.String(), nil
}
