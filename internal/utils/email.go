package utils

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// MailConfig décrit le serveur SMTP ; Host vide = e-mails seulement journalisés
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer envoie les e-mails transactionnels
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer envoie via go-mail
type SMTPMailer struct {
	cfg MailConfig
	log *zap.Logger
}

func NewSMTPMailer(cfg MailConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("client SMTP: %w", err)
	}

	m.log.Info("📤 Envoi de l'e-mail", zap.String("to", to), zap.String("subject", subject))
	return client.DialAndSendWithContext(ctx, msg)
}

// LogMailer remplace le SMTP quand il n'est pas configuré
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info("📧 E-mail non envoyé (SMTP non configuré)", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NewMailer choisit SMTP ou journalisation selon la config
func NewMailer(cfg MailConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg, log)
}
