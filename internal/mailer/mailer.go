// Package mailer sends parent alert emails. When SMTP is not configured
// the noop implementation is used and alerts only appear in the log.
package mailer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"github.com/carecircle/carecircle-api/internal/config"
)

// ErrUnconfigured is returned when email is requested but SMTP settings
// are absent.
var ErrUnconfigured = errors.New("smtp is not configured")

type Mailer interface {
	SendAlert(subject, body string) error
}

// New returns an SMTP mailer when the config carries a host, otherwise a
// log-only noop.
func New(cfg *config.Config, log *logrus.Logger) Mailer {
	if cfg.SMTP.Host == "" || cfg.SMTP.From == "" || cfg.SMTP.AlertTo == "" {
		log.Warn("smtp not configured, alert emails disabled")
		return &noopMailer{log: log}
	}
	return &smtpMailer{cfg: cfg.SMTP, log: log}
}

type smtpMailer struct {
	cfg config.SMTPConfig
	log *logrus.Logger
}

func (m *smtpMailer) SendAlert(subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.AlertTo)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	m.log.WithField("subject", subject).Info("alert email sent")
	return nil
}

type noopMailer struct {
	log *logrus.Logger
}

func (m *noopMailer) SendAlert(subject, body string) error {
	m.log.WithField("subject", subject).Debug("alert email skipped")
	return ErrUnconfigured
}
