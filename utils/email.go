package utils

import (
	"gopkg.in/gomail.v2"
)

// Mailer delivers HTML email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendEmail(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.User)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	return d.DialAndSend(msg)
}

// NopMailer drops every message; used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendEmail(to, subject, body string) error { return nil }
