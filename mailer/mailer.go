package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"helpdesk/config"
)

// SMTPMailer delivers notification mail over plain SMTP. When the host
// is unconfigured it degrades to logging, so development setups work
// without a mail server.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" {
		log.Printf("mail (smtp unconfigured) to=%s subject=%q", to, subject)
		return nil
	}

	from := m.cfg.FromAddress
	if from == "" {
		from = m.cfg.Username
	}

	headers := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		m.cfg.FromName, from, to, subject)
	msg := []byte(headers + body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}
