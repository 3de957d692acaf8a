// Package notify delivers best-effort out-of-band alerts.
package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// DefaultTimeout bounds one whole delivery attempt, dial included.
const DefaultTimeout = 10 * time.Second

// Mailer sends a plain-text message.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends mail through a single SMTP relay.
type SMTPMailer struct {
	config   SMTPConfig
	server   string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	m := &SMTPMailer{
		config: config,
		server: net.JoinHostPort(config.Host, config.Port),
		auth:   auth,
	}
	m.sendMail = m.deliver
	return m
}

// IsConfigured returns true if enough settings exist to attempt delivery.
func (m *SMTPMailer) IsConfigured() bool {
	return m.config.Host != "" && m.config.Port != "" && m.config.From != ""
}

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("email not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		m.config.From,
		subject,
		body,
	))

	return m.sendMail(m.server, m.auth, m.config.From, to, msg)
}

// deliver is smtp.SendMail with a dial timeout and a deadline on the
// connection, so a stalled relay cannot hold the caller.
func (m *SMTPMailer) deliver(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, m.config.Timeout)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(m.config.Timeout)); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
