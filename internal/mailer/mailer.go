// Package mailer sends admin notification mail for processed uploads.
// Port 465 speaks implicit TLS; any other port starts plain and upgrades
// via STARTTLS. Whichever mode fails on dial or handshake, the other is
// tried once, since providers commonly expose both 465 and 587 with the
// same credentials.
package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// ErrIncompleteConfig means mail settings are missing; callers treat
// notification as optional and skip it.
var ErrIncompleteConfig = errors.New("incomplete smtp configuration")

const implicitTLSPort = 465

// connectError marks a failure before the SMTP session was established
// (dial or handshake). Only these justify retrying the other TLS mode;
// auth and envelope rejections would fail identically on a second
// connection.
type connectError struct{ err error }

func (e *connectError) Error() string { return e.err.Error() }
func (e *connectError) Unwrap() error { return e.err }

// Config holds SMTP settings for notifications.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	ReplyTo  string
}

// Complete reports whether enough is configured to send mail.
// Username and password are optional (open relays on internal networks).
func (c Config) Complete() bool {
	return c.Host != "" && c.Port != 0 && c.From != "" && c.To != ""
}

// Mailer sends plain-text notifications through one SMTP account.
type Mailer struct {
	cfg Config
}

// New creates a Mailer. Completeness is checked at Send time.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one plain-text message with the configured sender and
// recipient.
func (m *Mailer) Send(subject, body string) error {
	if !m.cfg.Complete() {
		return ErrIncompleteConfig
	}

	msg := buildMessage(m.cfg, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	primaryImplicit := m.cfg.Port == implicitTLSPort

	err := m.sendMode(addr, msg, primaryImplicit)
	if err == nil {
		return nil
	}

	// The other TLS mode gets one shot, but only when the first never got
	// past connect/handshake
	var ce *connectError
	if errors.As(err, &ce) {
		if fallbackErr := m.sendMode(addr, msg, !primaryImplicit); fallbackErr == nil {
			return nil
		}
	}
	return fmt.Errorf("sending notification via %s: %w", addr, err)
}

func (m *Mailer) sendMode(addr string, msg []byte, implicit bool) error {
	if implicit {
		return m.sendImplicitTLS(addr, msg)
	}
	return m.sendSTARTTLS(addr, msg)
}

// sendImplicitTLS opens a TLS connection first, then speaks SMTP over it.
func (m *Mailer) sendImplicitTLS(addr string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return &connectError{fmt.Errorf("tls dial: %w", err)}
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return &connectError{fmt.Errorf("smtp handshake: %w", err)}
	}
	return m.deliver(client, msg)
}

// sendSTARTTLS opens plain TCP and upgrades.
func (m *Mailer) sendSTARTTLS(addr string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return &connectError{fmt.Errorf("smtp dial: %w", err)}
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
		if err := client.StartTLS(tlsCfg); err != nil {
			_ = client.Close()
			return &connectError{fmt.Errorf("starttls: %w", err)}
		}
	}
	return m.deliver(client, msg)
}

// deliver runs auth, envelope, and data on an open client, then quits.
func (m *Mailer) deliver(client *smtp.Client, msg []byte) error {
	defer func() { _ = client.Close() }()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(m.cfg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return client.Quit()
}

// buildMessage assembles the RFC 5322 message. The subject is Q-encoded
// so Chinese article titles survive transport.
func buildMessage(cfg Config, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + cfg.From + "\r\n")
	b.WriteString("To: " + cfg.To + "\r\n")
	if cfg.ReplyTo != "" {
		b.WriteString("Reply-To: " + cfg.ReplyTo + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
