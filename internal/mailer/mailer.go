// Package mailer delivers outbound mail over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

//go:generate mockgen -source=mailer.go -destination=mock_sender.go -package=mailer

// Message is one outbound email. Text and HTML may both be set; the raw
// message is then assembled as multipart/alternative.
type Message struct {
	To      []string
	From    string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP is a Sender backed by a plain SMTP account.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	// Secure selects implicit TLS (port 465 style) instead of STARTTLS.
	Secure bool
}

func NewSMTP(host, port, username, password string, secure bool) *SMTP {
	return &SMTP{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Secure:   secure,
	}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if s.Host == "" {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	if msg.From == "" || len(msg.To) == 0 {
		return fmt.Errorf("mailer: sender and recipient are required")
	}

	raw := buildRaw(msg)
	addr := s.Host + ":" + s.Port
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)

	if s.Secure || s.Port == "465" {
		return s.sendTLS(ctx, addr, auth, msg, raw)
	}
	return smtp.SendMail(addr, auth, msg.From, msg.To, raw)
}

func (s *SMTP) sendTLS(ctx context.Context, addr string, auth smtp.Auth, msg Message, raw []byte) error {
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mailer: TLS dial: %w", err)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(msg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

const altBoundary = "=_backend_mail_alt"

func buildRaw(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + msg.From + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case msg.HTML != "" && msg.Text != "":
		b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary))
		b.WriteString("--" + altBoundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Text + "\r\n")
		b.WriteString("--" + altBoundary + "\r\n")
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.HTML + "\r\n")
		b.WriteString("--" + altBoundary + "--\r\n")
	case msg.HTML != "":
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.HTML)
	default:
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Text)
	}

	return []byte(b.String())
}
