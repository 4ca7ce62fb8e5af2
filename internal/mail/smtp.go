package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const (
	dialTimeout = 8 * time.Second
	sendTimeout = 15 * time.Second
)

// smtpTransport delivers messages over SMTP, upgrading the connection with
// STARTTLS when the server offers it.
type smtpTransport struct {
	host string
	port int
	user string
	pass string
}

// NewSMTPTransport creates an SMTP transport.
func NewSMTPTransport(host string, port int, user, pass string) Transport {
	return &smtpTransport{host: host, port: port, user: user, pass: pass}
}

func (t *smtpTransport) Send(ctx context.Context, from, to, subject, html string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		html,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", t.host, t.port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server %s: %w", addr, err)
	}

	// deadline covers the whole exchange, not just the dial
	deadline := time.Now().Add(sendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: t.host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", t.user, t.pass, t.host)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return nil
}
