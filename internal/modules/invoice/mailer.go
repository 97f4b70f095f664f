package invoice

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"

	"sheetpos/internal/apperr"
)

// Mailer sends invoice emails over SMTP with STARTTLS-capable PlainAuth.
type Mailer struct {
	host     string
	port     string
	username string
	password string
}

// NewMailer builds a mailer; empty host or username leaves it unconfigured.
func NewMailer(host, port, username, password string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password}
}

// Configured reports whether SMTP credentials are present.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.username != ""
}

// Send delivers a multipart/alternative mail carrying both the plain-text
// message and the HTML invoice.
func (m *Mailer) Send(_ context.Context, to, subject, message, html string) error {
	if !m.Configured() {
		return apperr.Conflictf("email service is not configured")
	}

	const boundary = "sheetpos-invoice-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.username)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(message)
	b.WriteString("\r\n\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n\r\n")
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.username, []string{to}, []byte(b.String())); err != nil {
		return apperr.Dependencyf(errors.Wrap(err, "smtp send"), "could not send invoice email")
	}
	return nil
}
