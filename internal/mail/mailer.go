package mail

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/dropwishes/api/internal/config"
)

// Mailer delivers outbound email. Handlers depend on the interface so tests
// can record sends instead of talking to an SMTP server.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through the configured relay using STARTTLS and PLAIN
// auth, the setup expected by most transactional email providers on 587.
type SMTPMailer struct {
	addr     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		addr:     net.JoinHostPort(cfg.EmailHost, cfg.EmailPort),
		username: cfg.EmailHostUser,
		password: cfg.EmailHostPassword,
		from:     cfg.DefaultFromEmail,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := BuildMessage(m.from, to, subject, body)

	auth := sasl.NewPlainClient("", m.username, m.password)
	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}

// BuildMessage assembles an RFC 5322 plain-text message.
func BuildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
