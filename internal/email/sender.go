package email

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Sender delivers plain-text mail to a single recipient.
type Sender interface {
	SendEmail(to, subject, body string) error
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	addr     string
	from     string
	username string
	password string
}

// NewSender returns an SMTP-backed sender, or a logging no-op when addr is
// empty so the service runs without a relay in development.
func NewSender(addr, from, username, password string) Sender {
	if addr == "" {
		log.Println("email: no SMTP address configured, using noop sender")
		return noopSender{}
	}
	return &SMTPSender{addr: addr, from: from, username: username, password: password}
}

func (s *SMTPSender) SendEmail(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.username != "" {
		host := s.addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", s.username, s.password, host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

type noopSender struct{}

func (noopSender) SendEmail(to, subject, _ string) error {
	log.Printf("email: noop send to=%s subject=%q", to, subject)
	return nil
}
