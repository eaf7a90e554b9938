// Package mailer sends transactional email over SMTP. It is invoked from the
// mail queue consumer, never directly from a request handler.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender sends mail through a single SMTP relay with PLAIN auth.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Send delivers one HTML email.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	addr := s.Host + ":" + s.Port
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	return smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg))
}

// VerificationMail renders the email-verification message pointing at the
// flow-specific landing host (dashboard for admins, storefront otherwise).
func VerificationMail(host, token string) (subject, body string) {
	subject = "Confirm your email address"
	body = fmt.Sprintf(`
      <h1>Confirm your email address</h1>
      <p>Click the link below to confirm your email address</p>
      <a href="%s/auth/verify-email?token=%s">Verify Email</a>
    `, host, token)
	return subject, body
}
