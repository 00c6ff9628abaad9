package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

type CertificateMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewCertificateMailer(host, port, username, password, from string) *CertificateMailer {
	return &CertificateMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
	}
}

// SendCertificateIssued notifies a member that their course certificate is
// ready. Callers treat failures as non-fatal; the certificate itself is
// already persisted.
func (m *CertificateMailer) SendCertificateIssued(ctx context.Context, email, courseTitle, serialCode string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	subject := fmt.Sprintf("Your Viral Academy certificate for %s", courseTitle)
	body := fmt.Sprintf("Congratulations! You completed %s.\n\nYour certificate serial code is %s. You can view and share it from your profile.", courseTitle, serialCode)

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", email))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(body)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{email}, []byte(message.String()))
}
