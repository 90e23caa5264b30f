package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/lacus-ops/bbs-service/internal/log"
)

type Sender interface {
	Send(to []string, subject, body string) error
}

// SMTPSender delivers through a plain SMTP relay. Auth is used only when a
// username is configured.
type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (s *SMTPSender) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, to, []byte(b.String()))
}

// LogSender writes mail to the log instead of the wire; the default when no
// SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(to []string, subject, body string) error {
	log.L().Info("mail",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)),
	)
	return nil
}
