package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender authenticates with an application password and upgrades the
// connection with STARTTLS when the server offers it.
type SMTPSender struct {
	Host     string
	Port     int
	From     string
	Password string
	Logger   *zap.Logger

	// SendMail defaults to smtp.SendMail.
	SendMail SendMailFunc
	now      func() time.Time
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return &SendError{Transport: "smtp", To: msg.To, Cause: err}
	}
	if msg.From == "" {
		msg.From = s.From
	}
	send := s.SendMail
	if send == nil {
		send = smtp.SendMail
	}
	now := s.now
	if now == nil {
		now = time.Now
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := send(addr, auth, msg.From, []string{msg.To}, rfc822(msg, now())); err != nil {
		return &SendError{Transport: "smtp", To: msg.To, Cause: fmt.Errorf("%s: %w", addr, err)}
	}

	if s.Logger != nil {
		s.Logger.Info("notification sent", zap.String("transport", "smtp"), zap.String("to", msg.To))
	}
	return nil
}
