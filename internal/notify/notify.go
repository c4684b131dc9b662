// Package notify delivers generated profiles by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/types"
)

// SubjectPrefix starts every notification subject.
const SubjectPrefix = "[JobCraft] Generated profile: "

// Message is a plain text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendError wraps a delivery failure. It is reported to the operator and never
// aborts the surrounding run.
type SendError struct {
	Transport string
	To        string
	Cause     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send notification to %s via %s: %v", e.To, e.Transport, e.Cause)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// ProfileMessage builds the notification for one generated profile. The body is
// the profile as indented JSON.
func ProfileMessage(recipient, title string, p *types.JobProfile) (Message, error) {
	body, err := export.RenderJSON(p)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode profile for notification: %w", err)
	}
	return Message{
		To:      recipient,
		Subject: SubjectPrefix + strings.TrimSpace(title),
		Body:    string(body),
	}, nil
}

// rfc822 encodes msg as a MIME message with a UTF-8 plain text body.
func rfc822(msg Message, now time.Time) []byte {
	var b bytes.Buffer
	if msg.From != "" {
		fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	}
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Body, "\r\n", "\n"), "\n", "\r\n"))
	return b.Bytes()
}
