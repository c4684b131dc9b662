package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender sends through the Gmail API as the authorized mailbox ("me").
type GmailSender struct {
	svc    *gmail.Service
	from   string
	logger *zap.Logger
	now    func() time.Time
}

// NewGmailSender creates a sender from a credentials file authorized for the
// gmail.send scope. Extra options are appended, which lets tests point at a
// local endpoint.
func NewGmailSender(ctx context.Context, from, credentialsFile string, logger *zap.Logger, opts ...option.ClientOption) (*GmailSender, error) {
	if credentialsFile != "" {
		opts = append([]option.ClientOption{
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(gmail.GmailSendScope),
		}, opts...)
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GmailSender{svc: svc, from: from, logger: logger, now: time.Now}, nil
}

func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = s.from
	}
	raw := base64.URLEncoding.EncodeToString(rfc822(msg, s.now()))

	sent, err := s.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return &SendError{Transport: "gmail", To: msg.To, Cause: err}
	}
	s.logger.Info("notification sent",
		zap.String("transport", "gmail"),
		zap.String("to", msg.To),
		zap.String("message_id", sent.Id))
	return nil
}
