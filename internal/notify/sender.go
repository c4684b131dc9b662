package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/config"
)

// NewSender builds the transport selected by cfg.MailTransport.
func NewSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Sender, error) {
	if err := cfg.RequireMail(); err != nil {
		return nil, err
	}
	if cfg.MailTransport == config.TransportGmail {
		return NewGmailSender(ctx, cfg.SenderEmail, cfg.CredentialsFile, logger)
	}
	return &SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SenderEmail,
		Password: cfg.AppPassword,
		Logger:   logger,
	}, nil
}
