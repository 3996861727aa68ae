package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendSender struct {
	emails resendEmails
}

func NewResendSender(apiKey string) *ResendSender {
	client := resend.NewClient(apiKey)
	return &ResendSender{emails: client.Emails}
}

func (s *ResendSender) Send(ctx context.Context, message Message) (string, error) {
	if len(message.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}
	response, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    message.From,
		To:      message.To,
		ReplyTo: message.ReplyTo,
		Subject: message.Subject,
		Html:    message.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email %q: %w", message.Subject, err)
	}
	slog.Info("ResendSender: email sent", "id", response.Id, "subject", message.Subject)
	return response.Id, nil
}
