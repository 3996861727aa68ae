package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender only logs outgoing mail. Used in development when no provider is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, message Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	slog.Info("LogSender: email not delivered",
		"id", id,
		"from", message.From,
		"to", message.To,
		"reply_to", message.ReplyTo,
		"subject", message.Subject)
	return id, nil
}
