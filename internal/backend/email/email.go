// Package email sends transactional notifications for contact messages and mural applications.
package email

import (
	"context"
	"fmt"
)

const (
	TypeResend = "resend"
	TypeLog    = "log"
)

// Message is a single outgoing html email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers messages and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, message Message) (string, error)
}

// Options configures NewSender.
type Options struct {
	Type   string
	APIKey string
}

func NewSender(options Options) (Sender, error) {
	switch options.Type {
	case TypeResend:
		if options.APIKey == "" {
			return nil, fmt.Errorf("resend api key is empty")
		}
		return NewResendSender(options.APIKey), nil
	case TypeLog, "":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unsupported email type: %s", options.Type)
	}
}
