package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/email"
)

type ContactInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProjectType string `json:"projectType"`
	Message     string `json:"message"`
}

// SendContact delivers the message to the configured inbox, then stores it.
// Storage failures are logged only since the email has already been sent.
func (service *CoreService) SendContact(ctx context.Context, input ContactInput) error {
	if err := validateContact(input); err != nil {
		return err
	}

	message, err := email.ContactMessage(service.config.Email.From, service.config.Email.ContactTo, email.ContactData{
		Name:        input.Name,
		Email:       input.Email,
		ProjectType: input.ProjectType,
		Message:     input.Message,
		Site:        service.config.Email.Site,
	})
	if err != nil {
		return err
	}
	id, err := service.emailSender.Send(ctx, message)
	if err != nil {
		slog.Error("contact email failed", "error", err)
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}
	slog.Info("contact email sent", "id", id)

	saved, err := service.databaseService.CreateContactMessage(ctx, &database.ContactMessage{
		Name:        input.Name,
		Email:       input.Email,
		ProjectType: input.ProjectType,
		Message:     input.Message,
	})
	if err != nil {
		slog.Warn("contact message not saved", "error", err)
		return nil
	}
	slog.Info("contact message saved", "id", saved.ID)
	return nil
}
