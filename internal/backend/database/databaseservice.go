package database

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid data")
)

type DatabaseService interface {
	// CreateDatabase ensures the schema exists. It is idempotent.
	CreateDatabase(ctx context.Context) error
	DoesDatabaseExist() bool
	Close() error

	// CreateMural assigns ID and CreatedAt when they are empty and stores the mural.
	CreateMural(ctx context.Context, mural *Mural) (*Mural, error)
	// GetMurals returns murals newest first. When activeOnly is set inactive murals are skipped.
	GetMurals(ctx context.Context, activeOnly bool) ([]*Mural, error)

	CreateSubmission(ctx context.Context, submission *Submission) (*Submission, error)
	CreateContactMessage(ctx context.Context, message *ContactMessage) (*ContactMessage, error)
}
