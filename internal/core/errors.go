package core

import (
	"errors"
	"strings"
)

var (
	ErrSpam          = errors.New("message flagged as spam")
	ErrEmailDelivery = errors.New("email delivery failed")
	ErrMediaTooLarge = errors.New("media file too large")
)

// ValidationError carries user facing messages in the order they were detected.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func newValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
